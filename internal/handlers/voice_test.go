package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
	"github.com/voicedesk-co/voicedesk-backend/internal/services"
	"github.com/voicedesk-co/voicedesk-backend/internal/storage"
)

type scriptedGenerator struct {
	reply string
	err   error
}

func (g scriptedGenerator) GenerateReply(ctx context.Context, utterance string, customer *models.Customer) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func newTestApp(t *testing.T, gen services.ResponseGenerator) (*fiber.App, *services.SessionStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	sessions := services.NewSessionStore(30 * time.Minute)
	t.Cleanup(sessions.Close)

	dialogue := services.NewDialogueService(
		sessions,
		store,
		gen,
		services.MarkerEscalationPolicy(services.EscalationPhrasesFromEnv()),
		services.DialogueConfig{
			MaxEmptyInputs:  3,
			LookupTimeout:   time.Second,
			GenerateTimeout: 2 * time.Second,
		},
	)

	app := fiber.New()
	handler := NewVoiceHandler(dialogue, nil)
	app.Post("/webhook/voice", handler.HandleIncomingCall)
	app.Post("/webhook/voice/turn", handler.HandleSpeechTurn)
	app.Post("/webhook/voice/status", handler.HandleCallStatus)
	app.Get("/webhook/call-me", handler.HandleCallMe)
	return app, sessions
}

func postForm(t *testing.T, app *fiber.App, path string, form url.Values) (int, string) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIncomingCallRespondsWithGreetingMarkup(t *testing.T) {
	app, _ := newTestApp(t, scriptedGenerator{reply: "ok"})

	status, body := postForm(t, app, "/webhook/voice", url.Values{
		"CallSid": {"CA1"},
		"From":    {"+573000000000"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Response>")
	assert.Contains(t, body, "Hola")
	assert.Contains(t, body, "<Gather")
}

func TestSpeechTurnEmptyUtteranceReprompts(t *testing.T) {
	app, _ := newTestApp(t, scriptedGenerator{reply: "ok"})

	postForm(t, app, "/webhook/voice", url.Values{
		"CallSid": {"CA1"},
		"From":    {"+573000000000"},
	})

	status, body := postForm(t, app, "/webhook/voice/turn", url.Values{
		"CallSid":      {"CA1"},
		"From":         {"+573000000000"},
		"SpeechResult": {""},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "No pude entender")
	assert.Contains(t, body, "<Gather")
}

func TestSpeechTurnSpeaksGeneratedReply(t *testing.T) {
	app, _ := newTestApp(t, scriptedGenerator{reply: "Tu saldo es de veinte mil pesos."})

	postForm(t, app, "/webhook/voice", url.Values{
		"CallSid": {"CA1"},
		"From":    {"+573000000000"},
	})

	status, body := postForm(t, app, "/webhook/voice/turn", url.Values{
		"CallSid":      {"CA1"},
		"From":         {"+573000000000"},
		"SpeechResult": {"cuál es mi saldo"},
	})

	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "Tu saldo es de veinte mil pesos.")
	assert.Contains(t, body, "<Gather")
}

func TestMissingCallSidAnswersWithSafeMarkup(t *testing.T) {
	app, _ := newTestApp(t, scriptedGenerator{reply: "ok"})

	status, body := postForm(t, app, "/webhook/voice", url.Values{
		"From": {"+573000000000"},
	})

	// a broken callback still gets markup: an unanswered webhook would
	// leave the caller on a dead line
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, "<Hangup")
	assert.NotContains(t, body, "<Gather")
}

func TestStatusCallbackRemovesSession(t *testing.T) {
	app, sessions := newTestApp(t, scriptedGenerator{reply: "ok"})

	postForm(t, app, "/webhook/voice", url.Values{
		"CallSid": {"CA1"},
		"From":    {"+573000000000"},
	})

	status, _ := postForm(t, app, "/webhook/voice/status", url.Values{
		"CallSid":    {"CA1"},
		"CallStatus": {"completed"},
	})
	assert.Equal(t, fiber.StatusOK, status)

	unlock := sessions.LockCall("CA1")
	_, err := sessions.Get("CA1")
	unlock()
	assert.ErrorIs(t, err, services.ErrSessionNotFound)
}

func TestCallMeWithoutTwilioConfigured(t *testing.T) {
	app, _ := newTestApp(t, scriptedGenerator{reply: "ok"})

	req := httptest.NewRequest("GET", "/webhook/call-me?to=%2B573000000000", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
