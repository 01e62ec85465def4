package handlers

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/voicedesk-co/voicedesk-backend/internal/services"
	"github.com/voicedesk-co/voicedesk-backend/internal/voice"
)

// VoiceHandler handles Twilio voice webhook requests
type VoiceHandler struct {
	dialogue      *services.DialogueService
	twilioService *services.TwilioService
	renderCfg     voice.RenderConfig
}

// NewVoiceHandler creates a new voice webhook handler. twilioService may
// be nil when outbound calling is not configured.
func NewVoiceHandler(dialogue *services.DialogueService, twilioService *services.TwilioService) *VoiceHandler {
	// Twilio resolves relative URLs against the webhook it just called,
	// so the gather action works without a configured public base URL.
	gatherURL := "/webhook/voice/turn"
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		gatherURL = base + "/webhook/voice/turn"
	}

	return &VoiceHandler{
		dialogue:      dialogue,
		twilioService: twilioService,
		renderCfg:     voice.DefaultRenderConfig(gatherURL),
	}
}

// VoiceWebhookPayload represents a Twilio voice callback
type VoiceWebhookPayload struct {
	CallSid      string `form:"CallSid"`
	AccountSid   string `form:"AccountSid"`
	From         string `form:"From"`
	To           string `form:"To"`
	CallStatus   string `form:"CallStatus"`
	SpeechResult string `form:"SpeechResult"` // transcribed speech from the last gather
	Confidence   string `form:"Confidence"`
}

// HandleIncomingCall answers the provider's initial callback for a call
func (h *VoiceHandler) HandleIncomingCall(c *fiber.Ctx) error {
	var payload VoiceWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.CallSid == "" {
		log.Printf("❌ Malformed voice webhook: %v", err)
		return h.respondFault(c)
	}

	log.Printf("📞 Incoming call %s from %s", payload.CallSid, payload.From)

	actions := h.dialogue.HandleTurn(c.Context(), services.TurnInput{
		Event:        services.CallStarted,
		CallID:       payload.CallSid,
		CallerNumber: payload.From,
	})

	return h.respond(c, actions)
}

// HandleSpeechTurn processes the transcribed result of a gather
func (h *VoiceHandler) HandleSpeechTurn(c *fiber.Ctx) error {
	var payload VoiceWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.CallSid == "" {
		log.Printf("❌ Malformed speech webhook: %v", err)
		return h.respondFault(c)
	}

	log.Printf("🗣️  Speech turn for call %s: %q", payload.CallSid, payload.SpeechResult)

	actions := h.dialogue.HandleTurn(c.Context(), services.TurnInput{
		Event:        services.SpeechTurn,
		CallID:       payload.CallSid,
		CallerNumber: payload.From,
		Utterance:    payload.SpeechResult,
	})

	return h.respond(c, actions)
}

// terminalCallStatuses are provider statuses that mean the call is over
var terminalCallStatuses = map[string]bool{
	"completed": true,
	"failed":    true,
	"busy":      true,
	"no-answer": true,
	"canceled":  true,
}

// HandleCallStatus consumes provider call-status events and tears down
// the session when the call ends outside the dialogue (caller hung up)
func (h *VoiceHandler) HandleCallStatus(c *fiber.Ctx) error {
	var payload VoiceWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.CallSid == "" {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	if terminalCallStatuses[payload.CallStatus] {
		log.Printf("📴 Call %s ended (%s)", payload.CallSid, payload.CallStatus)
		h.dialogue.HandleTurn(c.Context(), services.TurnInput{
			Event:  services.CallEnded,
			CallID: payload.CallSid,
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

// HandleCallMe starts an outbound test call to the number in the "to"
// query parameter (or TEST_CALL_NUMBER)
func (h *VoiceHandler) HandleCallMe(c *fiber.Ctx) error {
	if h.twilioService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Twilio is not configured",
		})
	}

	to := c.Query("to")
	if to == "" {
		to = os.Getenv("TEST_CALL_NUMBER")
	}
	if to == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "provide a destination number via ?to= or TEST_CALL_NUMBER",
		})
	}

	base := os.Getenv("PUBLIC_BASE_URL")
	if base == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "PUBLIC_BASE_URL must be set for outbound calls",
		})
	}

	sid, err := h.twilioService.StartOutboundCall(to, base+"/webhook/voice")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to start call: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message":  "outbound call started",
		"call_sid": sid,
		"to":       to,
	})
}

// respond renders the dialogue actions as TwiML
func (h *VoiceHandler) respond(c *fiber.Ctx, actions []voice.Action) error {
	markup, err := voice.Render(actions, h.renderCfg)
	if err != nil {
		log.Printf("❌ Failed to render actions: %v", err)
		return h.respondFault(c)
	}
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(markup)
}

// respondFault answers a broken callback with minimal safe markup. An
// unanswered webhook would leave the caller on a dead line, so even the
// hard-failure path speaks before hanging up.
func (h *VoiceHandler) respondFault(c *fiber.Ctx) error {
	markup, err := voice.Render([]voice.Action{
		voice.Speak{Text: services.ApologyText},
		voice.Hangup{},
	}, h.renderCfg)
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, "text/xml")
	return c.SendString(markup)
}
