package services

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
	"github.com/voicedesk-co/voicedesk-backend/internal/storage"
	"github.com/voicedesk-co/voicedesk-backend/internal/voice"
)

// Dialogue texts. The caller never hears provider or internal error
// wording; every degraded path speaks one of these.
const (
	GreetingText = "Hola. Gracias por llamar a Atención al Cliente de Claro. ¿En qué puedo ayudarte hoy?"
	RepromptText = "No pude entender lo que dijiste. ¿Puedes repetirlo, por favor?"
	GiveUpText   = "Lo siento, no logro entenderte en esta llamada. Por favor, intenta llamarnos de nuevo más tarde. Hasta pronto."
	ApologyText  = "Lo siento, tengo dificultades para procesar tu solicitud en este momento. Por favor, intenta de nuevo."
	HandoffText  = "Conectando con un agente. Un momento por favor."
	ReentryText  = "Tu sesión ha expirado. Por favor, llámanos de nuevo. Hasta pronto."
)

// TurnEvent classifies what the transport delivered
type TurnEvent int

const (
	// CallStarted is the provider's initial callback for a call
	CallStarted TurnEvent = iota
	// SpeechTurn carries the transcribed result of the last listen action
	SpeechTurn
	// CallEnded is an explicit end-of-call signal (caller hung up)
	CallEnded
)

// TurnInput is one webhook callback, reduced to the fields the dialogue needs
type TurnInput struct {
	Event        TurnEvent
	CallID       string
	CallerNumber string
	Utterance    string
}

// DialogueConfig bounds the turn-taking loop
type DialogueConfig struct {
	MaxEmptyInputs  int
	LookupTimeout   time.Duration
	GenerateTimeout time.Duration
}

// DialogueConfigFromEnv reads MAX_EMPTY_INPUTS, with defaults for the rest
func DialogueConfigFromEnv() DialogueConfig {
	cfg := DialogueConfig{
		MaxEmptyInputs:  3,
		LookupTimeout:   3 * time.Second,
		GenerateTimeout: 12 * time.Second,
	}
	if v := os.Getenv("MAX_EMPTY_INPUTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxEmptyInputs = n
		} else {
			log.Printf("⚠️  Invalid MAX_EMPTY_INPUTS %q, using default", v)
		}
	}
	return cfg
}

// DialogueService is the turn controller: it maps a webhook callback plus
// the call's session onto the next dialogue actions.
type DialogueService struct {
	sessions  *SessionStore
	store     storage.Store
	generator ResponseGenerator
	escalate  EscalationPolicy
	cfg       DialogueConfig
}

// NewDialogueService creates the turn controller
func NewDialogueService(sessions *SessionStore, store storage.Store, generator ResponseGenerator, escalate EscalationPolicy, cfg DialogueConfig) *DialogueService {
	return &DialogueService{
		sessions:  sessions,
		store:     store,
		generator: generator,
		escalate:  escalate,
		cfg:       cfg,
	}
}

// HandleTurn processes one callback and returns the actions to render.
// The whole turn runs under the per-call lock, so duplicate callbacks for
// the same call serialize while unrelated calls proceed in parallel.
func (d *DialogueService) HandleTurn(ctx context.Context, in TurnInput) (actions []voice.Action) {
	unlock := d.sessions.LockCall(in.CallID)
	defer unlock()

	// A turn must never crash the callback; anything unexpected degrades
	// to the apology and keeps listening.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ panic processing turn for call %s: %v", in.CallID, r)
			actions = []voice.Action{voice.Speak{Text: ApologyText}, voice.Listen{}}
		}
	}()

	switch in.Event {
	case CallStarted:
		return d.startCall(in)
	case CallEnded:
		d.endCall(in.CallID)
		return nil
	default:
		return d.speechTurn(ctx, in)
	}
}

// startCall creates a fresh session and greets the caller
func (d *DialogueService) startCall(in TurnInput) []voice.Action {
	session := d.sessions.CreateOrReset(in.CallID, in.CallerNumber)
	session.AppendTurn(models.SpeakerAssistant, GreetingText)
	session.State = models.StateAwaitingInput

	return []voice.Action{
		voice.Speak{Text: GreetingText},
		voice.Listen{},
	}
}

// endCall handles the provider's explicit end-of-call signal
func (d *DialogueService) endCall(callID string) {
	session, err := d.sessions.Get(callID)
	if err != nil {
		return
	}
	session.State = models.StateTerminated
	d.sessions.Remove(callID)
}

// speechTurn runs the AwaitingInput branches of the state machine
func (d *DialogueService) speechTurn(ctx context.Context, in TurnInput) []voice.Action {
	session, err := d.sessions.Get(in.CallID)
	if err != nil || session.Terminal() {
		// expired, evicted or already-ended call: answer with the generic
		// re-entry message, never resurrect state
		return []voice.Action{voice.Speak{Text: ReentryText}, voice.Hangup{}}
	}

	utterance := strings.TrimSpace(in.Utterance)
	if utterance == "" {
		return d.emptyInput(session)
	}
	return d.contentTurn(ctx, session, utterance)
}

// emptyInput re-prompts silent or garbled callers, bounded so the call
// cannot loop forever
func (d *DialogueService) emptyInput(session *models.CallSession) []voice.Action {
	session.ConsecutiveEmptyInputs++
	if session.ConsecutiveEmptyInputs > d.cfg.MaxEmptyInputs {
		session.State = models.StateTerminated
		d.sessions.Remove(session.CallID)
		return []voice.Action{voice.Speak{Text: GiveUpText}, voice.Hangup{}}
	}

	d.sessions.Touch(session.CallID)
	return []voice.Action{voice.Speak{Text: RepromptText}, voice.Listen{}}
}

// contentTurn resolves customer context, generates a reply and applies the
// resulting transition
func (d *DialogueService) contentTurn(ctx context.Context, session *models.CallSession, utterance string) []voice.Action {
	session.State = models.StateProcessing

	// Both external calls run before any transcript mutation, so a
	// cancelled callback leaves the pre-turn snapshot for the retry.
	customer := d.lookupCustomer(ctx, session.CallerNumber)
	reply, genErr := d.generateReply(ctx, utterance, customer)

	if ctx.Err() != nil {
		log.Printf("Turn abandoned for call %s: %v", session.CallID, ctx.Err())
		session.State = models.StateAwaitingInput
		return nil
	}

	session.ConsecutiveEmptyInputs = 0
	session.LastUserUtterance = utterance
	session.AppendTurn(models.SpeakerUser, utterance)

	if genErr != nil {
		// recoverable: apologize and keep listening. The apology is not
		// run through the escalation policy.
		session.AppendTurn(models.SpeakerAssistant, ApologyText)
		session.State = models.StateAwaitingInput
		d.sessions.Touch(session.CallID)
		return []voice.Action{voice.Speak{Text: ApologyText}, voice.Listen{}}
	}

	session.AppendTurn(models.SpeakerAssistant, reply)

	if d.escalate(reply) {
		session.State = models.StateEscalated
		d.sessions.Remove(session.CallID)
		return []voice.Action{
			voice.Speak{Text: reply},
			voice.Speak{Text: HandoffText},
			voice.Hangup{},
		}
	}

	session.State = models.StateAwaitingInput
	d.sessions.Touch(session.CallID)
	return []voice.Action{voice.Speak{Text: reply}, voice.Listen{}}
}

// lookupCustomer resolves the caller's account record, best-effort: any
// failure or timeout proceeds without context rather than failing the turn
func (d *DialogueService) lookupCustomer(ctx context.Context, phone string) *models.Customer {
	if phone == "" {
		return nil
	}

	lctx, cancel := context.WithTimeout(ctx, d.cfg.LookupTimeout)
	defer cancel()

	type result struct {
		customer *models.Customer
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := d.store.GetCustomerByPhone(phone)
		ch <- result{c, err}
	}()

	select {
	case <-lctx.Done():
		log.Printf("⚠️  Customer lookup timed out for %s", phone)
		return nil
	case r := <-ch:
		if r.err != nil {
			if !errors.Is(r.err, storage.ErrCustomerNotFound) {
				log.Printf("⚠️  Customer lookup failed for %s: %v", phone, r.err)
			}
			return nil
		}
		return r.customer
	}
}

// generateReply requests the assistant's reply with a bounded timeout
func (d *DialogueService) generateReply(ctx context.Context, utterance string, customer *models.Customer) (string, error) {
	gctx, cancel := context.WithTimeout(ctx, d.cfg.GenerateTimeout)
	defer cancel()
	return d.generator.GenerateReply(gctx, utterance, customer)
}
