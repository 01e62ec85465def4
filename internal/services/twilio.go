package services

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
)

var (
	twilioServiceInstance *TwilioService
	twilioServiceMu       sync.RWMutex
)

// SetTwilioService sets the global twilio service instance
func SetTwilioService(ts *TwilioService) {
	twilioServiceMu.Lock()
	defer twilioServiceMu.Unlock()
	twilioServiceInstance = ts
}

// GetTwilioService returns the global twilio service instance
func GetTwilioService() *TwilioService {
	twilioServiceMu.RLock()
	defer twilioServiceMu.RUnlock()
	return twilioServiceInstance
}

// TwilioService initiates outbound calls via the Twilio REST API
type TwilioService struct {
	client *twilio.RestClient
	from   string // Twilio voice number
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_PHONE_NUMBER")

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client: client,
		from:   from,
	}, nil
}

// StartOutboundCall rings the given number, speaks a short announcement
// and redirects the call into the voice webhook, bootstrapping the same
// dialogue an inbound caller gets. Returns the provider call SID.
func (t *TwilioService) StartOutboundCall(to, voiceWebhookURL string) (string, error) {
	markup, err := twiml.Voice([]twiml.Element{
		twiml.VoiceSay{
			Message:  "Esta es una llamada de prueba de tu sistema de atención al cliente. Conectando con el asistente.",
			Voice:    "alice",
			Language: "es-ES",
		},
		twiml.VoicePause{Length: "2"},
		twiml.VoiceRedirect{
			Url:    voiceWebhookURL,
			Method: "POST",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to build call markup: %w", err)
	}

	params := &twilioApi.CreateCallParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetTwiml(markup)

	resp, err := t.client.Api.CreateCall(params)
	if err != nil {
		log.Printf("❌ Failed to start outbound call to %s: %v", to, err)
		return "", err
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	log.Printf("✅ Outbound call started! SID: %s", sid)
	return sid, nil
}
