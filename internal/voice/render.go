package voice

import (
	"github.com/twilio/twilio-go/twiml"
)

// RenderConfig carries the provider-specific attributes the markup needs
type RenderConfig struct {
	Voice         string // TTS voice, e.g. "alice"
	Language      string // e.g. "es-ES"
	GatherURL     string // where speech results are posted back
	GatherTimeout string // seconds of silence before the gather gives up
	SpeechTimeout string // "auto" or seconds
}

// DefaultRenderConfig returns the attributes used for the Spanish
// customer-service dialogue.
func DefaultRenderConfig(gatherURL string) RenderConfig {
	return RenderConfig{
		Voice:         "alice",
		Language:      "es-ES",
		GatherURL:     gatherURL,
		GatherTimeout: "5",
		SpeechTimeout: "auto",
	}
}

// Render serializes an ordered action sequence into TwiML
func Render(actions []Action, cfg RenderConfig) (string, error) {
	verbs := make([]twiml.Element, 0, len(actions))

	for _, action := range actions {
		switch a := action.(type) {
		case Speak:
			verbs = append(verbs, twiml.VoiceSay{
				Message:  a.Text,
				Voice:    cfg.Voice,
				Language: cfg.Language,
			})
		case Listen:
			// ActionOnEmptyResult keeps silent callers in the loop: the
			// webhook still fires so the retry bound can run down.
			verbs = append(verbs, twiml.VoiceGather{
				Input:               "speech",
				Action:              cfg.GatherURL,
				Method:              "POST",
				Language:            cfg.Language,
				Timeout:             cfg.GatherTimeout,
				SpeechTimeout:       cfg.SpeechTimeout,
				ActionOnEmptyResult: "true",
			})
		case Redirect:
			verbs = append(verbs, twiml.VoiceRedirect{
				Url:    a.URL,
				Method: "POST",
			})
		case Hangup:
			verbs = append(verbs, twiml.VoiceHangup{})
		}
	}

	return twiml.Voice(verbs)
}
