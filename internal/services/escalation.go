package services

import (
	"os"
	"strings"
)

// EscalationPolicy decides whether a generated reply is asking for the
// call to be handed to a human agent. It is a separate, swappable policy
// so the classifier can change without touching the state machine.
type EscalationPolicy func(reply string) bool

// defaultEscalationPhrases are the marker phrases the Spanish dialogue
// uses when the model wants a human to take over.
var defaultEscalationPhrases = []string{
	"agente humano",
	"agente de soporte",
	"escalaré la llamada",
	"escalar la llamada",
}

// EscalationPhrasesFromEnv reads ESCALATION_PHRASES (comma-separated),
// falling back to the built-in Spanish markers.
func EscalationPhrasesFromEnv() []string {
	raw := os.Getenv("ESCALATION_PHRASES")
	if raw == "" {
		return defaultEscalationPhrases
	}

	var phrases []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	if len(phrases) == 0 {
		return defaultEscalationPhrases
	}
	return phrases
}

// MarkerEscalationPolicy matches replies containing any of the given
// phrases, case-insensitively. A marker anywhere in the reply counts,
// even mid-sentence: a false positive ends the call early, a false
// negative just keeps the caller in the loop.
func MarkerEscalationPolicy(phrases []string) EscalationPolicy {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}

	return func(reply string) bool {
		r := strings.ToLower(reply)
		for _, p := range lowered {
			if strings.Contains(r, p) {
				return true
			}
		}
		return false
	}
}
