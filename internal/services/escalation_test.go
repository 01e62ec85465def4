package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerEscalationPolicy(t *testing.T) {
	policy := MarkerEscalationPolicy(defaultEscalationPhrases)

	tests := []struct {
		name  string
		reply string
		want  bool
	}{
		{"plain answer", "Tu saldo actual es de veinte mil pesos.", false},
		{"human agent marker", "Voy a transferirte con un agente humano.", true},
		{"support agent marker", "Te comunico con un agente de soporte ahora.", true},
		{"marker mid-sentence", "No puedo ayudarte con eso, escalaré la llamada de inmediato.", true},
		{"case insensitive", "UN AGENTE HUMANO te atenderá.", true},
		{"partial word is not a marker", "El agendamiento quedó listo.", false},
		{"empty reply", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy(tt.reply))
		})
	}
}

func TestEscalationPhrasesFromEnv(t *testing.T) {
	t.Setenv("ESCALATION_PHRASES", "hablar con soporte, pasar la llamada ,")

	phrases := EscalationPhrasesFromEnv()
	assert.Equal(t, []string{"hablar con soporte", "pasar la llamada"}, phrases)

	policy := MarkerEscalationPolicy(phrases)
	assert.True(t, policy("Voy a pasar la llamada a un compañero."))
	assert.False(t, policy("Voy a transferirte con un agente humano."))
}

func TestEscalationPhrasesDefault(t *testing.T) {
	t.Setenv("ESCALATION_PHRASES", "")
	assert.Equal(t, defaultEscalationPhrases, EscalationPhrasesFromEnv())
}
