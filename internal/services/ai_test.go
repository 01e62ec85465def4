package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

func TestBuildPromptWithoutCustomer(t *testing.T) {
	prompt := buildPrompt("cuánto cuesta el plan de 20 gigas", nil)

	assert.Contains(t, prompt, "atención al cliente de Claro Colombia")
	assert.Contains(t, prompt, "cuánto cuesta el plan de 20 gigas")
	assert.NotContains(t, prompt, "Información relevante del cliente")
}

func TestBuildPromptWithCustomerData(t *testing.T) {
	prompt := buildPrompt("qué incluye mi plan", &models.Customer{
		Name:          "Laura",
		PhoneNumber:   "+573000000000",
		CurrentPlan:   "Plan 20GB",
		Balance:       25000,
		NetworkStatus: "activo",
	})

	assert.Contains(t, prompt, "Información relevante del cliente")
	assert.Contains(t, prompt, "Laura")
	assert.Contains(t, prompt, "Plan 20GB")
	assert.Contains(t, prompt, "$25000.00")
	assert.Contains(t, prompt, "No disponible") // unset fields
}

func TestBuildPromptGreetingPersonalization(t *testing.T) {
	customer := &models.Customer{Name: "Laura", PhoneNumber: "+573000000000"}

	greeted := buildPrompt("hola, buenos días", customer)
	assert.True(t, strings.HasSuffix(greeted, "Hola Laura, "))

	// no greeting in the utterance, no seeded greeting in the reply
	plain := buildPrompt("cuál es mi saldo", customer)
	assert.False(t, strings.HasSuffix(plain, "Hola Laura, "))

	// greeting but no record: nothing to personalize with
	anonymous := buildPrompt("hola", nil)
	assert.False(t, strings.HasSuffix(anonymous, "Hola , "))
}
