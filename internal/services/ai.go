package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

// ErrServiceUnavailable is returned when the generation backend cannot
// produce a reply. The dialogue controller substitutes a fixed apology
// and keeps the call alive.
var ErrServiceUnavailable = errors.New("response generation unavailable")

// ResponseGenerator produces the assistant's reply for one turn. The
// customer may be nil when no record matched the caller.
type ResponseGenerator interface {
	GenerateReply(ctx context.Context, utterance string, customer *models.Customer) (string, error)
}

const defaultGeminiModel = "gemini-2.0-flash"

var greetingPattern = regexp.MustCompile(`(?i)hola|buenos días|buenas tardes|buenas noches|qué tal|como estás|como esta`)

// GeminiService generates replies with Google's Gemini API
type GeminiService struct {
	client *genai.Client
	model  string
}

// NewGeminiService creates a Gemini-backed response generator
func NewGeminiService(ctx context.Context) (*GeminiService, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{client: client, model: model}, nil
}

// GenerateReply sends the caller's utterance plus any customer context to
// Gemini and returns the reply text
func (g *GeminiService) GenerateReply(ctx context.Context, utterance string, customer *models.Customer) (string, error) {
	prompt := buildPrompt(utterance, customer)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		log.Printf("❌ Gemini request failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		log.Printf("⚠️  Gemini returned an empty reply (possibly blocked)")
		return "", ErrServiceUnavailable
	}

	return reply, nil
}

// buildPrompt assembles the customer-service persona, the caller's query
// and the account data block. When the caller greets and we know their
// name, the reply is seeded with a personalized greeting.
func buildPrompt(utterance string, customer *models.Customer) string {
	var b strings.Builder

	b.WriteString("Eres un asistente de atención al cliente de Claro Colombia. " +
		"Tu objetivo es resolver las dudas del cliente o, si no puedes, indicar que " +
		"escalarás la llamada a un agente humano. No inventes información. Si te " +
		"preguntan por un tema que no es Claro, informa que solo puedes ayudar con " +
		"servicios de Claro. Mantén las respuestas concisas y directas. Evita " +
		"saludos redundantes o repetitivos en cada turno; solo saluda si el cliente " +
		"lo hace primero.\n\n")

	fmt.Fprintf(&b, "Consulta del cliente: %q\n", utterance)

	if customer != nil {
		b.WriteString("\nInformación relevante del cliente:\n")
		fmt.Fprintf(&b, "- Nombre: %s\n", orUnavailable(customer.Name))
		fmt.Fprintf(&b, "- Número de Teléfono: %s\n", orUnavailable(customer.PhoneNumber))
		fmt.Fprintf(&b, "- Plan Actual: %s\n", orUnavailable(customer.CurrentPlan))
		fmt.Fprintf(&b, "- Saldo Actual: $%.2f\n", customer.Balance)
		fmt.Fprintf(&b, "- Estado de Servicios/Red: %s\n", orUnavailable(customer.NetworkStatus))
		fmt.Fprintf(&b, "- Descripción de Servicio: %s\n", orUnavailable(customer.ServiceDescription))
		fmt.Fprintf(&b, "- Servicios Adicionales Disponibles: %s\n", orUnavailable(customer.AvailableServices))
	}

	b.WriteString("\nBasado en la consulta del cliente y la información proporcionada, tu respuesta:\n")

	if customer != nil && customer.Name != "" && greetingPattern.MatchString(utterance) {
		fmt.Fprintf(&b, "Hola %s, ", customer.Name)
	}

	return b.String()
}

func orUnavailable(s string) string {
	if s == "" {
		return "No disponible"
	}
	return s
}

// UnavailableGenerator always fails with ErrServiceUnavailable. It stands
// in when no generation backend is configured, so the dialogue still runs
// and answers every content turn with the apology path.
type UnavailableGenerator struct{}

// GenerateReply implements ResponseGenerator
func (UnavailableGenerator) GenerateReply(ctx context.Context, utterance string, customer *models.Customer) (string, error) {
	return "", ErrServiceUnavailable
}
