package routes

import (
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/voicedesk-co/voicedesk-backend/internal/handlers"
	"github.com/voicedesk-co/voicedesk-backend/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, voiceHandler *handlers.VoiceHandler, customerHandler *handlers.CustomerHandler, healthHandler *handlers.HealthHandler) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "VoiceDesk customer-service backend",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":       "/health",
				"customers":    "/api/customers",
				"voice":        "/webhook/voice",
				"voice_turn":   "/webhook/voice/turn",
				"voice_status": "/webhook/voice/status",
				"call_me":      "/api/twilio/call-me",
			},
		})
	})

	// Health check
	app.Get("/health", healthHandler.Check)

	// API routes
	api := app.Group("/api")
	api.Get("/customers", customerHandler.List)
	api.Get("/twilio/call-me", voiceHandler.HandleCallMe)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")

	// Voice webhooks - ENVIRONMENT-AWARE VALIDATION
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: Skip validation for ngrok
		webhooks.Post("/voice", voiceHandler.HandleIncomingCall)
		webhooks.Post("/voice/turn", voiceHandler.HandleSpeechTurn)
		webhooks.Post("/voice/status", voiceHandler.HandleCallStatus)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  Voice webhook validation DISABLED for development")
		}
	} else {
		// Production: Validate webhook signature
		webhooks.Post("/voice", middleware.ValidateTwilioSignature(), voiceHandler.HandleIncomingCall)
		webhooks.Post("/voice/turn", middleware.ValidateTwilioSignature(), voiceHandler.HandleSpeechTurn)
		webhooks.Post("/voice/status", middleware.ValidateTwilioSignature(), voiceHandler.HandleCallStatus)
	}
}
