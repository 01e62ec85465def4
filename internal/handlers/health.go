package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/voicedesk-co/voicedesk-backend/internal/services"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	Sessions *services.SessionStore
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, sessions *services.SessionStore) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		Sessions: sessions,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "OK",
		"service":         "VoiceDesk Backend",
		"version":         h.Version,
		"active_sessions": h.Sessions.ActiveCount(),
	})
}
