package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/voicedesk-co/voicedesk-backend/internal/storage"
)

// CustomerHandler exposes the customer records backing the dialogue
type CustomerHandler struct {
	store storage.Store
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(store storage.Store) *CustomerHandler {
	return &CustomerHandler{store: store}
}

// List returns all customer records (DB smoke-test endpoint)
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	customers, err := h.store.GetAllCustomers()
	if err != nil {
		log.Printf("Error fetching customers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch customers",
		})
	}
	return c.JSON(customers)
}
