package storage

import (
	"errors"
	"sync"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

// ErrCustomerNotFound is returned when no record matches the phone number.
// Absence is not a failure for the dialogue: the controller proceeds with
// a context-free prompt.
var ErrCustomerNotFound = errors.New("customer not found")

var (
	storeInstance Store
	storeMu       sync.RWMutex
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return storeInstance
}

// Store defines the interface for customer record operations
type Store interface {
	CreateCustomer(customer *models.Customer) (*models.Customer, error)
	GetCustomerByPhone(phone string) (*models.Customer, error)
	GetAllCustomers() ([]*models.Customer, error)
	UpdateCustomer(customer *models.Customer) error
}
