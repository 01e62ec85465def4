package storage

import (
	"fmt"
	"sync"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

// MemoryStore holds customer records in memory for local development and tests
type MemoryStore struct {
	customers map[string]*models.Customer // keyed by phone number

	customerMu      sync.RWMutex
	customerCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers: make(map[string]*models.Customer),
	}
}

// CreateCustomer adds a new customer record
func (m *MemoryStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if customer.PhoneNumber == "" {
		return nil, fmt.Errorf("customer phone number is required")
	}
	if _, exists := m.customers[customer.PhoneNumber]; exists {
		return nil, fmt.Errorf("customer with phone %s already exists", customer.PhoneNumber)
	}

	m.customerCounter++
	customer.ID = m.customerCounter
	m.customers[customer.PhoneNumber] = customer
	return customer, nil
}

// GetCustomerByPhone looks up a customer record by phone number
func (m *MemoryStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customer, exists := m.customers[phone]
	if !exists {
		return nil, ErrCustomerNotFound
	}
	return customer, nil
}

// GetAllCustomers returns every customer record
func (m *MemoryStore) GetAllCustomers() ([]*models.Customer, error) {
	m.customerMu.RLock()
	defer m.customerMu.RUnlock()

	customers := make([]*models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		customers = append(customers, c)
	}
	return customers, nil
}

// UpdateCustomer replaces an existing customer record
func (m *MemoryStore) UpdateCustomer(customer *models.Customer) error {
	m.customerMu.Lock()
	defer m.customerMu.Unlock()

	if _, exists := m.customers[customer.PhoneNumber]; !exists {
		return ErrCustomerNotFound
	}
	m.customers[customer.PhoneNumber] = customer
	return nil
}
