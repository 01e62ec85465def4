package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

// DatabaseStore persists customer records in PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// CreateCustomer adds a new customer record
func (d *DatabaseStore) CreateCustomer(customer *models.Customer) (*models.Customer, error) {
	if err := d.db.Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomerByPhone looks up a customer record by phone number.
// Connectivity errors are surfaced as not-found: the resolver contract
// says the lookup channel never propagates a fatal error to the dialogue.
func (d *DatabaseStore) GetCustomerByPhone(phone string) (*models.Customer, error) {
	var customer models.Customer
	err := d.db.Where("phone_number = ?", phone).First(&customer).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, ErrCustomerNotFound
	}
	return &customer, nil
}

// GetAllCustomers returns every customer record
func (d *DatabaseStore) GetAllCustomers() ([]*models.Customer, error) {
	var customers []*models.Customer
	if err := d.db.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// UpdateCustomer replaces an existing customer record
func (d *DatabaseStore) UpdateCustomer(customer *models.Customer) error {
	return d.db.Save(customer).Error
}
