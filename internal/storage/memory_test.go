package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk-co/voicedesk-backend/internal/models"
)

func TestMemoryStoreCustomerLifecycle(t *testing.T) {
	store := NewMemoryStore()

	created, err := store.CreateCustomer(&models.Customer{
		Name:        "Laura",
		PhoneNumber: "+573000000000",
		CurrentPlan: "Plan 20GB",
		Balance:     25000,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := store.GetCustomerByPhone("+573000000000")
	require.NoError(t, err)
	assert.Equal(t, "Laura", got.Name)

	got.CurrentPlan = "Plan 40GB"
	require.NoError(t, store.UpdateCustomer(got))

	got, err = store.GetCustomerByPhone("+573000000000")
	require.NoError(t, err)
	assert.Equal(t, "Plan 40GB", got.CurrentPlan)

	all, err := store.GetAllCustomers()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStoreUnknownPhone(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetCustomerByPhone("+570000000000")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	err = store.UpdateCustomer(&models.Customer{PhoneNumber: "+570000000000"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.CreateCustomer(&models.Customer{PhoneNumber: "+571"})
	require.NoError(t, err)

	_, err = store.CreateCustomer(&models.Customer{PhoneNumber: "+571"})
	assert.Error(t, err)

	_, err = store.CreateCustomer(&models.Customer{})
	assert.Error(t, err)
}
