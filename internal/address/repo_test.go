package address

import (
	"context"
	"testing"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAddressTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:address_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	addresses := `
CREATE TABLE IF NOT EXISTS addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  address_type TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  address_line_1 TEXT NOT NULL,
  address_line_2 TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL DEFAULT 'US',
  phone TEXT NOT NULL DEFAULT '',
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_user_type_default
  ON addresses (user_id, address_type) WHERE is_default;`
	require.NoError(t, db.Exec(addresses).Error)
	return db
}

func newAddress(t *testing.T, db *gorm.DB, userID uuid.UUID, addressType enums.AddressType, isDefault bool) *models.Address {
	t.Helper()

	address := &models.Address{
		ID:           uuid.New(),
		UserID:       userID,
		AddressType:  addressType,
		FirstName:    "Avery",
		LastName:     "Finley",
		AddressLine1: "12 Riverbend Rd",
		City:         "Portland",
		State:        "OR",
		PostalCode:   "97201",
		Country:      "US",
		IsDefault:    isDefault,
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func TestClearDefaultSweepsOnlyMatchingType(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	shipping := newAddress(t, db, userID, enums.AddressTypeShipping, true)
	billing := newAddress(t, db, userID, enums.AddressTypeBilling, true)

	require.NoError(t, repo.ClearDefault(ctx, userID, enums.AddressTypeShipping))

	reloaded, err := repo.FindByID(ctx, shipping.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)

	reloaded, err = repo.FindByID(ctx, billing.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsDefault, "billing default must survive a shipping sweep")
}

func TestPartialUniqueIndexRejectsSecondDefault(t *testing.T) {
	db := setupAddressTestDB(t)

	userID := uuid.New()
	newAddress(t, db, userID, enums.AddressTypeShipping, true)

	second := &models.Address{
		ID:           uuid.New(),
		UserID:       userID,
		AddressType:  enums.AddressTypeShipping,
		FirstName:    "Avery",
		LastName:     "Finley",
		AddressLine1: "99 Other St",
		City:         "Portland",
		State:        "OR",
		PostalCode:   "97202",
		Country:      "US",
		IsDefault:    true,
	}
	err := db.Create(second).Error
	require.Error(t, err, "two defaults for the same (user, type) must be rejected")

	// Non-default rows are unconstrained.
	second.IsDefault = false
	require.NoError(t, db.Create(second).Error)
}

func TestListByUserOrdersDefaultsFirst(t *testing.T) {
	db := setupAddressTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	newAddress(t, db, userID, enums.AddressTypeShipping, false)
	preferred := newAddress(t, db, userID, enums.AddressTypeShipping, true)
	newAddress(t, db, uuid.New(), enums.AddressTypeShipping, true)

	rows, err := repo.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, preferred.ID, rows[0].ID)
}
