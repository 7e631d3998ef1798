package orders

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:orders_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
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
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  total_amount NUMERIC NOT NULL,
  shipping_amount NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  discount_amount NUMERIC NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL DEFAULT '',
  shipping_address_id TEXT NOT NULL,
  billing_address_id TEXT,
  order_notes TEXT NOT NULL DEFAULT '',
  tracking_number TEXT NOT NULL DEFAULT '',
  estimated_delivery DATE,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  product_snapshot TEXT NOT NULL,
  UNIQUE (order_id, product_id)
);`
	orderCounters := `
CREATE TABLE IF NOT EXISTS order_counters (
  day TEXT PRIMARY KEY,
  last_seq INTEGER NOT NULL DEFAULT 0
);`
	require.NoError(t, db.Exec(addresses).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(orderCounters).Error)
	return db
}

func newAddress(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Address {
	t.Helper()

	address := &models.Address{
		ID:           uuid.New(),
		UserID:       userID,
		AddressType:  enums.AddressTypeShipping,
		FirstName:    "Marina",
		LastName:     "Finley",
		AddressLine1: "12 Reef Rd",
		City:         "Tampa",
		State:        "FL",
		PostalCode:   "33601",
		Country:      "US",
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func newOrder(t *testing.T, db *gorm.DB, repo Repository, userID uuid.UUID, number string, createdAt time.Time) *models.Order {
	t.Helper()

	address := newAddress(t, db, userID)
	order := &models.Order{
		ID:                uuid.New(),
		OrderNumber:       number,
		UserID:            userID,
		Status:            enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		TotalAmount:       decimal.RequireFromString("59.98"),
		ShippingAddressID: address.ID,
		CreatedAt:         createdAt,
	}
	created, err := repo.CreateOrder(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestNextOrderSequenceIncrementsPerDay(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := repo.NextOrderSequence(ctx, "20250601")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := repo.NextOrderSequence(ctx, "20250601")
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	otherDay, err := repo.NextOrderSequence(ctx, "20250602")
	require.NoError(t, err)
	assert.Equal(t, 1, otherDay)

	third, err := repo.NextOrderSequence(ctx, "20250601")
	require.NoError(t, err)
	assert.Equal(t, 3, third)
}

func TestCreateOrderWithItemsAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	order := newOrder(t, db, repo, userID, "FW202506010001", time.Now().UTC())

	snapshot, err := json.Marshal(map[string]any{"species_name": "Neon Tetra", "price": "3.99"})
	require.NoError(t, err)
	items := []models.OrderItem{{
		ID:              uuid.New(),
		OrderID:         order.ID,
		ProductID:       uuid.New(),
		Quantity:        2,
		UnitPrice:       decimal.RequireFromString("3.99"),
		TotalPrice:      decimal.RequireFromString("7.98"),
		ProductSnapshot: snapshot,
	}}
	require.NoError(t, repo.CreateOrderItems(ctx, items))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "FW202506010001", found.OrderNumber)
	require.Len(t, found.Items, 1)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.JSONEq(t, string(snapshot), string(found.Items[0].ProductSnapshot))
	require.NotNil(t, found.ShippingAddress)
	assert.Equal(t, "Tampa", found.ShippingAddress.City)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	first := newOrder(t, db, repo, userID, "FW202506010001", base)
	second := newOrder(t, db, repo, userID, "FW202506010002", base.Add(time.Hour))
	third := newOrder(t, db, repo, uuid.New(), "FW202506010003", base.Add(2*time.Hour))

	third.Status = enums.OrderStatusShipped
	require.NoError(t, repo.Update(ctx, third))

	mine, err := repo.List(ctx, ListFilter{UserID: &userID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	shipped := enums.OrderStatusShipped
	byStatus, err := repo.List(ctx, ListFilter{Status: &shipped, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, third.ID, byStatus[0].ID)

	bySearch, err := repo.List(ctx, ListFilter{Search: "0002", Limit: 10})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, second.ID, bySearch[0].ID)

	// Limit 1 returns the buffer row so callers can detect another page.
	page, err := repo.List(ctx, ListFilter{UserID: &userID, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)

	cursor := &pagination.Cursor{CreatedAt: second.CreatedAt, ID: second.ID}
	rest, err := repo.List(ctx, ListFilter{UserID: &userID, Cursor: cursor, Limit: 10})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, first.ID, rest[0].ID)
}
