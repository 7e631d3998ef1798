package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/finley-aquatics/fishworks-backend/internal/address"
	"github.com/finley-aquatics/fishworks-backend/internal/catalog"
	"github.com/finley-aquatics/fishworks-backend/internal/orders"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductRepo struct {
	byID        map[uuid.UUID]*models.FishProduct
	failDecOn   uuid.UUID
	decremented map[uuid.UUID]int
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		byID:        make(map[uuid.UUID]*models.FishProduct),
		decremented: make(map[uuid.UUID]int),
	}
}

func (r *stubProductRepo) WithTx(tx *gorm.DB) catalog.Repository { return r }

func (r *stubProductRepo) Create(ctx context.Context, product *models.FishProduct) (*models.FishProduct, error) {
	r.byID[product.ID] = product
	return product, nil
}

func (r *stubProductRepo) Update(ctx context.Context, product *models.FishProduct) error {
	r.byID[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FishProduct, error) {
	product, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *stubProductRepo) List(ctx context.Context, query catalog.ListQuery) ([]models.FishProduct, error) {
	return nil, nil
}

func (r *stubProductRepo) ReplaceCategories(ctx context.Context, product *models.FishProduct, categoryIDs []uuid.UUID) error {
	return nil
}

func (r *stubProductRepo) CountCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	return int64(len(categoryIDs)), nil
}

func (r *stubProductRepo) DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if productID == r.failDecOn {
		return false, nil
	}
	product, ok := r.byID[productID]
	if !ok || product.StockQuantity < quantity {
		return false, nil
	}
	product.StockQuantity -= quantity
	r.decremented[productID] += quantity
	return true, nil
}

func (r *stubProductRepo) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if product, ok := r.byID[productID]; ok {
		product.StockQuantity += quantity
	}
	return nil
}

type stubAddressRepo struct {
	byID map[uuid.UUID]*models.Address
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{byID: make(map[uuid.UUID]*models.Address)}
}

func (r *stubAddressRepo) WithTx(tx *gorm.DB) address.Repository { return r }

func (r *stubAddressRepo) Create(ctx context.Context, record *models.Address) (*models.Address, error) {
	r.byID[record.ID] = record
	return record, nil
}

func (r *stubAddressRepo) Update(ctx context.Context, record *models.Address) error {
	r.byID[record.ID] = record
	return nil
}

func (r *stubAddressRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubAddressRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	record, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *stubAddressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return nil, nil
}

func (r *stubAddressRepo) ClearDefault(ctx context.Context, userID uuid.UUID, addressType enums.AddressType) error {
	return nil
}

type stubOrdersRepo struct {
	byID       map[uuid.UUID]*models.Order
	items      map[uuid.UUID][]models.OrderItem
	seqs       map[string]int
	createErr  error
	lastNumber string
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		byID:  make(map[uuid.UUID]*models.Order),
		items: make(map[uuid.UUID][]models.OrderItem),
		seqs:  make(map[string]int),
	}
}

func (r *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return r }

func (r *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.byID[order.ID] = order
	r.lastNumber = order.OrderNumber
	return order, nil
}

func (r *stubOrdersRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	for _, item := range items {
		r.items[item.OrderID] = append(r.items[item.OrderID], item)
	}
	return nil
}

func (r *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = r.items[id]
	return &copied, nil
}

func (r *stubOrdersRepo) Update(ctx context.Context, order *models.Order) error {
	r.byID[order.ID] = order
	return nil
}

func (r *stubOrdersRepo) List(ctx context.Context, filter orders.ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (r *stubOrdersRepo) NextOrderSequence(ctx context.Context, day string) (int, error) {
	r.seqs[day]++
	return r.seqs[day], nil
}

type checkoutFixture struct {
	svc        Service
	orders     *stubOrdersRepo
	products   *stubProductRepo
	addresses  *stubAddressRepo
	userID     uuid.UUID
	shippingID uuid.UUID
}

func newFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	ordersRepo := newStubOrdersRepo()
	productRepo := newStubProductRepo()
	addressRepo := newStubAddressRepo()
	userID := uuid.New()
	shipping := &models.Address{
		ID:          uuid.New(),
		UserID:      userID,
		AddressType: enums.AddressTypeShipping,
	}
	addressRepo.byID[shipping.ID] = shipping

	svc, err := NewService(stubTxRunner{}, ordersRepo, productRepo, addressRepo, nil)
	require.NoError(t, err)
	return &checkoutFixture{
		svc:        svc,
		orders:     ordersRepo,
		products:   productRepo,
		addresses:  addressRepo,
		userID:     userID,
		shippingID: shipping.ID,
	}
}

func (f *checkoutFixture) addProduct(species, price string, stock int) *models.FishProduct {
	product := &models.FishProduct{
		ID:            uuid.New(),
		SpeciesName:   species,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsAvailable:   true,
	}
	f.products.byID[product.ID] = product
	return product
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
}

func TestExecuteCreatesOrderWithTotalsAndSnapshots(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)
	betta := f.addProduct("Betta", "12.50", 4)

	order, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		PaymentMethod:     "card",
		Items: []ItemInput{
			{ProductID: tetra.ID, Quantity: 3},
			{ProductID: betta.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("24.47").Equal(order.TotalAmount))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)

	expectedNumber := fmt.Sprintf("FW%s0001", time.Now().UTC().Format("20060102"))
	assert.Equal(t, expectedNumber, order.OrderNumber)

	require.Len(t, order.Items, 2)
	assert.Contains(t, string(order.Items[0].ProductSnapshot), "Neon Tetra")
	assert.True(t, decimal.RequireFromString("11.97").Equal(order.Items[0].TotalPrice))

	assert.Equal(t, 3, f.products.decremented[tetra.ID])
	assert.Equal(t, 1, f.products.decremented[betta.ID])
	assert.Equal(t, 7, f.products.byID[tetra.ID].StockQuantity)
}

func TestExecuteSequencesOrderNumbers(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)

	for i := 1; i <= 2; i++ {
		order, err := f.svc.Execute(context.Background(), f.userID, Input{
			ShippingAddressID: f.shippingID,
			Items:             []ItemInput{{ProductID: tetra.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		expected := fmt.Sprintf("FW%s%04d", time.Now().UTC().Format("20060102"), i)
		assert.Equal(t, expected, order.OrderNumber)
	}
}

func TestExecuteRejectsEmptyOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestExecuteRejectsForeignShippingAddress(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)
	foreign := &models.Address{ID: uuid.New(), UserID: uuid.New(), AddressType: enums.AddressTypeShipping}
	f.addresses.byID[foreign.ID] = foreign

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: foreign.ID,
		Items:             []ItemInput{{ProductID: tetra.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestExecuteRejectsBillingAddressOfWrongType(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)
	// Shipping-type address offered as billing.
	wrongType := &models.Address{ID: uuid.New(), UserID: f.userID, AddressType: enums.AddressTypeShipping}
	f.addresses.byID[wrongType.ID] = wrongType

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		BillingAddressID:  &wrongType.ID,
		Items:             []ItemInput{{ProductID: tetra.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestExecuteRejectsDuplicateProducts(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		Items: []ItemInput{
			{ProductID: tetra.ID, Quantity: 1},
			{ProductID: tetra.ID, Quantity: 2},
		},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestExecuteRejectsInsufficientStockNamingSpecies(t *testing.T) {
	f := newFixture(t)
	betta := f.addProduct("Betta", "12.50", 2)

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		Items:             []ItemInput{{ProductID: betta.ID, Quantity: 5}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Contains(t, err.Error(), "Betta")
	assert.Empty(t, f.orders.byID)
}

func TestExecuteRejectsUnavailableProduct(t *testing.T) {
	f := newFixture(t)
	hidden := f.addProduct("Discus", "45.00", 3)
	hidden.IsAvailable = false

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		Items:             []ItemInput{{ProductID: hidden.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestExecuteOrderNumberCollisionReturnsRetryableConflict(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)
	f.orders.createErr = errors.New(`duplicate key value violates unique constraint "idx_orders_order_number"`)

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		Items:             []ItemInput{{ProductID: tetra.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.True(t, pkgerrors.MetadataFor(pkgerrors.CodeConflict).Retryable)
	assert.Empty(t, f.orders.byID)
	assert.Empty(t, f.products.decremented)
}

func TestExecuteStockRaceReturnsRetryableConflict(t *testing.T) {
	f := newFixture(t)
	tetra := f.addProduct("Neon Tetra", "3.99", 10)
	f.products.failDecOn = tetra.ID

	_, err := f.svc.Execute(context.Background(), f.userID, Input{
		ShippingAddressID: f.shippingID,
		Items:             []ItemInput{{ProductID: tetra.ID, Quantity: 1}},
	})
	requireCode(t, err, pkgerrors.CodeConflict)
	assert.True(t, pkgerrors.MetadataFor(pkgerrors.CodeConflict).Retryable)
}
