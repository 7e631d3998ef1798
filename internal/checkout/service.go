package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/finley-aquatics/fishworks-backend/internal/address"
	"github.com/finley-aquatics/fishworks-backend/internal/catalog"
	"github.com/finley-aquatics/fishworks-backend/internal/orders"
	"github.com/finley-aquatics/fishworks-backend/pkg/db"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/metrics"
)

const orderNumberDayFormat = "20060102"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes the checkout pipeline: validate the whole request
// read-only, then commit the order, its items, and the stock decrements in a
// single transaction.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.OrderDTO, error)
}

// Input is a checkout request. Items must not repeat a product; callers merge
// quantities before submitting.
type Input struct {
	Items             []ItemInput
	ShippingAddressID uuid.UUID
	BillingAddressID  *uuid.UUID
	OrderNotes        string
	PaymentMethod     string
}

// ItemInput is a single requested order line.
type ItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type orderLine struct {
	product  *models.FishProduct
	quantity int
	total    decimal.Decimal
	snapshot json.RawMessage
}

type service struct {
	tx          txRunner
	ordersRepo  orders.Repository
	productRepo catalog.Repository
	addressRepo address.Repository
	metrics     *metrics.CheckoutMetrics
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(
	tx txRunner,
	ordersRepo orders.Repository,
	productRepo catalog.Repository,
	addressRepo address.Repository,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if addressRepo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{
		tx:          tx,
		ordersRepo:  ordersRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		metrics:     checkoutMetrics,
	}, nil
}

func (s *service) Execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.OrderDTO, error) {
	start := time.Now()
	order, err := s.execute(ctx, userID, input)
	if err != nil {
		outcome := "failure"
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncFailure(string(typed.Code()))
		} else {
			s.metrics.IncFailure(string(pkgerrors.CodeInternal))
		}
		s.metrics.ObserveDuration(outcome, time.Since(start))
		return nil, err
	}
	s.metrics.IncOrdersCreated()
	s.metrics.ObserveDuration("success", time.Since(start))
	return order, nil
}

func (s *service) execute(ctx context.Context, userID uuid.UUID, input Input) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	shipping, err := s.loadOwnedAddress(ctx, userID, input.ShippingAddressID, enums.AddressTypeShipping)
	if err != nil {
		return nil, err
	}
	var billing *models.Address
	if input.BillingAddressID != nil {
		billing, err = s.loadOwnedAddress(ctx, userID, *input.BillingAddressID, enums.AddressTypeBilling)
		if err != nil {
			return nil, err
		}
	}

	lines, total, err := s.validateItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		now := time.Now().UTC()
		day := now.Format(orderNumberDayFormat)
		seq, err := ordersRepo.NextOrderSequence(ctx, day)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order number")
		}
		orderNumber := fmt.Sprintf("FW%s%04d", day, seq)

		header := &models.Order{
			ID:                uuid.New(),
			OrderNumber:       orderNumber,
			UserID:            userID,
			Status:            enums.OrderStatusPending,
			PaymentStatus:     enums.PaymentStatusPending,
			TotalAmount:       total,
			PaymentMethod:     input.PaymentMethod,
			ShippingAddressID: shipping.ID,
			OrderNotes:        input.OrderNotes,
		}
		if billing != nil {
			header.BillingAddressID = &billing.ID
		}
		if _, err := ordersRepo.CreateOrder(ctx, header); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already taken, retry checkout")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				ID:              uuid.New(),
				OrderID:         header.ID,
				ProductID:       line.product.ID,
				Quantity:        line.quantity,
				UnitPrice:       line.product.Price,
				TotalPrice:      line.total,
				ProductSnapshot: line.snapshot,
			})
		}
		if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		for _, line := range lines {
			ok, err := productRepo.DecrementStockGuarded(ctx, line.product.ID, line.quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				s.metrics.IncStockConflict()
				return pkgerrors.New(pkgerrors.CodeConflict,
					fmt.Sprintf("stock for %s changed during checkout, retry", line.product.SpeciesName))
			}
		}

		created, err = ordersRepo.FindByID(ctx, header.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load created order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders.ToDTO(created), nil
}

func (s *service) loadOwnedAddress(ctx context.Context, userID, addressID uuid.UUID, addressType enums.AddressType) (*models.Address, error) {
	if addressID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s address is required", addressType))
	}
	record, err := s.addressRepo.FindByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s address", addressType))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if record.UserID != userID || record.AddressType != addressType {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s address", addressType))
	}
	return record, nil
}

func (s *service) validateItems(ctx context.Context, items []ItemInput) ([]orderLine, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	lines := make([]orderLine, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item product id is required")
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				"duplicate product in order; merge quantities into a single item")
		}
		seen[item.ProductID] = struct{}{}
		if item.Quantity <= 0 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}

		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product not found")
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsAvailable {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("%s is not available", product.SpeciesName))
		}
		if item.Quantity > product.StockQuantity {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("insufficient stock for %s: %d requested, %d available",
					product.SpeciesName, item.Quantity, product.StockQuantity))
		}

		snapshot, err := buildSnapshot(product)
		if err != nil {
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build product snapshot")
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, orderLine{
			product:  product,
			quantity: item.Quantity,
			total:    lineTotal,
			snapshot: snapshot,
		})
		total = total.Add(lineTotal)
	}
	return lines, total, nil
}

// productSnapshot is the subset of product data frozen onto an order item at
// checkout time.
type productSnapshot struct {
	SpeciesName    string          `json:"species_name"`
	ScientificName string          `json:"scientific_name"`
	Price          decimal.Decimal `json:"price"`
	ImageURL       string          `json:"image_url"`
}

func buildSnapshot(product *models.FishProduct) (json.RawMessage, error) {
	return json.Marshal(productSnapshot{
		SpeciesName:    product.SpeciesName,
		ScientificName: product.ScientificName,
		Price:          product.Price,
		ImageURL:       product.ImageURL,
	})
}
