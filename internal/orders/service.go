package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finley-aquatics/fishworks-backend/internal/catalog"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes order reads for customers and order management for admins.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	AdminList(ctx context.Context, input AdminListInput) (*OrderPage, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	AdminUpdate(ctx context.Context, orderID uuid.UUID, input AdminUpdateInput) (*OrderDTO, error)
}

// AdminListInput narrows the admin order listing.
type AdminListInput struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	Search        string
	pagination.Params
}

// AdminUpdateInput mutates the fields an admin may touch after checkout.
// Totals, items, and snapshots are immutable.
type AdminUpdateInput struct {
	Status            *enums.OrderStatus
	PaymentStatus     *enums.PaymentStatus
	TrackingNumber    *string
	EstimatedDelivery *time.Time
	OrderNotes        *string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo  Repository
	stock catalog.Repository
	tx    txRunner
}

// NewService constructs the orders service.
func NewService(repo Repository, stock catalog.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if stock == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, stock: stock, tx: tx}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderPage, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	return s.list(ctx, ListFilter{
		UserID: &userID,
		Cursor: nil,
		Limit:  params.Limit,
	}, params.Cursor)
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*OrderPage, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status filter")
	}
	if input.PaymentStatus != nil && !input.PaymentStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status filter")
	}
	return s.list(ctx, ListFilter{
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		Search:        strings.TrimSpace(input.Search),
		Limit:         input.Limit,
	}, input.Cursor)
}

func (s *service) list(ctx context.Context, filter ListFilter, rawCursor string) (*OrderPage, error) {
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	pageSize := pagination.NormalizeLimit(filter.Limit)
	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	orders := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		orders = append(orders, *ToDTO(&rows[i]))
	}
	return &OrderPage{Orders: orders, NextCursor: nextCursor}, nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return ToDTO(order), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

func (s *service) AdminUpdate(ctx context.Context, orderID uuid.UUID, input AdminUpdateInput) (*OrderDTO, error) {
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		restock := false
		if input.Status != nil && *input.Status != order.Status {
			if !input.Status.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
			}
			if !order.Status.CanTransitionTo(*input.Status) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot move order from %s to %s", order.Status, *input.Status))
			}
			restock = *input.Status == enums.OrderStatusCancelled
			order.Status = *input.Status
		}
		if input.PaymentStatus != nil && *input.PaymentStatus != order.PaymentStatus {
			if !input.PaymentStatus.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
			}
			if !order.PaymentStatus.CanTransitionTo(*input.PaymentStatus) {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("cannot move payment from %s to %s", order.PaymentStatus, *input.PaymentStatus))
			}
			order.PaymentStatus = *input.PaymentStatus
		}
		if input.TrackingNumber != nil {
			order.TrackingNumber = strings.TrimSpace(*input.TrackingNumber)
		}
		if input.EstimatedDelivery != nil {
			order.EstimatedDelivery = input.EstimatedDelivery
		}
		if input.OrderNotes != nil {
			order.OrderNotes = *input.OrderNotes
		}

		if err := repo.Update(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		// Cancelling returns the reserved stock to inventory in the same
		// transaction as the status change.
		if restock {
			stock := s.stock.WithTx(tx)
			for _, item := range order.Items {
				if err := stock.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
				}
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToDTO(updated), nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}
