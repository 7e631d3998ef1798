package orders

import (
	"encoding/json"
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemDTO is a purchased line with its immutable product snapshot.
type OrderItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	ProductSnapshot json.RawMessage `json:"product_snapshot"`
}

// OrderAddressDTO is the address data embedded in order payloads.
type OrderAddressDTO struct {
	ID           uuid.UUID         `json:"id"`
	AddressType  enums.AddressType `json:"address_type"`
	FirstName    string            `json:"first_name"`
	LastName     string            `json:"last_name"`
	AddressLine1 string            `json:"address_line_1"`
	AddressLine2 string            `json:"address_line_2,omitempty"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	PostalCode   string            `json:"postal_code"`
	Country      string            `json:"country"`
}

// OrderDTO is the full order payload.
type OrderDTO struct {
	ID                uuid.UUID           `json:"id"`
	OrderNumber       string              `json:"order_number"`
	UserID            uuid.UUID           `json:"user_id"`
	Status            enums.OrderStatus   `json:"status"`
	PaymentStatus     enums.PaymentStatus `json:"payment_status"`
	PaymentMethod     string              `json:"payment_method,omitempty"`
	TotalAmount       decimal.Decimal     `json:"total_amount"`
	ShippingAmount    decimal.Decimal     `json:"shipping_amount"`
	TaxAmount         decimal.Decimal     `json:"tax_amount"`
	DiscountAmount    decimal.Decimal     `json:"discount_amount"`
	ShippingAddress   *OrderAddressDTO    `json:"shipping_address,omitempty"`
	BillingAddress    *OrderAddressDTO    `json:"billing_address,omitempty"`
	OrderNotes        string              `json:"order_notes,omitempty"`
	TrackingNumber    string              `json:"tracking_number,omitempty"`
	EstimatedDelivery *time.Time          `json:"estimated_delivery,omitempty"`
	Items             []OrderItemDTO      `json:"items"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// OrderPage is a cursor-paginated order listing.
type OrderPage struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func toAddressDTO(address *models.Address) *OrderAddressDTO {
	if address == nil {
		return nil
	}
	return &OrderAddressDTO{
		ID:           address.ID,
		AddressType:  address.AddressType,
		FirstName:    address.FirstName,
		LastName:     address.LastName,
		AddressLine1: address.AddressLine1,
		AddressLine2: address.AddressLine2,
		City:         address.City,
		State:        address.State,
		PostalCode:   address.PostalCode,
		Country:      address.Country,
	}
}

// ToDTO converts a persisted order into its API representation.
func ToDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:              item.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.TotalPrice,
			ProductSnapshot: item.ProductSnapshot,
		})
	}
	return &OrderDTO{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		Status:            order.Status,
		PaymentStatus:     order.PaymentStatus,
		PaymentMethod:     order.PaymentMethod,
		TotalAmount:       order.TotalAmount,
		ShippingAmount:    order.ShippingAmount,
		TaxAmount:         order.TaxAmount,
		DiscountAmount:    order.DiscountAmount,
		ShippingAddress:   toAddressDTO(order.ShippingAddress),
		BillingAddress:    toAddressDTO(order.BillingAddress),
		OrderNotes:        order.OrderNotes,
		TrackingNumber:    order.TrackingNumber,
		EstimatedDelivery: order.EstimatedDelivery,
		Items:             items,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
	}
}
