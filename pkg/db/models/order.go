package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// Order is a purchase transaction record. OrderNumber is assigned once at
// creation and never changes.
type Order struct {
	ID                uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount       decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	ShippingAmount    decimal.Decimal     `gorm:"column:shipping_amount;type:numeric(10,2);not null;default:0"`
	TaxAmount         decimal.Decimal     `gorm:"column:tax_amount;type:numeric(10,2);not null;default:0"`
	DiscountAmount    decimal.Decimal     `gorm:"column:discount_amount;type:numeric(10,2);not null;default:0"`
	PaymentStatus     enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentMethod     string              `gorm:"column:payment_method;not null;default:''"`
	ShippingAddressID uuid.UUID           `gorm:"column:shipping_address_id;type:uuid;not null"`
	ShippingAddress   *Address            `gorm:"foreignKey:ShippingAddressID"`
	BillingAddressID  *uuid.UUID          `gorm:"column:billing_address_id;type:uuid"`
	BillingAddress    *Address            `gorm:"foreignKey:BillingAddressID"`
	OrderNotes        string              `gorm:"column:order_notes;not null;default:''"`
	TrackingNumber    string              `gorm:"column:tracking_number;not null;default:''"`
	EstimatedDelivery *time.Time          `gorm:"column:estimated_delivery;type:date"`
	Items             []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
