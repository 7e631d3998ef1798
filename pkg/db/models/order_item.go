package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a single product line within an order. ProductSnapshot holds
// the product data captured at checkout and is never rewritten afterwards.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_order_items_order_product"`
	Product         *FishProduct    `gorm:"foreignKey:ProductID"`
	Quantity        int             `gorm:"column:quantity;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"column:total_price;type:numeric(10,2);not null"`
	ProductSnapshot json.RawMessage `gorm:"column:product_snapshot;type:jsonb;not null"`
}
