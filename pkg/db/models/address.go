package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// Address is a customer shipping or billing address. At most one address per
// user and type may have IsDefault set.
type Address struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	AddressType  enums.AddressType `gorm:"column:address_type;type:text;not null"`
	FirstName    string            `gorm:"column:first_name;not null"`
	LastName     string            `gorm:"column:last_name;not null"`
	Company      string            `gorm:"column:company;not null;default:''"`
	AddressLine1 string            `gorm:"column:address_line_1;not null"`
	AddressLine2 string            `gorm:"column:address_line_2;not null;default:''"`
	City         string            `gorm:"column:city;not null"`
	State        string            `gorm:"column:state;not null"`
	PostalCode   string            `gorm:"column:postal_code;not null"`
	Country      string            `gorm:"column:country;not null;default:'US'"`
	Phone        string            `gorm:"column:phone;not null;default:''"`
	IsDefault    bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}
