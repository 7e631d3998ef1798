package models

import (
	"time"

	"github.com/google/uuid"
)

// Category organizes fish products into a tree. ParentCategoryID is nil for
// root categories.
type Category struct {
	ID               uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string        `gorm:"column:name;not null;uniqueIndex"`
	Slug             string        `gorm:"column:slug;not null;uniqueIndex"`
	Description      string        `gorm:"column:description;not null;default:''"`
	ImageURL         string        `gorm:"column:image_url;not null;default:''"`
	ParentCategoryID *uuid.UUID    `gorm:"column:parent_category_id;type:uuid"`
	Subcategories    []Category    `gorm:"foreignKey:ParentCategoryID;constraint:OnDelete:CASCADE"`
	Products         []FishProduct `gorm:"many2many:product_categories"`
	DisplayOrder     int           `gorm:"column:display_order;not null;default:0"`
	IsActive         bool          `gorm:"column:is_active;not null;default:true"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime"`
}
