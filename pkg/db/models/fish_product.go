package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// FishProduct represents a freshwater species or variety offered for sale.
type FishProduct struct {
	ID                  uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SpeciesName         string                `gorm:"column:species_name;not null"`
	ScientificName      string                `gorm:"column:scientific_name;not null;default:''"`
	Description         string                `gorm:"column:description;not null"`
	Price               decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity       int                   `gorm:"column:stock_quantity;not null;default:0"`
	IsAvailable         bool                  `gorm:"column:is_available;not null;default:true"`
	DifficultyLevel     enums.DifficultyLevel `gorm:"column:difficulty_level;type:text;not null"`
	MinTankSizeGallons  int                   `gorm:"column:min_tank_size_gallons;not null"`
	PHRangeMin          *decimal.Decimal      `gorm:"column:ph_range_min;type:numeric(3,1)"`
	PHRangeMax          *decimal.Decimal      `gorm:"column:ph_range_max;type:numeric(3,1)"`
	TemperatureRangeMin *int                  `gorm:"column:temperature_range_min"`
	TemperatureRangeMax *int                  `gorm:"column:temperature_range_max"`
	MaxSizeInches       *decimal.Decimal      `gorm:"column:max_size_inches;type:numeric(5,1)"`
	LifespanYears       *int                  `gorm:"column:lifespan_years"`
	DietType            *enums.DietType       `gorm:"column:diet_type;type:text"`
	CompatibilityNotes  string                `gorm:"column:compatibility_notes;not null;default:''"`
	CareInstructions    string                `gorm:"column:care_instructions;not null"`
	ImageURL            string                `gorm:"column:image_url;not null;default:''"`
	AdditionalImages    json.RawMessage       `gorm:"column:additional_images;type:jsonb;not null;default:'[]'"`
	SEOTitle            string                `gorm:"column:seo_title;not null;default:''"`
	SEODescription      string                `gorm:"column:seo_description;not null;default:''"`
	Categories          []Category            `gorm:"many2many:product_categories"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
