package catalog

import (
	"encoding/json"
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryRef is the slim category reference embedded in product payloads.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductSummary is the catalog listing row.
type ProductSummary struct {
	ID              uuid.UUID             `json:"id"`
	SpeciesName     string                `json:"species_name"`
	ScientificName  string                `json:"scientific_name,omitempty"`
	Price           decimal.Decimal       `json:"price"`
	StockQuantity   int                   `json:"stock_quantity"`
	IsAvailable     bool                  `json:"is_available"`
	DifficultyLevel enums.DifficultyLevel `json:"difficulty_level"`
	ImageURL        string                `json:"image_url,omitempty"`
	Categories      []CategoryRef         `json:"categories"`
}

// ProductDetail is the full product payload including care attributes.
type ProductDetail struct {
	ID                  uuid.UUID             `json:"id"`
	SpeciesName         string                `json:"species_name"`
	ScientificName      string                `json:"scientific_name,omitempty"`
	Description         string                `json:"description"`
	Price               decimal.Decimal       `json:"price"`
	StockQuantity       int                   `json:"stock_quantity"`
	IsAvailable         bool                  `json:"is_available"`
	DifficultyLevel     enums.DifficultyLevel `json:"difficulty_level"`
	MinTankSizeGallons  int                   `json:"min_tank_size_gallons"`
	PHRangeMin          *decimal.Decimal      `json:"ph_range_min,omitempty"`
	PHRangeMax          *decimal.Decimal      `json:"ph_range_max,omitempty"`
	TemperatureRangeMin *int                  `json:"temperature_range_min,omitempty"`
	TemperatureRangeMax *int                  `json:"temperature_range_max,omitempty"`
	MaxSizeInches       *decimal.Decimal      `json:"max_size_inches,omitempty"`
	LifespanYears       *int                  `json:"lifespan_years,omitempty"`
	DietType            *enums.DietType       `json:"diet_type,omitempty"`
	CompatibilityNotes  string                `json:"compatibility_notes,omitempty"`
	CareInstructions    string                `json:"care_instructions"`
	ImageURL            string                `json:"image_url,omitempty"`
	AdditionalImages    json.RawMessage       `json:"additional_images"`
	SEOTitle            string                `json:"seo_title,omitempty"`
	SEODescription      string                `json:"seo_description,omitempty"`
	Categories          []CategoryRef         `json:"categories"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// ProductPage is a cursor-paginated catalog listing.
type ProductPage struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func categoryRefs(categories []models.Category) []CategoryRef {
	refs := make([]CategoryRef, 0, len(categories))
	for _, category := range categories {
		refs = append(refs, CategoryRef{
			ID:   category.ID,
			Name: category.Name,
			Slug: category.Slug,
		})
	}
	return refs
}

func toSummary(product models.FishProduct) ProductSummary {
	return ProductSummary{
		ID:              product.ID,
		SpeciesName:     product.SpeciesName,
		ScientificName:  product.ScientificName,
		Price:           product.Price,
		StockQuantity:   product.StockQuantity,
		IsAvailable:     product.IsAvailable,
		DifficultyLevel: product.DifficultyLevel,
		ImageURL:        product.ImageURL,
		Categories:      categoryRefs(product.Categories),
	}
}

func toDetail(product *models.FishProduct) *ProductDetail {
	images := product.AdditionalImages
	if len(images) == 0 {
		images = json.RawMessage("[]")
	}
	return &ProductDetail{
		ID:                  product.ID,
		SpeciesName:         product.SpeciesName,
		ScientificName:      product.ScientificName,
		Description:         product.Description,
		Price:               product.Price,
		StockQuantity:       product.StockQuantity,
		IsAvailable:         product.IsAvailable,
		DifficultyLevel:     product.DifficultyLevel,
		MinTankSizeGallons:  product.MinTankSizeGallons,
		PHRangeMin:          product.PHRangeMin,
		PHRangeMax:          product.PHRangeMax,
		TemperatureRangeMin: product.TemperatureRangeMin,
		TemperatureRangeMax: product.TemperatureRangeMax,
		MaxSizeInches:       product.MaxSizeInches,
		LifespanYears:       product.LifespanYears,
		DietType:            product.DietType,
		CompatibilityNotes:  product.CompatibilityNotes,
		CareInstructions:    product.CareInstructions,
		ImageURL:            product.ImageURL,
		AdditionalImages:    images,
		SEOTitle:            product.SEOTitle,
		SEODescription:      product.SEODescription,
		Categories:          categoryRefs(product.Categories),
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
}
