package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	"github.com/finley-aquatics/fishworks-backend/internal/catalog"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

func parseCatalogListParams(r *http.Request) (catalog.ListParams, error) {
	query := r.URL.Query()

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return catalog.ListParams{}, err
	}

	filters := catalog.ListFilters{
		Search:       validators.SanitizeString(query.Get("search"), 200),
		CategorySlug: validators.SanitizeString(query.Get("category"), 150),
	}

	if raw := query.Get("difficulty"); raw != "" {
		level, parseErr := enums.ParseDifficultyLevel(raw)
		if parseErr != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid difficulty")
		}
		filters.Difficulty = &level
	}
	if raw := query.Get("diet_type"); raw != "" {
		diet, parseErr := enums.ParseDietType(raw)
		if parseErr != nil {
			return catalog.ListParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid diet type")
		}
		filters.DietType = &diet
	}

	if filters.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.PHMin, err = validators.ParseQueryDecimal(r, "ph_min"); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.PHMax, err = validators.ParseQueryDecimal(r, "ph_max"); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.MaxSizeInches, err = validators.ParseQueryDecimal(r, "max_size_inches"); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.MinTankSize, err = validators.ParseQueryIntPtr(r, "min_tank_size", 1, 10000); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.TemperatureMin, err = validators.ParseQueryIntPtr(r, "temperature_min", 0, 120); err != nil {
		return catalog.ListParams{}, err
	}
	if filters.TemperatureMax, err = validators.ParseQueryIntPtr(r, "temperature_max", 0, 120); err != nil {
		return catalog.ListParams{}, err
	}

	return catalog.ListParams{
		Filters: filters,
		Params: pagination.Params{
			Limit:  limit,
			Cursor: query.Get("cursor"),
		},
	}, nil
}

// ListProducts serves the public catalog listing with filters and cursor
// pagination. Unavailable products are excluded.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := parseCatalogListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetProduct serves a single public product detail.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminListProducts lists the catalog including unavailable products.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := parseCatalogListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.AdminList(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AdminGetProduct returns one product regardless of availability.
func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

type createProductRequest struct {
	SpeciesName         string           `json:"species_name" validate:"required,max=255"`
	ScientificName      string           `json:"scientific_name" validate:"omitempty,max=255"`
	Description         string           `json:"description" validate:"omitempty"`
	Price               decimal.Decimal  `json:"price" validate:"required"`
	StockQuantity       int              `json:"stock_quantity" validate:"gte=0"`
	IsAvailable         *bool            `json:"is_available,omitempty"`
	DifficultyLevel     string           `json:"difficulty_level" validate:"required"`
	MinTankSizeGallons  int              `json:"min_tank_size_gallons" validate:"omitempty,gt=0"`
	PHRangeMin          *decimal.Decimal `json:"ph_range_min,omitempty"`
	PHRangeMax          *decimal.Decimal `json:"ph_range_max,omitempty"`
	TemperatureRangeMin *int             `json:"temperature_range_min,omitempty"`
	TemperatureRangeMax *int             `json:"temperature_range_max,omitempty"`
	MaxSizeInches       *decimal.Decimal `json:"max_size_inches,omitempty"`
	LifespanYears       *int             `json:"lifespan_years,omitempty" validate:"omitempty,gt=0"`
	DietType            *string          `json:"diet_type,omitempty"`
	CompatibilityNotes  string           `json:"compatibility_notes" validate:"omitempty"`
	CareInstructions    string           `json:"care_instructions" validate:"omitempty"`
	ImageURL            string           `json:"image_url" validate:"omitempty,max=500"`
	AdditionalImages    json.RawMessage  `json:"additional_images,omitempty"`
	SEOTitle            string           `json:"seo_title" validate:"omitempty,max=255"`
	SEODescription      string           `json:"seo_description" validate:"omitempty,max=500"`
	CategoryIDs         []uuid.UUID      `json:"category_ids,omitempty"`
}

func (req createProductRequest) toInput() (catalog.CreateProductInput, error) {
	difficulty, err := enums.ParseDifficultyLevel(req.DifficultyLevel)
	if err != nil {
		return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid difficulty")
	}

	input := catalog.CreateProductInput{
		SpeciesName:         validators.SanitizeString(req.SpeciesName, 255),
		ScientificName:      validators.SanitizeString(req.ScientificName, 255),
		Description:         req.Description,
		Price:               req.Price,
		StockQuantity:       req.StockQuantity,
		IsAvailable:         req.IsAvailable,
		DifficultyLevel:     difficulty,
		MinTankSizeGallons:  req.MinTankSizeGallons,
		PHRangeMin:          req.PHRangeMin,
		PHRangeMax:          req.PHRangeMax,
		TemperatureRangeMin: req.TemperatureRangeMin,
		TemperatureRangeMax: req.TemperatureRangeMax,
		MaxSizeInches:       req.MaxSizeInches,
		LifespanYears:       req.LifespanYears,
		CompatibilityNotes:  req.CompatibilityNotes,
		CareInstructions:    req.CareInstructions,
		ImageURL:            validators.SanitizeString(req.ImageURL, 500),
		AdditionalImages:    req.AdditionalImages,
		SEOTitle:            validators.SanitizeString(req.SEOTitle, 255),
		SEODescription:      validators.SanitizeString(req.SEODescription, 500),
		CategoryIDs:         req.CategoryIDs,
	}
	if req.DietType != nil {
		diet, parseErr := enums.ParseDietType(*req.DietType)
		if parseErr != nil {
			return catalog.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid diet type")
		}
		input.DietType = &diet
	}
	return input, nil
}

// AdminCreateProduct adds a species to the catalog.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminCreate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	SpeciesName         *string          `json:"species_name,omitempty" validate:"omitempty,max=255"`
	ScientificName      *string          `json:"scientific_name,omitempty" validate:"omitempty,max=255"`
	Description         *string          `json:"description,omitempty"`
	Price               *decimal.Decimal `json:"price,omitempty"`
	StockQuantity       *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	IsAvailable         *bool            `json:"is_available,omitempty"`
	DifficultyLevel     *string          `json:"difficulty_level,omitempty"`
	MinTankSizeGallons  *int             `json:"min_tank_size_gallons,omitempty" validate:"omitempty,gt=0"`
	PHRangeMin          *decimal.Decimal `json:"ph_range_min,omitempty"`
	PHRangeMax          *decimal.Decimal `json:"ph_range_max,omitempty"`
	TemperatureRangeMin *int             `json:"temperature_range_min,omitempty"`
	TemperatureRangeMax *int             `json:"temperature_range_max,omitempty"`
	MaxSizeInches       *decimal.Decimal `json:"max_size_inches,omitempty"`
	LifespanYears       *int             `json:"lifespan_years,omitempty" validate:"omitempty,gt=0"`
	DietType            *string          `json:"diet_type,omitempty"`
	CompatibilityNotes  *string          `json:"compatibility_notes,omitempty"`
	CareInstructions    *string          `json:"care_instructions,omitempty"`
	ImageURL            *string          `json:"image_url,omitempty" validate:"omitempty,max=500"`
	AdditionalImages    json.RawMessage  `json:"additional_images,omitempty"`
	SEOTitle            *string          `json:"seo_title,omitempty" validate:"omitempty,max=255"`
	SEODescription      *string          `json:"seo_description,omitempty" validate:"omitempty,max=500"`
	CategoryIDs         []uuid.UUID      `json:"category_ids,omitempty"`
}

func (req updateProductRequest) toInput() (catalog.UpdateProductInput, error) {
	input := catalog.UpdateProductInput{
		SpeciesName:         req.SpeciesName,
		ScientificName:      req.ScientificName,
		Description:         req.Description,
		Price:               req.Price,
		StockQuantity:       req.StockQuantity,
		IsAvailable:         req.IsAvailable,
		MinTankSizeGallons:  req.MinTankSizeGallons,
		PHRangeMin:          req.PHRangeMin,
		PHRangeMax:          req.PHRangeMax,
		TemperatureRangeMin: req.TemperatureRangeMin,
		TemperatureRangeMax: req.TemperatureRangeMax,
		MaxSizeInches:       req.MaxSizeInches,
		LifespanYears:       req.LifespanYears,
		CompatibilityNotes:  req.CompatibilityNotes,
		CareInstructions:    req.CareInstructions,
		ImageURL:            req.ImageURL,
		AdditionalImages:    req.AdditionalImages,
		SEOTitle:            req.SEOTitle,
		SEODescription:      req.SEODescription,
		CategoryIDs:         req.CategoryIDs,
	}
	if req.DifficultyLevel != nil {
		level, err := enums.ParseDifficultyLevel(*req.DifficultyLevel)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid difficulty")
		}
		input.DifficultyLevel = &level
	}
	if req.DietType != nil {
		diet, err := enums.ParseDietType(*req.DietType)
		if err != nil {
			return catalog.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid diet type")
		}
		input.DietType = &diet
	}
	return input, nil
}

// AdminUpdateProduct patches a product; absent fields are left untouched.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdminUpdate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes a product from the catalog.
func AdminDeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
