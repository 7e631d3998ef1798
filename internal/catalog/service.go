package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog reads and admin product management.
type Service interface {
	List(ctx context.Context, params ListParams) (*ProductPage, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	AdminList(ctx context.Context, params ListParams) (*ProductPage, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*ProductDetail, error)
	AdminCreate(ctx context.Context, input CreateProductInput) (*ProductDetail, error)
	AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetail, error)
	AdminDelete(ctx context.Context, id uuid.UUID) error
}

// ListParams carries catalog filters plus pagination inputs.
type ListParams struct {
	Filters ListFilters
	pagination.Params
}

// CreateProductInput carries the fields accepted when creating a product.
type CreateProductInput struct {
	SpeciesName         string
	ScientificName      string
	Description         string
	Price               decimal.Decimal
	StockQuantity       int
	IsAvailable         *bool
	DifficultyLevel     enums.DifficultyLevel
	MinTankSizeGallons  int
	PHRangeMin          *decimal.Decimal
	PHRangeMax          *decimal.Decimal
	TemperatureRangeMin *int
	TemperatureRangeMax *int
	MaxSizeInches       *decimal.Decimal
	LifespanYears       *int
	DietType            *enums.DietType
	CompatibilityNotes  string
	CareInstructions    string
	ImageURL            string
	AdditionalImages    json.RawMessage
	SEOTitle            string
	SEODescription      string
	CategoryIDs         []uuid.UUID
}

// UpdateProductInput patches a product. Nil fields are left untouched;
// CategoryIDs when present replaces the full membership set.
type UpdateProductInput struct {
	SpeciesName         *string
	ScientificName      *string
	Description         *string
	Price               *decimal.Decimal
	StockQuantity       *int
	IsAvailable         *bool
	DifficultyLevel     *enums.DifficultyLevel
	MinTankSizeGallons  *int
	PHRangeMin          *decimal.Decimal
	PHRangeMax          *decimal.Decimal
	TemperatureRangeMin *int
	TemperatureRangeMax *int
	MaxSizeInches       *decimal.Decimal
	LifespanYears       *int
	DietType            *enums.DietType
	CompatibilityNotes  *string
	CareInstructions    *string
	ImageURL            *string
	AdditionalImages    json.RawMessage
	SEOTitle            *string
	SEODescription      *string
	CategoryIDs         []uuid.UUID
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService constructs the catalog service.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ProductPage, error) {
	return s.list(ctx, params, false)
}

func (s *service) AdminList(ctx context.Context, params ListParams) (*ProductPage, error) {
	return s.list(ctx, params, true)
}

func (s *service) list(ctx context.Context, params ListParams, includeUnavailable bool) (*ProductPage, error) {
	cursor, err := pagination.ParseKeyCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	products, err := s.repo.List(ctx, ListQuery{
		Filters:            params.Filters,
		Cursor:             cursor,
		Limit:              params.Limit,
		IncludeUnavailable: includeUnavailable,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(products) > pageSize {
		products = products[:pageSize]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeKeyCursor(pagination.KeyCursor{Key: last.SpeciesName, ID: last.ID})
	}

	summaries := make([]ProductSummary, 0, len(products))
	for _, product := range products {
		summaries = append(summaries, toSummary(product))
	}

	return &ProductPage{
		Products:   summaries,
		NextCursor: nextCursor,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return toDetail(product), nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*ProductDetail, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(product), nil
}

func (s *service) AdminCreate(ctx context.Context, input CreateProductInput) (*ProductDetail, error) {
	speciesName := strings.TrimSpace(input.SpeciesName)
	if speciesName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "species name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	if !input.DifficultyLevel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid difficulty level")
	}
	if input.MinTankSizeGallons <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum tank size must be positive")
	}
	if input.DietType != nil && !input.DietType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid diet type")
	}
	if err := validateRanges(input.PHRangeMin, input.PHRangeMax, input.TemperatureRangeMin, input.TemperatureRangeMax); err != nil {
		return nil, err
	}

	isAvailable := true
	if input.IsAvailable != nil {
		isAvailable = *input.IsAvailable
	}
	images := input.AdditionalImages
	if len(images) == 0 {
		images = json.RawMessage("[]")
	}

	product := &models.FishProduct{
		ID:                  uuid.New(),
		SpeciesName:         speciesName,
		ScientificName:      strings.TrimSpace(input.ScientificName),
		Description:         input.Description,
		Price:               input.Price,
		StockQuantity:       input.StockQuantity,
		IsAvailable:         isAvailable,
		DifficultyLevel:     input.DifficultyLevel,
		MinTankSizeGallons:  input.MinTankSizeGallons,
		PHRangeMin:          input.PHRangeMin,
		PHRangeMax:          input.PHRangeMax,
		TemperatureRangeMin: input.TemperatureRangeMin,
		TemperatureRangeMax: input.TemperatureRangeMax,
		MaxSizeInches:       input.MaxSizeInches,
		LifespanYears:       input.LifespanYears,
		DietType:            input.DietType,
		CompatibilityNotes:  input.CompatibilityNotes,
		CareInstructions:    input.CareInstructions,
		ImageURL:            strings.TrimSpace(input.ImageURL),
		AdditionalImages:    images,
		SEOTitle:            input.SEOTitle,
		SEODescription:      input.SEODescription,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := s.ensureCategoriesExist(ctx, repo, input.CategoryIDs); err != nil {
			return err
		}
		if _, err := repo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		if len(input.CategoryIDs) > 0 {
			if err := repo.ReplaceCategories(ctx, product, input.CategoryIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign categories")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.AdminGet(ctx, product.ID)
}

func (s *service) AdminUpdate(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDetail, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		if input.SpeciesName != nil {
			name := strings.TrimSpace(*input.SpeciesName)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "species name is required")
			}
			product.SpeciesName = name
		}
		if input.ScientificName != nil {
			product.ScientificName = strings.TrimSpace(*input.ScientificName)
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
			}
			product.Price = *input.Price
		}
		if input.StockQuantity != nil {
			if *input.StockQuantity < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
			}
			product.StockQuantity = *input.StockQuantity
		}
		if input.IsAvailable != nil {
			product.IsAvailable = *input.IsAvailable
		}
		if input.DifficultyLevel != nil {
			if !input.DifficultyLevel.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid difficulty level")
			}
			product.DifficultyLevel = *input.DifficultyLevel
		}
		if input.MinTankSizeGallons != nil {
			if *input.MinTankSizeGallons <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "minimum tank size must be positive")
			}
			product.MinTankSizeGallons = *input.MinTankSizeGallons
		}
		if input.PHRangeMin != nil {
			product.PHRangeMin = input.PHRangeMin
		}
		if input.PHRangeMax != nil {
			product.PHRangeMax = input.PHRangeMax
		}
		if input.TemperatureRangeMin != nil {
			product.TemperatureRangeMin = input.TemperatureRangeMin
		}
		if input.TemperatureRangeMax != nil {
			product.TemperatureRangeMax = input.TemperatureRangeMax
		}
		if err := validateRanges(product.PHRangeMin, product.PHRangeMax, product.TemperatureRangeMin, product.TemperatureRangeMax); err != nil {
			return err
		}
		if input.MaxSizeInches != nil {
			product.MaxSizeInches = input.MaxSizeInches
		}
		if input.LifespanYears != nil {
			product.LifespanYears = input.LifespanYears
		}
		if input.DietType != nil {
			if !input.DietType.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid diet type")
			}
			product.DietType = input.DietType
		}
		if input.CompatibilityNotes != nil {
			product.CompatibilityNotes = *input.CompatibilityNotes
		}
		if input.CareInstructions != nil {
			product.CareInstructions = *input.CareInstructions
		}
		if input.ImageURL != nil {
			product.ImageURL = strings.TrimSpace(*input.ImageURL)
		}
		if len(input.AdditionalImages) > 0 {
			product.AdditionalImages = input.AdditionalImages
		}
		if input.SEOTitle != nil {
			product.SEOTitle = *input.SEOTitle
		}
		if input.SEODescription != nil {
			product.SEODescription = *input.SEODescription
		}

		if err := repo.Update(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}

		if input.CategoryIDs != nil {
			if err := s.ensureCategoriesExist(ctx, repo, input.CategoryIDs); err != nil {
				return err
			}
			if err := repo.ReplaceCategories(ctx, product, input.CategoryIDs); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace categories")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.AdminGet(ctx, id)
}

func (s *service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.FishProduct, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) ensureCategoriesExist(ctx context.Context, repo Repository, categoryIDs []uuid.UUID) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	count, err := repo.CountCategories(ctx, categoryIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check categories")
	}
	if count != int64(len(categoryIDs)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "one or more categories do not exist")
	}
	return nil
}

func validateRanges(phMin, phMax *decimal.Decimal, tempMin, tempMax *int) error {
	if phMin != nil && phMax != nil && phMin.GreaterThan(*phMax) {
		return pkgerrors.New(pkgerrors.CodeValidation, "pH range minimum cannot exceed maximum")
	}
	if tempMin != nil && tempMax != nil && *tempMin > *tempMax {
		return pkgerrors.New(pkgerrors.CodeValidation, "temperature range minimum cannot exceed maximum")
	}
	return nil
}
