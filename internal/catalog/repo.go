package catalog

import (
	"context"
	"strings"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the fish catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.FishProduct) (*models.FishProduct, error)
	Update(ctx context.Context, product *models.FishProduct) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.FishProduct, error)
	List(ctx context.Context, query ListQuery) ([]models.FishProduct, error)
	ReplaceCategories(ctx context.Context, product *models.FishProduct, categoryIDs []uuid.UUID) error
	CountCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error)
	DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error
}

// ListFilters narrows the catalog listing. Range filters that describe the
// buyer's tank (pH, temperature) match products whose tolerated range covers
// the given value.
type ListFilters struct {
	Search         string
	CategorySlug   string
	Difficulty     *enums.DifficultyLevel
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	MinTankSize    *int
	PHMin          *decimal.Decimal
	PHMax          *decimal.Decimal
	TemperatureMin *int
	TemperatureMax *int
	DietType       *enums.DietType
	MaxSizeInches  *decimal.Decimal
}

// ListQuery bundles filters with pagination state for the repository.
type ListQuery struct {
	Filters            ListFilters
	Cursor             *pagination.KeyCursor
	Limit              int
	IncludeUnavailable bool
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.FishProduct) (*models.FishProduct, error) {
	if err := r.db.WithContext(ctx).Omit("Categories").Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, product *models.FishProduct) error {
	return r.db.WithContext(ctx).Omit("Categories").Save(product).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.FishProduct{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.FishProduct, error) {
	var product models.FishProduct
	err := r.db.WithContext(ctx).
		Preload("Categories").
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.FishProduct, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.FishProduct{}).
		Preload("Categories")

	if !query.IncludeUnavailable {
		qb = qb.Where("is_available = ?", true)
	}

	filter := query.Filters
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(species_name) LIKE ? OR LOWER(scientific_name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(care_instructions) LIKE ? OR LOWER(compatibility_notes) LIKE ?)",
			pattern, pattern, pattern, pattern, pattern,
		)
	}
	if filter.CategorySlug != "" {
		qb = qb.Where(
			"id IN (SELECT pc.fish_product_id FROM product_categories pc JOIN categories c ON c.id = pc.category_id WHERE c.slug = ?)",
			filter.CategorySlug,
		)
	}
	if filter.Difficulty != nil {
		qb = qb.Where("difficulty_level = ?", *filter.Difficulty)
	}
	if filter.MinPrice != nil {
		qb = qb.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		qb = qb.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinTankSize != nil {
		qb = qb.Where("min_tank_size_gallons >= ?", *filter.MinTankSize)
	}
	if filter.PHMin != nil {
		qb = qb.Where("ph_range_min <= ? AND ph_range_max >= ?", *filter.PHMin, *filter.PHMin)
	}
	if filter.PHMax != nil {
		qb = qb.Where("ph_range_min <= ? AND ph_range_max >= ?", *filter.PHMax, *filter.PHMax)
	}
	if filter.TemperatureMin != nil {
		qb = qb.Where("temperature_range_min <= ? AND temperature_range_max >= ?", *filter.TemperatureMin, *filter.TemperatureMin)
	}
	if filter.TemperatureMax != nil {
		qb = qb.Where("temperature_range_min <= ? AND temperature_range_max >= ?", *filter.TemperatureMax, *filter.TemperatureMax)
	}
	if filter.DietType != nil {
		qb = qb.Where("diet_type = ?", *filter.DietType)
	}
	if filter.MaxSizeInches != nil {
		qb = qb.Where("max_size_inches <= ?", *filter.MaxSizeInches)
	}

	if query.Cursor != nil {
		qb = qb.Where("(species_name, id) > (?, ?)", query.Cursor.Key, query.Cursor.ID)
	}

	var products []models.FishProduct
	err := qb.
		Order("species_name ASC, id ASC").
		Limit(pagination.LimitWithBuffer(query.Limit)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ReplaceCategories(ctx context.Context, product *models.FishProduct, categoryIDs []uuid.UUID) error {
	assoc := r.db.WithContext(ctx).Model(product).Association("Categories")
	if len(categoryIDs) == 0 {
		return assoc.Clear()
	}
	categories := make([]models.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, models.Category{ID: id})
	}
	return assoc.Replace(&categories)
}

func (r *repository) CountCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("id IN ?", categoryIDs).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DecrementStockGuarded decrements stock only when enough remains. A false
// return means a concurrent checkout drained the stock first.
func (r *repository) DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FishProduct{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.FishProduct{}).
		Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", quantity)).Error
}
