package articles

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

// Repository provides article persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, article *models.Article) (*models.Article, error)
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, filter ListFilter) ([]models.Article, error)
	SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error)
}

// ListFilter narrows article listings. PublishedOnly switches the ordering
// column to published_at; admin listings order by created_at.
type ListFilter struct {
	CategorySlug  string
	Status        *enums.ArticleStatus
	Search        string
	PublishedOnly bool
	Cursor        *pagination.Cursor
	Limit         int
}

// CategoryRepository provides article category persistence.
type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	Create(ctx context.Context, category *models.ArticleCategory) (*models.ArticleCategory, error)
	Update(ctx context.Context, category *models.ArticleCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ArticleCategory, error)
	List(ctx context.Context) ([]models.ArticleCategory, error)
	CountArticles(ctx context.Context, categoryID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the article repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {
	if err := r.db.WithContext(ctx).Omit("Category", "Author").Create(article).Error; err != nil {
		return nil, err
	}
	return article, nil
}

func (r *repository) Update(ctx context.Context, article *models.Article) error {
	return r.db.WithContext(ctx).Omit("Category", "Author").Save(article).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Article{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&article, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).
		Preload("Category").
		First(&article, "slug = ?", slug).Error
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Article, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{}).Preload("Category")

	if filter.PublishedOnly {
		query = query.Where("status = ?", enums.ArticleStatusPublished)
	} else if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CategorySlug != "" {
		query = query.Where(
			"category_id IN (SELECT id FROM article_categories WHERE slug = ?)",
			filter.CategorySlug,
		)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ?", pattern, pattern)
	}

	orderColumn := "created_at"
	if filter.PublishedOnly {
		orderColumn = "published_at"
	}
	if filter.Cursor != nil {
		query = query.Where("("+orderColumn+", id) < (?, ?)", filter.Cursor.CreatedAt, filter.Cursor.ID)
	}

	var rows []models.Article
	err := query.
		Order(orderColumn + " DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{}).Where("slug = ?", slug)
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository builds the article category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	if tx == nil {
		return r
	}
	return &categoryRepository{db: tx}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.ArticleCategory) (*models.ArticleCategory, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.ArticleCategory) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ArticleCategory{}, "id = ?", id).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ArticleCategory, error) {
	var category models.ArticleCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]models.ArticleCategory, error) {
	var rows []models.ArticleCategory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepository) CountArticles(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
