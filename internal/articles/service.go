package articles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

const slugSuffixLimit = 50

// Service exposes the blog: public reads of published articles and admin
// management of articles and their categories.
type Service interface {
	List(ctx context.Context, input ListInput) (*ArticlePage, error)
	GetBySlug(ctx context.Context, articleSlug string) (*ArticleDetail, error)
	ListCategories(ctx context.Context) ([]ArticleCategoryDTO, error)

	AdminList(ctx context.Context, input AdminListInput) (*ArticlePage, error)
	AdminGet(ctx context.Context, id uuid.UUID) (*ArticleDetail, error)
	Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (*ArticleDetail, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ArticleDetail, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, input CategoryInput) (*ArticleCategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*ArticleCategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// ListInput narrows the public article listing.
type ListInput struct {
	CategorySlug string
	Search       string
	pagination.Params
}

// AdminListInput narrows the admin article listing.
type AdminListInput struct {
	CategorySlug string
	Status       *enums.ArticleStatus
	Search       string
	pagination.Params
}

// CreateInput creates a new article, draft by default.
type CreateInput struct {
	Title                string
	Content              string
	Excerpt              string
	FeaturedImageURL     string
	FeaturedImageAltText string
	CategoryID           uuid.UUID
	Status               enums.ArticleStatus
	MetaTitle            string
	MetaDescription      string
}

// UpdateInput patches an article. Nil fields are left untouched.
type UpdateInput struct {
	Title                *string
	Content              *string
	Excerpt              *string
	FeaturedImageURL     *string
	FeaturedImageAltText *string
	CategoryID           *uuid.UUID
	Status               *enums.ArticleStatus
	MetaTitle            *string
	MetaDescription      *string
}

// CategoryInput creates or updates an article category.
type CategoryInput struct {
	Name        string
	Description string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

type service struct {
	repo         Repository
	categoryRepo CategoryRepository
	tx           txRunner
	cache        cacheStore
	cacheTTL     time.Duration
}

// NewService constructs the articles service. The cache store is optional.
func NewService(repo Repository, categoryRepo CategoryRepository, tx txRunner, cache cacheStore, cfg config.ArticlesConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("articles repository is required")
	}
	if categoryRepo == nil {
		return nil, fmt.Errorf("article category repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:         repo,
		categoryRepo: categoryRepo,
		tx:           tx,
		cache:        cache,
		cacheTTL:     cfg.CategoryCacheTTL,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ArticlePage, error) {
	return s.list(ctx, ListFilter{
		CategorySlug:  strings.TrimSpace(input.CategorySlug),
		Search:        input.Search,
		PublishedOnly: true,
		Limit:         input.Limit,
	}, input.Cursor)
}

func (s *service) AdminList(ctx context.Context, input AdminListInput) (*ArticlePage, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article status filter")
	}
	return s.list(ctx, ListFilter{
		CategorySlug: strings.TrimSpace(input.CategorySlug),
		Status:       input.Status,
		Search:       input.Search,
		Limit:        input.Limit,
	}, input.Cursor)
}

func (s *service) list(ctx context.Context, filter ListFilter, rawCursor string) (*ArticlePage, error) {
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list articles")
	}

	pageSize := pagination.NormalizeLimit(filter.Limit)
	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		position := last.CreatedAt
		if filter.PublishedOnly && last.PublishedAt != nil {
			position = *last.PublishedAt
		}
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: position, ID: last.ID})
	}

	articles := make([]ArticleSummary, 0, len(rows))
	for i := range rows {
		articles = append(articles, toSummary(&rows[i]))
	}
	return &ArticlePage{Articles: articles, NextCursor: nextCursor}, nil
}

func (s *service) GetBySlug(ctx context.Context, articleSlug string) (*ArticleDetail, error) {
	articleSlug = strings.TrimSpace(articleSlug)
	if articleSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article slug is required")
	}

	article, err := s.repo.FindBySlug(ctx, articleSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	if article.Status != enums.ArticleStatusPublished {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
	}
	return toDetail(article), nil
}

func (s *service) AdminGet(ctx context.Context, id uuid.UUID) (*ArticleDetail, error) {
	article, err := s.loadArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(article), nil
}

func (s *service) Create(ctx context.Context, authorID uuid.UUID, input CreateInput) (*ArticleDetail, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "author identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article content is required")
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "article category is required")
	}
	status := input.Status
	if status == "" {
		status = enums.ArticleStatusDraft
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article status")
	}

	var created *models.Article
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := s.categoryRepo.WithTx(tx).FindByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "article category does not exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article category")
		}

		articleSlug, err := s.uniqueSlug(ctx, repo, title, nil)
		if err != nil {
			return err
		}

		article := &models.Article{
			ID:                   uuid.New(),
			Title:                title,
			Slug:                 articleSlug,
			Content:              input.Content,
			Excerpt:              input.Excerpt,
			FeaturedImageURL:     input.FeaturedImageURL,
			FeaturedImageAltText: input.FeaturedImageAltText,
			CategoryID:           input.CategoryID,
			AuthorID:             authorID,
			Status:               status,
			MetaTitle:            input.MetaTitle,
			MetaDescription:      input.MetaDescription,
		}
		if status == enums.ArticleStatusPublished {
			now := time.Now().UTC()
			article.PublishedAt = &now
		}

		created, err = repo.Create(ctx, article)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create article")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDetail(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ArticleDetail, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article status")
	}

	var updated *models.Article
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		article, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
		}

		if input.Title != nil && strings.TrimSpace(*input.Title) != article.Title {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "article title is required")
			}
			articleSlug, err := s.uniqueSlug(ctx, repo, title, &article.ID)
			if err != nil {
				return err
			}
			article.Title = title
			article.Slug = articleSlug
		}
		if input.Content != nil {
			if strings.TrimSpace(*input.Content) == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "article content is required")
			}
			article.Content = *input.Content
		}
		if input.Excerpt != nil {
			article.Excerpt = *input.Excerpt
		}
		if input.FeaturedImageURL != nil {
			article.FeaturedImageURL = *input.FeaturedImageURL
		}
		if input.FeaturedImageAltText != nil {
			article.FeaturedImageAltText = *input.FeaturedImageAltText
		}
		if input.CategoryID != nil && *input.CategoryID != article.CategoryID {
			if _, err := s.categoryRepo.WithTx(tx).FindByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "article category does not exist")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article category")
			}
			article.CategoryID = *input.CategoryID
			article.Category = nil
		}
		if input.MetaTitle != nil {
			article.MetaTitle = *input.MetaTitle
		}
		if input.MetaDescription != nil {
			article.MetaDescription = *input.MetaDescription
		}
		if input.Status != nil && *input.Status != article.Status {
			switch *input.Status {
			case enums.ArticleStatusPublished:
				if article.PublishedAt == nil {
					now := time.Now().UTC()
					article.PublishedAt = &now
				}
			case enums.ArticleStatusDraft:
				article.PublishedAt = nil
			}
			article.Status = *input.Status
		}

		if err := repo.Update(ctx, article); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update article")
		}
		updated = article
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDetail(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
		}
		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete article")
		}
		return nil
	})
}

func (s *service) ListCategories(ctx context.Context) ([]ArticleCategoryDTO, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.categoriesCacheKey()); err == nil && cached != "" {
			var categories []ArticleCategoryDTO
			if err := json.Unmarshal([]byte(cached), &categories); err == nil {
				return categories, nil
			}
		}
	}

	rows, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list article categories")
	}
	categories := make([]ArticleCategoryDTO, 0, len(rows))
	for i := range rows {
		categories = append(categories, *toCategoryDTO(&rows[i]))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(categories); err == nil {
			_ = s.cache.Set(ctx, s.categoriesCacheKey(), payload, s.cacheTTL)
		}
	}
	return categories, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*ArticleCategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}

	category := &models.ArticleCategory{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug.Make(name),
		Description: input.Description,
	}
	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create article category")
	}
	s.invalidateCategoriesCache(ctx)
	return toCategoryDTO(created), nil
}

func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*ArticleCategoryDTO, error) {
	category, err := s.loadCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" && name != category.Name {
		category.Name = name
		category.Slug = slug.Make(name)
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update article category")
	}
	s.invalidateCategoriesCache(ctx)
	return toCategoryDTO(category), nil
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadCategory(ctx, id); err != nil {
		return err
	}
	count, err := s.categoryRepo.CountArticles(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category articles")
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot delete category: %d articles are assigned to it", count))
	}
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete article category")
	}
	s.invalidateCategoriesCache(ctx)
	return nil
}

func (s *service) loadArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	return article, nil
}

func (s *service) loadCategory(ctx context.Context, id uuid.UUID) (*models.ArticleCategory, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article category")
	}
	return category, nil
}

// uniqueSlug derives a slug from the title and appends -2, -3, ... until it
// does not collide with another article.
func (s *service) uniqueSlug(ctx context.Context, repo Repository, title string, exclude *uuid.UUID) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "article title produces an empty slug")
	}
	candidate := base
	for i := 2; i <= slugSuffixLimit; i++ {
		exists, err := repo.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique article slug")
}

func (s *service) categoriesCacheKey() string {
	return s.cache.CacheKey("articles", "categories")
}

func (s *service) invalidateCategoriesCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.categoriesCacheKey())
}
