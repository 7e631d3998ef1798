package categories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Service exposes category tree reads and admin writes.
type Service interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	GetBySlug(ctx context.Context, categorySlug string) (*CategoryDTO, error)
	AdminList(ctx context.Context) ([]AdminCategoryDTO, error)
	Create(ctx context.Context, input CreateInput) (*AdminCategoryDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AdminCategoryDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries the fields accepted when creating a category.
type CreateInput struct {
	Name             string
	Slug             string
	Description      string
	ImageURL         string
	ParentCategoryID *uuid.UUID
	DisplayOrder     int
	IsActive         *bool
}

// UpdateInput patches a category. Nil fields are left untouched.
type UpdateInput struct {
	Name             *string
	Description      *string
	ImageURL         *string
	ParentCategoryID *uuid.UUID
	ClearParent      bool
	DisplayOrder     *int
	IsActive         *bool
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
	repo     Repository
	tx       txRunner
	cache    cacheStore
	cacheTTL time.Duration
}

// NewService constructs the categories service. The cache store is optional;
// when nil the public list is served from the database on every call.
func NewService(repo Repository, tx txRunner, cache cacheStore, cfg config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("categories repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		cache:    cache,
		cacheTTL: cfg.CategoryCacheTTL,
	}, nil
}

func (s *service) List(ctx context.Context) ([]CategoryDTO, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.listCacheKey()); err == nil && cached != "" {
			var tree []CategoryDTO
			if err := json.Unmarshal([]byte(cached), &tree); err == nil {
				return tree, nil
			}
		}
	}

	flat, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	tree := buildTree(flat)

	if s.cache != nil {
		if payload, err := json.Marshal(tree); err == nil {
			_ = s.cache.Set(ctx, s.listCacheKey(), payload, s.cacheTTL)
		}
	}
	return tree, nil
}

func (s *service) GetBySlug(ctx context.Context, categorySlug string) (*CategoryDTO, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	if categorySlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is required")
	}

	category, err := s.repo.FindBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if !category.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}

	dto := toDTO(*category)
	return &dto, nil
}

func (s *service) AdminList(ctx context.Context) ([]AdminCategoryDTO, error) {
	flat, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	ids := make([]uuid.UUID, 0, len(flat))
	for _, category := range flat {
		ids = append(ids, category.ID)
	}
	counts, err := s.repo.ProductCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
	}

	out := make([]AdminCategoryDTO, 0, len(flat))
	for _, category := range flat {
		out = append(out, toAdminDTO(category, counts[category.ID]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AdminCategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
	}
	categorySlug := strings.TrimSpace(input.Slug)
	if categorySlug == "" {
		categorySlug = slug.Make(name)
	}
	if !slug.IsSlug(categorySlug) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category slug is invalid")
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	category := &models.Category{
		ID:               uuid.New(),
		Name:             name,
		Slug:             categorySlug,
		Description:      strings.TrimSpace(input.Description),
		ImageURL:         strings.TrimSpace(input.ImageURL),
		ParentCategoryID: input.ParentCategoryID,
		DisplayOrder:     input.DisplayOrder,
		IsActive:         isActive,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByNameOrSlug(ctx, name, categorySlug, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category uniqueness")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "a category with this name or slug already exists")
		}

		if input.ParentCategoryID != nil {
			if err := s.validateParent(ctx, repo, category.ID, *input.ParentCategoryID); err != nil {
				return err
			}
		}

		if _, err := repo.Create(ctx, category); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeValidation, "a category with this name or slug already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	dto := toAdminDTO(*category, 0)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AdminCategoryDTO, error) {
	if input.ParentCategoryID != nil && *input.ParentCategoryID == id {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a category cannot be its own parent")
	}

	var updated *models.Category
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		category, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "category name is required")
			}
			newSlug := slug.Make(name)
			count, err := repo.CountByNameOrSlug(ctx, name, newSlug, &id)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check category uniqueness")
			}
			if count > 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "a category with this name or slug already exists")
			}
			category.Name = name
			category.Slug = newSlug
		}
		if input.Description != nil {
			category.Description = strings.TrimSpace(*input.Description)
		}
		if input.ImageURL != nil {
			category.ImageURL = strings.TrimSpace(*input.ImageURL)
		}
		if input.DisplayOrder != nil {
			category.DisplayOrder = *input.DisplayOrder
		}
		if input.IsActive != nil {
			category.IsActive = *input.IsActive
		}
		if input.ClearParent {
			category.ParentCategoryID = nil
		} else if input.ParentCategoryID != nil {
			if err := s.validateParent(ctx, repo, id, *input.ParentCategoryID); err != nil {
				return err
			}
			parentID := *input.ParentCategoryID
			category.ParentCategoryID = &parentID
		}

		if err := repo.Update(ctx, category); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeValidation, "a category with this name or slug already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		count = 0
	}
	dto := toAdminDTO(*updated, count)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
		}

		count, err := repo.CountProducts(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count category products")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cannot delete category: %d products are assigned to it; reassign them first", count))
		}

		if err := repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateListCache(ctx)
	return nil
}

// validateParent walks the ancestor chain starting at parentID inside the
// current transaction. Reaching categoryID means the reassignment would close
// a cycle. The visited set bounds the walk on already-corrupt data.
func (s *service) validateParent(ctx context.Context, repo Repository, categoryID, parentID uuid.UUID) error {
	visited := map[uuid.UUID]bool{}
	current := parentID
	for {
		if current == categoryID {
			return pkgerrors.New(pkgerrors.CodeValidation, "circular category reference detected")
		}
		if visited[current] {
			return nil
		}
		visited[current] = true

		ancestor, err := repo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if current == parentID {
					return pkgerrors.New(pkgerrors.CodeValidation, "parent category does not exist")
				}
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "walk category ancestors")
		}
		if ancestor.ParentCategoryID == nil {
			return nil
		}
		current = *ancestor.ParentCategoryID
	}
}

func (s *service) listCacheKey() string {
	return s.cache.CacheKey("categories", "tree")
}

func (s *service) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.listCacheKey())
}
