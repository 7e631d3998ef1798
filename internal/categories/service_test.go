package categories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/config"
	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCategoryRepo struct {
	byID          map[uuid.UUID]*models.Category
	productCounts map[uuid.UUID]int64
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{
		byID:          map[uuid.UUID]*models.Category{},
		productCounts: map[uuid.UUID]int64{},
	}
}

func (s *stubCategoryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCategoryRepo) Create(ctx context.Context, category *models.Category) (*models.Category, error) {
	s.byID[category.ID] = category
	return category, nil
}

func (s *stubCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	s.byID[category.ID] = category
	return nil
}

func (s *stubCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

func (s *stubCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	if category, ok := s.byID[id]; ok {
		copied := *category
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	for _, category := range s.byID {
		if category.Slug == slug {
			copied := *category
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoryRepo) List(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	var out []models.Category
	for _, category := range s.byID {
		if !includeInactive && !category.IsActive {
			continue
		}
		out = append(out, *category)
	}
	return out, nil
}

func (s *stubCategoryRepo) CountByNameOrSlug(ctx context.Context, name, slug string, exclude *uuid.UUID) (int64, error) {
	var count int64
	for _, category := range s.byID {
		if exclude != nil && category.ID == *exclude {
			continue
		}
		if category.Name == name || category.Slug == slug {
			count++
		}
	}
	return count, nil
}

func (s *stubCategoryRepo) CountProducts(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	return s.productCounts[categoryID], nil
}

func (s *stubCategoryRepo) ProductCounts(ctx context.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return s.productCounts, nil
}

type stubCache struct {
	values  map[string]string
	deleted []string
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]string{}}
}

func (s *stubCache) Get(ctx context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	return nil
}

func (s *stubCache) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubCache) CacheKey(parts ...string) string {
	return "fw:cache:" + strings.Join(parts, ":")
}

func buildService(t *testing.T, repo *stubCategoryRepo, cache *stubCache) Service {
	t.Helper()
	var store cacheStore
	if cache != nil {
		store = cache
	}
	svc, err := NewService(repo, stubTxRunner{}, store, config.CatalogConfig{CategoryCacheTTL: time.Hour})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestCreateGeneratesSlug(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	dto, err := svc.Create(context.Background(), CreateInput{Name: "Tropical Community Fish"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "tropical-community-fish" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if !dto.IsActive {
		t.Fatal("new categories default to active")
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Cichlids"}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateInput{Name: "Cichlids"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsMissingParent(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	missing := uuid.New()
	_, err := svc.Create(context.Background(), CreateInput{Name: "Tetras", ParentCategoryID: &missing})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	id := uuid.New()
	repo.byID[id] = &models.Category{ID: id, Name: "Livebearers", Slug: "livebearers", IsActive: true}

	_, err := svc.Update(context.Background(), id, UpdateInput{ParentCategoryID: &id})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateDetectsCircularReference(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	parent := uuid.New()
	child := uuid.New()
	repo.byID[parent] = &models.Category{ID: parent, Name: "Catfish", Slug: "catfish", IsActive: true}
	repo.byID[child] = &models.Category{ID: child, Name: "Corydoras", Slug: "corydoras", ParentCategoryID: &parent, IsActive: true}

	// Reparenting the root under its own descendant must fail.
	_, err := svc.Update(context.Background(), parent, UpdateInput{ParentCategoryID: &child})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// A legitimate reparent still works.
	other := uuid.New()
	repo.byID[other] = &models.Category{ID: other, Name: "Bottom Dwellers", Slug: "bottom-dwellers", IsActive: true}
	if _, err := svc.Update(context.Background(), child, UpdateInput{ParentCategoryID: &other}); err != nil {
		t.Fatalf("legitimate reparent: %v", err)
	}
}

func TestDeleteBlockedByAssignedProducts(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	id := uuid.New()
	repo.byID[id] = &models.Category{ID: id, Name: "Gouramis", Slug: "gouramis", IsActive: true}
	repo.productCounts[id] = 3

	err := svc.Delete(context.Background(), id)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(typed.Message(), "3 products") {
		t.Fatalf("expected blocking count in message, got %q", typed.Message())
	}

	repo.productCounts[id] = 0
	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete after reassignment: %v", err)
	}
}

func TestListCachesTreeAndWritesInvalidate(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	cache := newStubCache()
	svc := buildService(t, repo, cache)

	root := uuid.New()
	repo.byID[root] = &models.Category{ID: root, Name: "Freshwater", Slug: "freshwater", IsActive: true}

	tree, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tree) != 1 || tree[0].Slug != "freshwater" {
		t.Fatalf("unexpected tree %+v", tree)
	}
	if _, ok := cache.values["fw:cache:categories:tree"]; !ok {
		t.Fatal("tree not cached")
	}

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Shrimp"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(cache.deleted) == 0 {
		t.Fatal("cache not invalidated on write")
	}
}

func TestListBuildsNestedTree(t *testing.T) {
	t.Parallel()

	repo := newStubCategoryRepo()
	svc := buildService(t, repo, nil)

	root := uuid.New()
	child := uuid.New()
	repo.byID[root] = &models.Category{ID: root, Name: "Cichlids", Slug: "cichlids", IsActive: true}
	repo.byID[child] = &models.Category{ID: child, Name: "African Cichlids", Slug: "african-cichlids", ParentCategoryID: &root, IsActive: true}

	tree, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("expected one root, got %d", len(tree))
	}
	if len(tree[0].Subcategories) != 1 || tree[0].Subcategories[0].Slug != "african-cichlids" {
		t.Fatalf("child not nested: %+v", tree[0])
	}
}
