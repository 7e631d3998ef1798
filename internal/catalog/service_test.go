package catalog

import (
	"context"
	"sort"
	"testing"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubCatalogRepo struct {
	byID       map[uuid.UUID]*models.FishProduct
	categories map[uuid.UUID]bool
	deleted    []uuid.UUID
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		byID:       map[uuid.UUID]*models.FishProduct{},
		categories: map[uuid.UUID]bool{},
	}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.FishProduct) (*models.FishProduct, error) {
	s.byID[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, product *models.FishProduct) error {
	s.byID[product.ID] = product
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.FishProduct, error) {
	if product, ok := s.byID[id]; ok {
		copied := *product
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) List(ctx context.Context, query ListQuery) ([]models.FishProduct, error) {
	var out []models.FishProduct
	for _, product := range s.byID {
		if !query.IncludeUnavailable && !product.IsAvailable {
			continue
		}
		out = append(out, *product)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SpeciesName < out[j].SpeciesName
	})
	if query.Cursor != nil {
		for i, product := range out {
			if product.SpeciesName > query.Cursor.Key {
				out = out[i:]
				break
			}
		}
	}
	limit := pagination.LimitWithBuffer(query.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubCatalogRepo) ReplaceCategories(ctx context.Context, product *models.FishProduct, categoryIDs []uuid.UUID) error {
	stored := s.byID[product.ID]
	stored.Categories = nil
	for _, id := range categoryIDs {
		stored.Categories = append(stored.Categories, models.Category{ID: id})
	}
	return nil
}

func (s *stubCatalogRepo) CountCategories(ctx context.Context, categoryIDs []uuid.UUID) (int64, error) {
	var count int64
	for _, id := range categoryIDs {
		if s.categories[id] {
			count++
		}
	}
	return count, nil
}

func (s *stubCatalogRepo) DecrementStockGuarded(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	product, ok := s.byID[productID]
	if !ok || product.StockQuantity < quantity {
		return false, nil
	}
	product.StockQuantity -= quantity
	return true, nil
}

func (s *stubCatalogRepo) RestoreStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if product, ok := s.byID[productID]; ok {
		product.StockQuantity += quantity
	}
	return nil
}

func buildCatalogService(t *testing.T, repo *stubCatalogRepo) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func addProduct(repo *stubCatalogRepo, species string, available bool) *models.FishProduct {
	product := &models.FishProduct{
		ID:                 uuid.New(),
		SpeciesName:        species,
		Price:              decimal.RequireFromString("5.00"),
		StockQuantity:      10,
		IsAvailable:        available,
		DifficultyLevel:    enums.DifficultyLevelBeginner,
		MinTankSizeGallons: 10,
	}
	repo.byID[product.ID] = product
	return product
}

func TestListSlicesPageAndEncodesCursor(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	addProduct(repo, "Angelfish", true)
	addProduct(repo, "Betta", true)
	addProduct(repo, "Corydoras", true)

	page, err := svc.List(context.Background(), ListParams{Params: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	cursor, err := pagination.ParseKeyCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if cursor.Key != "Betta" {
		t.Fatalf("cursor should point at last row, got %q", cursor.Key)
	}

	page, err = svc.List(context.Background(), ListParams{Params: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].SpeciesName != "Corydoras" {
		t.Fatalf("unexpected second page %+v", page.Products)
	}
	if page.NextCursor != "" {
		t.Fatal("final page must not carry a cursor")
	}
}

func TestGetHidesUnavailableProduct(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	hidden := addProduct(repo, "Ghost Danio", false)

	_, err := svc.Get(context.Background(), hidden.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// Admin read still sees it.
	detail, err := svc.AdminGet(context.Background(), hidden.ID)
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if detail.IsAvailable {
		t.Fatal("availability flag lost")
	}
}

func TestAdminCreateValidation(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{
			name:  "missing species",
			input: CreateProductInput{DifficultyLevel: enums.DifficultyLevelBeginner, MinTankSizeGallons: 10},
		},
		{
			name: "negative price",
			input: CreateProductInput{
				SpeciesName:        "Betta",
				Price:              decimal.RequireFromString("-1"),
				DifficultyLevel:    enums.DifficultyLevelBeginner,
				MinTankSizeGallons: 5,
			},
		},
		{
			name: "invalid difficulty",
			input: CreateProductInput{
				SpeciesName:        "Betta",
				DifficultyLevel:    enums.DifficultyLevel("expert"),
				MinTankSizeGallons: 5,
			},
		},
		{
			name: "inverted ph range",
			input: CreateProductInput{
				SpeciesName:        "Betta",
				DifficultyLevel:    enums.DifficultyLevelBeginner,
				MinTankSizeGallons: 5,
				PHRangeMin:         decimalPtr("8.0"),
				PHRangeMax:         decimalPtr("6.0"),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AdminCreate(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestAdminCreateRejectsUnknownCategories(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	known := uuid.New()
	repo.categories[known] = true

	_, err := svc.AdminCreate(context.Background(), CreateProductInput{
		SpeciesName:        "Betta",
		Price:              decimal.RequireFromString("9.99"),
		DifficultyLevel:    enums.DifficultyLevelBeginner,
		MinTankSizeGallons: 5,
		CategoryIDs:        []uuid.UUID{known, uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdminCreateAssignsCategories(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	category := uuid.New()
	repo.categories[category] = true

	detail, err := svc.AdminCreate(context.Background(), CreateProductInput{
		SpeciesName:        "Pearl Gourami",
		Price:              decimal.RequireFromString("11.50"),
		StockQuantity:      6,
		DifficultyLevel:    enums.DifficultyLevelIntermediate,
		MinTankSizeGallons: 20,
		CategoryIDs:        []uuid.UUID{category},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(detail.Categories) != 1 || detail.Categories[0].ID != category {
		t.Fatalf("categories not assigned: %+v", detail.Categories)
	}
	if !detail.IsAvailable {
		t.Fatal("products default to available")
	}
}

func TestAdminUpdatePatchesFields(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	product := addProduct(repo, "Betta", true)

	newPrice := decimal.RequireFromString("12.00")
	stock := 3
	detail, err := svc.AdminUpdate(context.Background(), product.ID, UpdateProductInput{
		Price:         &newPrice,
		StockQuantity: &stock,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !detail.Price.Equal(newPrice) {
		t.Fatalf("price not updated: %s", detail.Price)
	}
	if detail.StockQuantity != 3 {
		t.Fatalf("stock not updated: %d", detail.StockQuantity)
	}
}

func TestAdminUpdateUnknownProduct(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := buildCatalogService(t, repo)

	_, err := svc.AdminUpdate(context.Background(), uuid.New(), UpdateProductInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func decimalPtr(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}
