package categories

import (
	"time"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CategoryDTO is the public category representation, nested into a tree.
type CategoryDTO struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	DisplayOrder  int           `json:"display_order"`
	Subcategories []CategoryDTO `json:"subcategories,omitempty"`
}

// AdminCategoryDTO is the flat admin representation with bookkeeping fields.
type AdminCategoryDTO struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Description      string     `json:"description,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	ParentCategoryID *uuid.UUID `json:"parent_category_id,omitempty"`
	DisplayOrder     int        `json:"display_order"`
	IsActive         bool       `json:"is_active"`
	ProductCount     int64      `json:"product_count"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:           category.ID,
		Name:         category.Name,
		Slug:         category.Slug,
		Description:  category.Description,
		ImageURL:     category.ImageURL,
		DisplayOrder: category.DisplayOrder,
	}
}

func toAdminDTO(category models.Category, productCount int64) AdminCategoryDTO {
	return AdminCategoryDTO{
		ID:               category.ID,
		Name:             category.Name,
		Slug:             category.Slug,
		Description:      category.Description,
		ImageURL:         category.ImageURL,
		ParentCategoryID: category.ParentCategoryID,
		DisplayOrder:     category.DisplayOrder,
		IsActive:         category.IsActive,
		ProductCount:     productCount,
		CreatedAt:        category.CreatedAt,
	}
}

// buildTree nests the flat category list under its root categories. The input
// is assumed ordered by display_order, name; children inherit that order.
func buildTree(flat []models.Category) []CategoryDTO {
	children := make(map[uuid.UUID][]models.Category)
	var roots []models.Category
	for _, category := range flat {
		if category.ParentCategoryID == nil {
			roots = append(roots, category)
			continue
		}
		parentID := *category.ParentCategoryID
		children[parentID] = append(children[parentID], category)
	}

	var attach func(category models.Category) CategoryDTO
	attach = func(category models.Category) CategoryDTO {
		dto := toDTO(category)
		for _, child := range children[category.ID] {
			dto.Subcategories = append(dto.Subcategories, attach(child))
		}
		return dto
	}

	tree := make([]CategoryDTO, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, attach(root))
	}
	return tree
}
