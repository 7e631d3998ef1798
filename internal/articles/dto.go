package articles

import (
	"time"

	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/pkg/db/models"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// ArticleCategoryDTO is the public article category shape.
type ArticleCategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}

// ArticleSummary is the listing shape; Content is omitted.
type ArticleSummary struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Slug             string              `json:"slug"`
	Excerpt          string              `json:"excerpt,omitempty"`
	FeaturedImageURL string              `json:"featured_image_url,omitempty"`
	Category         *ArticleCategoryDTO `json:"category,omitempty"`
	PublishedAt      *time.Time          `json:"published_at,omitempty"`
}

// ArticleDetail is the full article shape.
type ArticleDetail struct {
	ID                   uuid.UUID           `json:"id"`
	Title                string              `json:"title"`
	Slug                 string              `json:"slug"`
	Content              string              `json:"content"`
	Excerpt              string              `json:"excerpt,omitempty"`
	FeaturedImageURL     string              `json:"featured_image_url,omitempty"`
	FeaturedImageAltText string              `json:"featured_image_alt_text,omitempty"`
	Category             *ArticleCategoryDTO `json:"category,omitempty"`
	AuthorID             uuid.UUID           `json:"author_id"`
	Status               enums.ArticleStatus `json:"status"`
	MetaTitle            string              `json:"meta_title,omitempty"`
	MetaDescription      string              `json:"meta_description,omitempty"`
	PublishedAt          *time.Time          `json:"published_at,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// ArticlePage is a cursor-paginated listing result.
type ArticlePage struct {
	Articles   []ArticleSummary `json:"articles"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func toCategoryDTO(category *models.ArticleCategory) *ArticleCategoryDTO {
	if category == nil {
		return nil
	}
	return &ArticleCategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
}

func toSummary(article *models.Article) ArticleSummary {
	return ArticleSummary{
		ID:               article.ID,
		Title:            article.Title,
		Slug:             article.Slug,
		Excerpt:          article.Excerpt,
		FeaturedImageURL: article.FeaturedImageURL,
		Category:         toCategoryDTO(article.Category),
		PublishedAt:      article.PublishedAt,
	}
}

func toDetail(article *models.Article) *ArticleDetail {
	return &ArticleDetail{
		ID:                   article.ID,
		Title:                article.Title,
		Slug:                 article.Slug,
		Content:              article.Content,
		Excerpt:              article.Excerpt,
		FeaturedImageURL:     article.FeaturedImageURL,
		FeaturedImageAltText: article.FeaturedImageAltText,
		Category:             toCategoryDTO(article.Category),
		AuthorID:             article.AuthorID,
		Status:               article.Status,
		MetaTitle:            article.MetaTitle,
		MetaDescription:      article.MetaDescription,
		PublishedAt:          article.PublishedAt,
		CreatedAt:            article.CreatedAt,
		UpdatedAt:            article.UpdatedAt,
	}
}
