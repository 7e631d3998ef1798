package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
)

// Article is a blog post with SEO metadata. PublishedAt is set on the first
// transition to published and kept on subsequent saves.
type Article struct {
	ID                   uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title                string              `gorm:"column:title;not null"`
	Slug                 string              `gorm:"column:slug;not null;uniqueIndex"`
	Content              string              `gorm:"column:content;not null"`
	Excerpt              string              `gorm:"column:excerpt;not null;default:''"`
	FeaturedImageURL     string              `gorm:"column:featured_image_url;not null;default:''"`
	FeaturedImageAltText string              `gorm:"column:featured_image_alt_text;not null;default:''"`
	CategoryID           uuid.UUID           `gorm:"column:category_id;type:uuid;not null;index"`
	Category             *ArticleCategory    `gorm:"foreignKey:CategoryID"`
	AuthorID             uuid.UUID           `gorm:"column:author_id;type:uuid;not null"`
	Author               *User               `gorm:"foreignKey:AuthorID"`
	Status               enums.ArticleStatus `gorm:"column:status;type:text;not null;default:'draft';index"`
	MetaTitle            string              `gorm:"column:meta_title;not null;default:''"`
	MetaDescription      string              `gorm:"column:meta_description;not null;default:''"`
	PublishedAt          *time.Time          `gorm:"column:published_at;index"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
