package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	"github.com/finley-aquatics/fishworks-backend/internal/articles"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

// ListArticles serves published articles, newest first.
func ListArticles(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), articles.ListInput{
			CategorySlug: validators.SanitizeString(r.URL.Query().Get("category"), 150),
			Search:       validators.SanitizeString(r.URL.Query().Get("search"), 200),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// GetArticle serves one published article by slug.
func GetArticle(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		articleSlug := validators.SanitizeString(chi.URLParam(r, "articleSlug"), 300)
		if articleSlug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "article slug required"))
			return
		}

		article, err := svc.GetBySlug(r.Context(), articleSlug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, article)
	}
}

// ListArticleCategories serves the article category list, Redis-cached.
func ListArticleCategories(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		list, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// AdminListArticles lists articles of any status.
func AdminListArticles(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := articles.AdminListInput{
			CategorySlug: validators.SanitizeString(r.URL.Query().Get("category"), 150),
			Search:       validators.SanitizeString(r.URL.Query().Get("search"), 200),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseArticleStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		page, err := svc.AdminList(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// AdminGetArticle returns one article regardless of status.
func AdminGetArticle(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "articleID"), "articleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		article, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, article)
	}
}

type createArticleRequest struct {
	Title                string    `json:"title" validate:"required,max=300"`
	Content              string    `json:"content" validate:"required"`
	Excerpt              string    `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImageURL     string    `json:"featured_image_url" validate:"omitempty,max=500"`
	FeaturedImageAltText string    `json:"featured_image_alt_text" validate:"omitempty,max=255"`
	CategoryID           uuid.UUID `json:"category_id" validate:"required"`
	Status               string    `json:"status" validate:"omitempty"`
	MetaTitle            string    `json:"meta_title" validate:"omitempty,max=255"`
	MetaDescription      string    `json:"meta_description" validate:"omitempty,max=500"`
}

// AdminCreateArticle writes a new article attributed to the caller.
func AdminCreateArticle(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		authorID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := articles.CreateInput{
			Title:                validators.SanitizeString(payload.Title, 300),
			Content:              payload.Content,
			Excerpt:              validators.SanitizeString(payload.Excerpt, 500),
			FeaturedImageURL:     validators.SanitizeString(payload.FeaturedImageURL, 500),
			FeaturedImageAltText: validators.SanitizeString(payload.FeaturedImageAltText, 255),
			CategoryID:           payload.CategoryID,
			MetaTitle:            validators.SanitizeString(payload.MetaTitle, 255),
			MetaDescription:      validators.SanitizeString(payload.MetaDescription, 500),
		}
		if payload.Status != "" {
			status, parseErr := enums.ParseArticleStatus(payload.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = status
		}

		article, err := svc.Create(r.Context(), authorID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, article)
	}
}

type updateArticleRequest struct {
	Title                *string    `json:"title,omitempty" validate:"omitempty,max=300"`
	Content              *string    `json:"content,omitempty"`
	Excerpt              *string    `json:"excerpt,omitempty" validate:"omitempty,max=500"`
	FeaturedImageURL     *string    `json:"featured_image_url,omitempty" validate:"omitempty,max=500"`
	FeaturedImageAltText *string    `json:"featured_image_alt_text,omitempty" validate:"omitempty,max=255"`
	CategoryID           *uuid.UUID `json:"category_id,omitempty"`
	Status               *string    `json:"status,omitempty"`
	MetaTitle            *string    `json:"meta_title,omitempty" validate:"omitempty,max=255"`
	MetaDescription      *string    `json:"meta_description,omitempty" validate:"omitempty,max=500"`
}

// AdminUpdateArticle patches an article; title changes regenerate the slug.
func AdminUpdateArticle(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "articleID"), "articleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateArticleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := articles.UpdateInput{
			Title:                payload.Title,
			Content:              payload.Content,
			Excerpt:              payload.Excerpt,
			FeaturedImageURL:     payload.FeaturedImageURL,
			FeaturedImageAltText: payload.FeaturedImageAltText,
			CategoryID:           payload.CategoryID,
			MetaTitle:            payload.MetaTitle,
			MetaDescription:      payload.MetaDescription,
		}
		if payload.Status != nil {
			status, parseErr := enums.ParseArticleStatus(*payload.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		article, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, article)
	}
}

// AdminDeleteArticle removes an article.
func AdminDeleteArticle(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "articleID"), "articleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type articleCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// AdminCreateArticleCategory adds an article category.
func AdminCreateArticleCategory(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		var payload articleCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.CreateCategory(r.Context(), articles.CategoryInput{
			Name:        validators.SanitizeString(payload.Name, 150),
			Description: validators.SanitizeString(payload.Description, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// AdminUpdateArticleCategory renames an article category.
func AdminUpdateArticleCategory(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload articleCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.UpdateCategory(r.Context(), id, articles.CategoryInput{
			Name:        validators.SanitizeString(payload.Name, 150),
			Description: validators.SanitizeString(payload.Description, 500),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteArticleCategory removes an empty article category.
func AdminDeleteArticleCategory(svc articles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "article service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
