package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	"github.com/finley-aquatics/fishworks-backend/internal/categories"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
)

// ListCategories serves the active category tree.
func ListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		tree, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tree)
	}
}

// GetCategory returns one active category by slug.
func GetCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		categorySlug := validators.SanitizeString(chi.URLParam(r, "categorySlug"), 150)
		if categorySlug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category slug required"))
			return
		}

		category, err := svc.GetBySlug(r.Context(), categorySlug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

// AdminListCategories lists all categories including inactive ones.
func AdminListCategories(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		list, err := svc.AdminList(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type createCategoryRequest struct {
	Name             string     `json:"name" validate:"required,max=150"`
	Slug             string     `json:"slug" validate:"omitempty,max=150"`
	Description      string     `json:"description" validate:"omitempty"`
	ImageURL         string     `json:"image_url" validate:"omitempty,max=500"`
	ParentCategoryID *uuid.UUID `json:"parent_category_id,omitempty"`
	DisplayOrder     int        `json:"display_order" validate:"gte=0"`
	IsActive         *bool      `json:"is_active,omitempty"`
}

// AdminCreateCategory adds a category, optionally under a parent.
func AdminCreateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		var payload createCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Create(r.Context(), categories.CreateInput{
			Name:             validators.SanitizeString(payload.Name, 150),
			Slug:             validators.SanitizeString(payload.Slug, 150),
			Description:      payload.Description,
			ImageURL:         validators.SanitizeString(payload.ImageURL, 500),
			ParentCategoryID: payload.ParentCategoryID,
			DisplayOrder:     payload.DisplayOrder,
			IsActive:         payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

type updateCategoryRequest struct {
	Name             *string    `json:"name,omitempty" validate:"omitempty,max=150"`
	Description      *string    `json:"description,omitempty"`
	ImageURL         *string    `json:"image_url,omitempty" validate:"omitempty,max=500"`
	ParentCategoryID *uuid.UUID `json:"parent_category_id,omitempty"`
	ClearParent      bool       `json:"clear_parent,omitempty"`
	DisplayOrder     *int       `json:"display_order,omitempty" validate:"omitempty,gte=0"`
	IsActive         *bool      `json:"is_active,omitempty"`
}

// AdminUpdateCategory patches a category. Reparenting runs the cycle check.
func AdminUpdateCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCategoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := svc.Update(r.Context(), id, categories.UpdateInput{
			Name:             payload.Name,
			Description:      payload.Description,
			ImageURL:         payload.ImageURL,
			ParentCategoryID: payload.ParentCategoryID,
			ClearParent:      payload.ClearParent,
			DisplayOrder:     payload.DisplayOrder,
			IsActive:         payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

// AdminDeleteCategory removes a category.
func AdminDeleteCategory(svc categories.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
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
