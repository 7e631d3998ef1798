package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	usersvc "github.com/finley-aquatics/fishworks-backend/internal/users"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
	"github.com/finley-aquatics/fishworks-backend/pkg/pagination"
)

// Me returns the authenticated user's account.
func Me(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type updateProfileRequest struct {
	FirstName            *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName             *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Phone                *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	ExperienceLevel      *string `json:"experience_level,omitempty"`
	PreferredTankSize    *int    `json:"preferred_tank_size,omitempty" validate:"omitempty,gt=0"`
	NewsletterSubscribed *bool   `json:"newsletter_subscribed,omitempty"`
	MarketingEmails      *bool   `json:"marketing_emails,omitempty"`
}

func (req updateProfileRequest) toInput() (usersvc.UpdateProfileInput, error) {
	input := usersvc.UpdateProfileInput{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Phone:                req.Phone,
		PreferredTankSize:    req.PreferredTankSize,
		NewsletterSubscribed: req.NewsletterSubscribed,
		MarketingEmails:      req.MarketingEmails,
	}
	if req.ExperienceLevel != nil {
		level, err := enums.ParseExperienceLevel(*req.ExperienceLevel)
		if err != nil {
			return usersvc.UpdateProfileInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid experience level")
		}
		input.ExperienceLevel = &level
	}
	return input, nil
}

// UpdateProfile patches the authenticated user's profile fields.
func UpdateProfile(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProfileRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), uid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// AdminListUsers lists accounts with optional search and role filters.
func AdminListUsers(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usersvc.AdminListInput{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 200),
			Role:   validators.SanitizeString(r.URL.Query().Get("role"), 50),
			Params: pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			},
		}

		page, err := svc.AdminList(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type adminCreateUserRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Username  string  `json:"username" validate:"omitempty,min=3,max=150"`
	Password  string  `json:"password" validate:"required,min=8"`
	FirstName string  `json:"first_name" validate:"omitempty,max=150"`
	LastName  string  `json:"last_name" validate:"omitempty,max=150"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

// AdminCreateUser provisions an account; the role is always user.
func AdminCreateUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var payload adminCreateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.AdminCreate(r.Context(), usersvc.RegisterInput{
			Email:     payload.Email,
			Username:  payload.Username,
			Password:  payload.Password,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// AdminGetUser returns one account by id.
func AdminGetUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.AdminGet(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

type adminUpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	IsActive  *bool   `json:"is_active,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// AdminUpdateUser patches account fields an admin may touch.
func AdminUpdateUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminUpdateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := usersvc.AdminUpdateInput{
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
			IsActive:  payload.IsActive,
		}
		if payload.Role != nil {
			role, parseErr := enums.ParseUserRole(*payload.Role)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid role"))
				return
			}
			input.Role = &role
		}

		user, err := svc.AdminUpdate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

// AdminDeleteUser removes an account. Self-deletion is rejected downstream.
func AdminDeleteUser(svc usersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), actor, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
