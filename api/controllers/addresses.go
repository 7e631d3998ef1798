package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	"github.com/finley-aquatics/fishworks-backend/internal/address"
	"github.com/finley-aquatics/fishworks-backend/pkg/enums"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
)

// ListAddresses returns the caller's address book.
func ListAddresses(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetAddress returns one of the caller's addresses.
func GetAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.Get(r.Context(), uid, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}

type createAddressRequest struct {
	AddressType  string `json:"address_type" validate:"required"`
	FirstName    string `json:"first_name" validate:"required,max=150"`
	LastName     string `json:"last_name" validate:"required,max=150"`
	Company      string `json:"company" validate:"omitempty,max=150"`
	AddressLine1 string `json:"address_line1" validate:"required,max=255"`
	AddressLine2 string `json:"address_line2" validate:"omitempty,max=255"`
	City         string `json:"city" validate:"required,max=150"`
	State        string `json:"state" validate:"required,max=100"`
	PostalCode   string `json:"postal_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"omitempty,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=20"`
	IsDefault    bool   `json:"is_default"`
}

// CreateAddress saves an address; is_default sweeps other defaults of the type.
func CreateAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addressType, err := enums.ParseAddressType(payload.AddressType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address type"))
			return
		}

		addr, err := svc.Create(r.Context(), uid, address.CreateInput{
			AddressType:  addressType,
			FirstName:    validators.SanitizeString(payload.FirstName, 150),
			LastName:     validators.SanitizeString(payload.LastName, 150),
			Company:      validators.SanitizeString(payload.Company, 150),
			AddressLine1: validators.SanitizeString(payload.AddressLine1, 255),
			AddressLine2: validators.SanitizeString(payload.AddressLine2, 255),
			City:         validators.SanitizeString(payload.City, 150),
			State:        validators.SanitizeString(payload.State, 100),
			PostalCode:   validators.SanitizeString(payload.PostalCode, 20),
			Country:      validators.SanitizeString(payload.Country, 100),
			Phone:        validators.SanitizeString(payload.Phone, 20),
			IsDefault:    payload.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, addr)
	}
}

type updateAddressRequest struct {
	FirstName    *string `json:"first_name,omitempty" validate:"omitempty,max=150"`
	LastName     *string `json:"last_name,omitempty" validate:"omitempty,max=150"`
	Company      *string `json:"company,omitempty" validate:"omitempty,max=150"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=255"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=255"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=150"`
	State        *string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country      *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=20"`
	IsDefault    *bool   `json:"is_default,omitempty"`
}

// UpdateAddress patches one of the caller's addresses.
func UpdateAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateAddressRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.Update(r.Context(), uid, id, address.UpdateInput{
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Company:      payload.Company,
			AddressLine1: payload.AddressLine1,
			AddressLine2: payload.AddressLine2,
			City:         payload.City,
			State:        payload.State,
			PostalCode:   payload.PostalCode,
			Country:      payload.Country,
			Phone:        payload.Phone,
			IsDefault:    payload.IsDefault,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}

// DeleteAddress removes one of the caller's addresses.
func DeleteAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), uid, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetDefaultAddress marks an address as the default for its type.
func SetDefaultAddress(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathUUID(chi.URLParam(r, "addressID"), "addressID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addr, err := svc.SetDefault(r.Context(), uid, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, addr)
	}
}
