package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/finley-aquatics/fishworks-backend/api/responses"
	"github.com/finley-aquatics/fishworks-backend/api/validators"
	"github.com/finley-aquatics/fishworks-backend/internal/checkout"
	pkgerrors "github.com/finley-aquatics/fishworks-backend/pkg/errors"
	"github.com/finley-aquatics/fishworks-backend/pkg/logger"
)

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type checkoutRequest struct {
	Items             []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddressID uuid.UUID             `json:"shipping_address_id" validate:"required"`
	BillingAddressID  *uuid.UUID            `json:"billing_address_id,omitempty"`
	OrderNotes        string                `json:"order_notes" validate:"omitempty,max=1000"`
	PaymentMethod     string                `json:"payment_method" validate:"omitempty,max=50"`
}

// Checkout places an order from the submitted items and addresses.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkout.ItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, checkout.ItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		order, err := svc.Execute(r.Context(), uid, checkout.Input{
			Items:             items,
			ShippingAddressID: payload.ShippingAddressID,
			BillingAddressID:  payload.BillingAddressID,
			OrderNotes:        validators.SanitizeString(payload.OrderNotes, 1000),
			PaymentMethod:     validators.SanitizeString(payload.PaymentMethod, 50),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
