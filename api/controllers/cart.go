package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/api/validators"
	cartsvc "github.com/dmarquezdev/subvault-backend/internal/cart"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// CartGet returns the customer's cart with derived totals.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Get(r.Context(), authCodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartSummaryResponse(summary))
	}
}

// CartAddItem adds a line to the cart. Re-adding an existing product merges
// quantities into the existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Add(r.Context(), authCodeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartSummaryResponse(summary))
	}
}

// CartUpdateItem sets the quantity on one line. Quantity zero removes it.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.UpdateQuantity(r.Context(), authCodeID, productID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartSummaryResponse(summary))
	}
}

func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Remove(r.Context(), authCodeID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartSummaryResponse(summary))
	}
}

// CartCheckout converts every cart line into subscriptions and clears the
// cart. Protected by the idempotency middleware.
func CartCheckout(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), authCodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

type addCartItemRequest struct {
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	Tier        string           `json:"tier" validate:"required"`
	Duration    string           `json:"duration" validate:"required"`
	Quantity    int              `json:"quantity" validate:"required,min=1"`
	CustomPrice *decimal.Decimal `json:"custom_price"`
}

func (p addCartItemRequest) toInput() (cartsvc.AddInput, error) {
	tier, err := enums.ParseSharingTier(p.Tier)
	if err != nil {
		return cartsvc.AddInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
	}
	duration, err := enums.ParseDurationCode(p.Duration)
	if err != nil {
		return cartsvc.AddInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duration")
	}
	return cartsvc.AddInput{
		ProductID:   p.ProductID,
		Tier:        tier,
		Duration:    duration,
		Quantity:    p.Quantity,
		CustomPrice: p.CustomPrice,
	}, nil
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}
