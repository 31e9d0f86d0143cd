package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/api/validators"
	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// AdminSubscriptionCreate provisions a subscription for a customer.
func AdminSubscriptionCreate(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		var payload createSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSubscriptionResponse(sub))
	}
}

// AdminSubscriptionList filters subscriptions by owner, product, or status.
func AdminSubscriptionList(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		query, err := subscriptionListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subs, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSubscriptionListResponse(subs))
	}
}

func AdminSubscriptionGet(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSubscriptionDetailResponse(detail, ""))
	}
}

func AdminSubscriptionUpdate(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSubscriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

// AdminSubscriptionCancel moves a subscription to cancelled. Cancellation is
// terminal; the sweep never resurrects a cancelled row.
func AdminSubscriptionCancel(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Body is optional: senders holding a snapshot may guard against
		// concurrent edits.
		var expectedUpdated *time.Time
		if r.ContentLength != 0 {
			var payload cancelSubscriptionRequest
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			expectedUpdated = payload.ExpectedUpdated
		}

		sub, err := svc.Cancel(r.Context(), id, expectedUpdated)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

type cancelSubscriptionRequest struct {
	ExpectedUpdated *time.Time `json:"expected_updated"`
}

func AdminSubscriptionDelete(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
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

// AdminSubscriptionRecompute runs one status sweep on demand.
func AdminSubscriptionRecompute(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		result, err := svc.RecomputeStatuses(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createSubscriptionRequest struct {
	AuthCodeID  uuid.UUID        `json:"auth_code_id" validate:"required"`
	ProductID   uuid.UUID        `json:"product_id" validate:"required"`
	Tier        string           `json:"tier" validate:"required"`
	Duration    string           `json:"duration" validate:"required"`
	StartDate   *time.Time       `json:"start_date"`
	AutoRenew   bool             `json:"auto_renew"`
	CustomPrice *decimal.Decimal `json:"custom_price"`
	Username    string           `json:"username" validate:"required"`
	Password    string           `json:"password" validate:"required"`
	Notes       *string          `json:"notes"`
}

func (p createSubscriptionRequest) toInput() (subscriptions.CreateInput, error) {
	tier, err := enums.ParseSharingTier(p.Tier)
	if err != nil {
		return subscriptions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
	}
	duration, err := enums.ParseDurationCode(p.Duration)
	if err != nil {
		return subscriptions.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duration")
	}
	input := subscriptions.CreateInput{
		AuthCodeID:  p.AuthCodeID,
		ProductID:   p.ProductID,
		Tier:        tier,
		Duration:    duration,
		AutoRenew:   p.AutoRenew,
		CustomPrice: p.CustomPrice,
		Username:    p.Username,
		Password:    p.Password,
		Notes:       p.Notes,
	}
	if p.StartDate != nil {
		input.StartDate = *p.StartDate
	}
	return input, nil
}

type updateSubscriptionRequest struct {
	Tier             *string          `json:"tier"`
	Duration         *string          `json:"duration"`
	StartDate        *time.Time       `json:"start_date"`
	AutoRenew        *bool            `json:"auto_renew"`
	CustomPrice      *decimal.Decimal `json:"custom_price"`
	ClearCustomPrice bool             `json:"clear_custom_price"`
	Username         *string          `json:"username"`
	Password         *string          `json:"password"`
	Notes            *string          `json:"notes"`
	ExpectedUpdated  time.Time        `json:"expected_updated" validate:"required"`
}

func (p updateSubscriptionRequest) toInput() (subscriptions.UpdateInput, error) {
	input := subscriptions.UpdateInput{
		StartDate:        p.StartDate,
		AutoRenew:        p.AutoRenew,
		CustomPrice:      p.CustomPrice,
		ClearCustomPrice: p.ClearCustomPrice,
		Username:         p.Username,
		Password:         p.Password,
		Notes:            p.Notes,
		ExpectedUpdated:  p.ExpectedUpdated,
	}
	if p.Tier != nil {
		tier, err := enums.ParseSharingTier(*p.Tier)
		if err != nil {
			return subscriptions.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
		}
		input.Tier = &tier
	}
	if p.Duration != nil {
		duration, err := enums.ParseDurationCode(*p.Duration)
		if err != nil {
			return subscriptions.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid duration")
		}
		input.Duration = &duration
	}
	return input, nil
}

func subscriptionListQuery(r *http.Request) (subscriptions.ListQuery, error) {
	var query subscriptions.ListQuery
	if raw := r.URL.Query().Get("auth_code_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auth_code_id filter")
		}
		query.AuthCodeID = &id
	}
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product_id filter")
		}
		query.ProductID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseSubscriptionStatus(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	return query, nil
}
