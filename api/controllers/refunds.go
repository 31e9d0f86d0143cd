package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/api/validators"
	"github.com/dmarquezdev/subvault-backend/internal/refunds"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// RefundRequestCreate files a refund claim against one of the caller's
// subscriptions.
func RefundRequestCreate(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(authCodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newRefundRequestResponse(record))
	}
}

// RefundRequestList returns the caller's refund requests.
func RefundRequestList(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListForOwner(r.Context(), authCodeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundRequestListResponse(records))
	}
}

// AdminRefundRequestList filters refund requests by owner, subscription, or
// status.
func AdminRefundRequestList(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		query, err := refundListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.List(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundRequestListResponse(records))
	}
}

func AdminRefundRequestGet(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundRequestResponse(record))
	}
}

// AdminRefundRequestTransition applies a review decision. The target status
// drives which fields are required; the service enforces the legal moves.
func AdminRefundRequestTransition(svc refunds.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "refund service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload transitionRefundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Transition(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newRefundRequestResponse(record))
	}
}

type createRefundRequest struct {
	SubscriptionID uuid.UUID `json:"subscription_id" validate:"required"`
	Reason         string    `json:"reason" validate:"required"`
	Description    string    `json:"description" validate:"required"`
}

func (p createRefundRequest) toInput(authCodeID uuid.UUID) (refunds.CreateInput, error) {
	reason, err := enums.ParseRefundReason(p.Reason)
	if err != nil {
		return refunds.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reason")
	}
	return refunds.CreateInput{
		AuthCodeID:     authCodeID,
		SubscriptionID: p.SubscriptionID,
		Reason:         reason,
		Description:    validators.SanitizeString(p.Description, 0),
	}, nil
}

type transitionRefundRequest struct {
	Status          string           `json:"status" validate:"required"`
	AdminNotes      *string          `json:"admin_notes"`
	RefundAmount    *decimal.Decimal `json:"refund_amount"`
	RefundMethod    *string          `json:"refund_method"`
	ExpectedUpdated time.Time        `json:"expected_updated" validate:"required"`
}

func (p transitionRefundRequest) toInput() (refunds.TransitionInput, error) {
	status, err := enums.ParseRefundStatus(p.Status)
	if err != nil {
		return refunds.TransitionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	input := refunds.TransitionInput{
		Status:          status,
		RefundAmount:    p.RefundAmount,
		ExpectedUpdated: p.ExpectedUpdated,
	}
	if p.AdminNotes != nil {
		notes := validators.SanitizeString(*p.AdminNotes, 0)
		input.AdminNotes = &notes
	}
	if p.RefundMethod != nil {
		method, err := enums.ParseRefundMethod(*p.RefundMethod)
		if err != nil {
			return refunds.TransitionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid refund method")
		}
		input.RefundMethod = &method
	}
	return input, nil
}

func refundListQuery(r *http.Request) (refunds.ListQuery, error) {
	var query refunds.ListQuery
	if raw := r.URL.Query().Get("auth_code_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid auth_code_id filter")
		}
		query.AuthCodeID = &id
	}
	if raw := r.URL.Query().Get("subscription_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subscription_id filter")
		}
		query.SubscriptionID = &id
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseRefundStatus(raw)
		if err != nil {
			return query, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 500)
	if err != nil {
		return query, err
	}
	query.Limit = limit
	return query, nil
}
