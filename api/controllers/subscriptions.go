package controllers

import (
	"net/http"

	"github.com/dmarquezdev/subvault-backend/api/middleware"
	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/internal/currency"
	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// SubscriptionList returns the calling customer's subscriptions.
func SubscriptionList(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subs, err := svc.List(r.Context(), subscriptions.ListQuery{AuthCodeID: &authCodeID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSubscriptionListResponse(subs))
	}
}

// SubscriptionGet returns one owned subscription with opened credentials,
// refund history, and the price formatted in the customer's display currency.
func SubscriptionGet(svc subscriptions.Service, prefs *currency.PreferenceRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "subscription service unavailable"))
			return
		}

		authCodeID, err := actorAuthCodeID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetForOwner(r.Context(), authCodeID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		displayPrice := ""
		if prefs != nil {
			code, prefErr := prefs.Get(r.Context(), middleware.AuthCodeIDFromContext(r.Context()))
			if prefErr != nil {
				// Display formatting never blocks the read.
				if logg != nil {
					logg.Warn(r.Context(), "load currency preference: "+prefErr.Error())
				}
			} else {
				displayPrice = currency.ConvertAndFormat(detail.EffectivePrice, code, true)
			}
		}

		responses.WriteSuccess(w, newSubscriptionDetailResponse(detail, displayPrice))
	}
}
