package controllers

import (
	"net/http"

	"github.com/dmarquezdev/subvault-backend/api/responses"
	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// AnalyticsBackfill materializes analytics rows for subscriptions that have
// none yet.
func AnalyticsBackfill(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		result, err := svc.BackfillFromSubscriptions(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AnalyticsRepair reconciles analytics rows against their subscriptions and
// reports what was touched.
func AnalyticsRepair(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		report, err := svc.RepairConsistency(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"report": report})
	}
}
