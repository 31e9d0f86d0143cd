package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/pricing"
	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type subscriptionLister interface {
	List(ctx context.Context, query subscriptions.ListQuery) ([]models.Subscription, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
}

// BackfillResult reports one backfill pass.
type BackfillResult struct {
	ProcessedRecords        int `json:"processed_records"`
	CreatedAnalyticsRecords int `json:"created_analytics_records"`
}

// Service exposes the analytics batch procedures.
type Service interface {
	BackfillFromSubscriptions(ctx context.Context) (BackfillResult, error)
	RepairConsistency(ctx context.Context) (string, error)
}

// ServiceParams wires the analytics service dependencies.
type ServiceParams struct {
	Repo          Repository
	Subscriptions subscriptionLister
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	repo          Repository
	subscriptions subscriptionLister
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds an analytics batch service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("analytics repository required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription lister required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:          params.Repo,
		subscriptions: params.Subscriptions,
		logg:          params.Logger,
		now:           now,
	}, nil
}

// BackfillFromSubscriptions creates one analytics row for every subscription
// missing one, with revenue resolved from the subscription's effective price.
// Rerunning is safe: existing rows are counted as processed and skipped.
func (s *service) BackfillFromSubscriptions(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult

	subs, err := s.subscriptions.List(ctx, subscriptions.ListQuery{})
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	covered, err := s.repo.SubscriptionIDsWithRecords(ctx)
	if err != nil {
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list analytics coverage")
	}

	var errs error
	for i := range subs {
		sub := &subs[i]
		result.ProcessedRecords++
		if covered[sub.ID] {
			continue
		}
		revenue, err := pricing.Effective(sub.CustomPrice, sub.Tier, sub.Duration)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		record := &models.AnalyticsRecord{
			SubscriptionID: sub.ID,
			AuthCodeID:     sub.AuthCodeID,
			ProductID:      sub.ProductID,
			Tier:           sub.Tier,
			Duration:       sub.Duration,
			Status:         sub.Status,
			Revenue:        revenue,
			RecordedAt:     s.now().UTC(),
		}
		if err := s.repo.Create(ctx, record); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
			continue
		}
		result.CreatedAnalyticsRecords++
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"processed": result.ProcessedRecords,
			"created":   result.CreatedAnalyticsRecords,
		})
		s.logg.Info(logCtx, "analytics backfill complete")
	}
	return result, errs
}

// RepairConsistency deletes analytics rows whose subscription no longer exists
// and refreshes rows whose revenue or status drifted from the subscription.
func (s *service) RepairConsistency(ctx context.Context) (string, error) {
	records, err := s.repo.ListAll(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list analytics records")
	}

	var deleted, refreshed int
	var errs error
	for i := range records {
		record := &records[i]
		sub, err := s.subscriptions.FindByID(ctx, record.SubscriptionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := s.repo.DeleteBySubscription(ctx, record.SubscriptionID); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("record %s: %w", record.ID, err))
					continue
				}
				deleted++
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}

		revenue, err := pricing.Effective(sub.CustomPrice, sub.Tier, sub.Duration)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}
		if record.Revenue.Equal(revenue) && record.Status == sub.Status &&
			record.Tier == sub.Tier && record.Duration == sub.Duration {
			continue
		}
		record.Revenue = revenue
		record.Status = sub.Status
		record.Tier = sub.Tier
		record.Duration = sub.Duration
		record.RecordedAt = s.now().UTC()
		if err := s.repo.Update(ctx, record); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %s: %w", record.ID, err))
			continue
		}
		refreshed++
	}

	message := fmt.Sprintf("removed %d orphaned records, refreshed %d stale records", deleted, refreshed)
	if s.logg != nil {
		s.logg.Info(ctx, "analytics repair complete: "+message)
	}
	return message, errs
}
