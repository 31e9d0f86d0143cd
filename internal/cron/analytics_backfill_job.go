package cron

import (
	"context"
	"fmt"

	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type analyticsBackfiller interface {
	BackfillFromSubscriptions(ctx context.Context) (analytics.BackfillResult, error)
}

// AnalyticsBackfillJobParams configure the analytics backfill job.
type AnalyticsBackfillJobParams struct {
	Logger    *logger.Logger
	Analytics analyticsBackfiller
}

// NewAnalyticsBackfillJob builds the job that keeps the analytics table
// covering every subscription.
func NewAnalyticsBackfillJob(params AnalyticsBackfillJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Analytics == nil {
		return nil, fmt.Errorf("analytics service required")
	}
	return &analyticsBackfillJob{
		logg:      params.Logger,
		analytics: params.Analytics,
	}, nil
}

type analyticsBackfillJob struct {
	logg      *logger.Logger
	analytics analyticsBackfiller
}

func (j *analyticsBackfillJob) Name() string { return "analytics-backfill" }

func (j *analyticsBackfillJob) Run(ctx context.Context) error {
	result, err := j.analytics.BackfillFromSubscriptions(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"processed": result.ProcessedRecords,
		"created":   result.CreatedAnalyticsRecords,
	})
	if err != nil {
		j.logg.Error(logCtx, "analytics backfill finished with errors", err)
		return fmt.Errorf("analytics backfill: %w", err)
	}
	j.logg.Info(logCtx, "analytics backfill complete")
	return nil
}
