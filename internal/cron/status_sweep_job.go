package cron

import (
	"context"
	"fmt"

	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type statusSweeper interface {
	RecomputeStatuses(ctx context.Context) (subscriptions.SweepResult, error)
}

// StatusSweepJobParams configure the subscription status sweep job.
type StatusSweepJobParams struct {
	Logger        *logger.Logger
	Subscriptions statusSweeper
}

// NewStatusSweepJob builds the job that materializes derived subscription
// statuses on the daily schedule.
func NewStatusSweepJob(params StatusSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription service required")
	}
	return &statusSweepJob{
		logg: params.Logger,
		subs: params.Subscriptions,
	}, nil
}

type statusSweepJob struct {
	logg *logger.Logger
	subs statusSweeper
}

func (j *statusSweepJob) Name() string { return "subscription-status-sweep" }

func (j *statusSweepJob) Run(ctx context.Context) error {
	result, err := j.subs.RecomputeStatuses(ctx)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"active":        result.ActiveCount,
		"expiring_soon": result.ExpiringSoonCount,
		"expired":       result.ExpiredCount,
		"updated":       result.UpdatedCount,
	})
	if err != nil {
		j.logg.Error(logCtx, "status sweep finished with errors", err)
		return fmt.Errorf("status sweep: %w", err)
	}
	j.logg.Info(logCtx, "status sweep complete")
	return nil
}
