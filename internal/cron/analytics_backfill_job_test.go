package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type fakeBackfiller struct {
	result analytics.BackfillResult
	err    error
	called int
}

func (f *fakeBackfiller) BackfillFromSubscriptions(ctx context.Context) (analytics.BackfillResult, error) {
	f.called++
	return f.result, f.err
}

func TestAnalyticsBackfillJobRunsBackfill(t *testing.T) {
	backfiller := &fakeBackfiller{result: analytics.BackfillResult{ProcessedRecords: 4, CreatedAnalyticsRecords: 2}}
	job, err := NewAnalyticsBackfillJob(AnalyticsBackfillJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Analytics: backfiller,
	})
	if err != nil {
		t.Fatalf("NewAnalyticsBackfillJob: %v", err)
	}
	if job.Name() != "analytics-backfill" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if backfiller.called != 1 {
		t.Fatalf("expected backfill called once, got %d", backfiller.called)
	}
}

func TestAnalyticsBackfillJobPropagatesError(t *testing.T) {
	backfiller := &fakeBackfiller{err: errors.New("boom")}
	job, err := NewAnalyticsBackfillJob(AnalyticsBackfillJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Analytics: backfiller,
	})
	if err != nil {
		t.Fatalf("NewAnalyticsBackfillJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
