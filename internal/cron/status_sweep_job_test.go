package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

type fakeSweeper struct {
	result subscriptions.SweepResult
	err    error
	called int
}

func (f *fakeSweeper) RecomputeStatuses(ctx context.Context) (subscriptions.SweepResult, error) {
	f.called++
	return f.result, f.err
}

func TestStatusSweepJobRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{result: subscriptions.SweepResult{ActiveCount: 3, UpdatedCount: 1}}
	job, err := NewStatusSweepJob(StatusSweepJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Subscriptions: sweeper,
	})
	if err != nil {
		t.Fatalf("NewStatusSweepJob: %v", err)
	}
	if job.Name() != "subscription-status-sweep" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.called != 1 {
		t.Fatalf("expected sweep called once, got %d", sweeper.called)
	}
}

func TestStatusSweepJobPropagatesError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("boom")}
	job, err := NewStatusSweepJob(StatusSweepJobParams{
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		Subscriptions: sweeper,
	})
	if err != nil {
		t.Fatalf("NewStatusSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
