package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

type fakeRepo struct {
	records map[uuid.UUID]*models.AnalyticsRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: map[uuid.UUID]*models.AnalyticsRecord{}}
}

func (f *fakeRepo) Create(ctx context.Context, record *models.AnalyticsRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	f.records[record.SubscriptionID] = &copied
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, record *models.AnalyticsRecord) error {
	copied := *record
	f.records[record.SubscriptionID] = &copied
	return nil
}

func (f *fakeRepo) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.AnalyticsRecord, error) {
	record, ok := f.records[subscriptionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.AnalyticsRecord, error) {
	var out []models.AnalyticsRecord
	for _, record := range f.records {
		out = append(out, *record)
	}
	return out, nil
}

func (f *fakeRepo) SubscriptionIDsWithRecords(ctx context.Context) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	for id := range f.records {
		out[id] = true
	}
	return out, nil
}

func (f *fakeRepo) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	delete(f.records, subscriptionID)
	return nil
}

type fakeSubs struct {
	subs map[uuid.UUID]*models.Subscription
}

func (f fakeSubs) List(ctx context.Context, query subscriptions.ListQuery) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		out = append(out, *sub)
	}
	return out, nil
}

func (f fakeSubs) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sub
	return &copied, nil
}

func newSubscription(tier enums.SharingTier, duration enums.DurationCode) *models.Subscription {
	return &models.Subscription{
		ID:         uuid.New(),
		AuthCodeID: uuid.New(),
		ProductID:  uuid.New(),
		Tier:       tier,
		Duration:   duration,
		Status:     enums.SubscriptionStatusActive,
	}
}

func TestBackfill_CreatesMissingRows(t *testing.T) {
	repo := newFakeRepo()
	a := newSubscription(enums.SharingTierShared, enums.DurationOneMonth)
	b := newSubscription(enums.SharingTierPrivate, enums.DurationOneYear)
	subs := fakeSubs{subs: map[uuid.UUID]*models.Subscription{a.ID: a, b.ID: b}}

	svc, err := NewService(ServiceParams{Repo: repo, Subscriptions: subs})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.BackfillFromSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("BackfillFromSubscriptions: %v", err)
	}
	if result.ProcessedRecords != 2 || result.CreatedAnalyticsRecords != 2 {
		t.Fatalf("result = %+v, want 2 processed and 2 created", result)
	}
	if !repo.records[a.ID].Revenue.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("revenue = %s, want 5", repo.records[a.ID].Revenue)
	}
	if !repo.records[b.ID].Revenue.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("revenue = %s, want 120", repo.records[b.ID].Revenue)
	}

	// A second pass creates nothing new.
	again, err := svc.BackfillFromSubscriptions(context.Background())
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if again.ProcessedRecords != 2 || again.CreatedAnalyticsRecords != 0 {
		t.Fatalf("second pass = %+v, want 2 processed and 0 created", again)
	}
}

func TestBackfill_CustomPriceRevenue(t *testing.T) {
	repo := newFakeRepo()
	sub := newSubscription(enums.SharingTierShared, enums.DurationOneMonth)
	custom := decimal.NewFromFloat(2.50)
	sub.CustomPrice = &custom
	subs := fakeSubs{subs: map[uuid.UUID]*models.Subscription{sub.ID: sub}}

	svc, _ := NewService(ServiceParams{Repo: repo, Subscriptions: subs})
	if _, err := svc.BackfillFromSubscriptions(context.Background()); err != nil {
		t.Fatalf("BackfillFromSubscriptions: %v", err)
	}
	if !repo.records[sub.ID].Revenue.Equal(custom) {
		t.Fatalf("revenue = %s, want 2.5", repo.records[sub.ID].Revenue)
	}
}

func TestRepair_RemovesOrphansAndRefreshesStaleRows(t *testing.T) {
	repo := newFakeRepo()
	live := newSubscription(enums.SharingTierShared, enums.DurationOneMonth)
	subs := fakeSubs{subs: map[uuid.UUID]*models.Subscription{live.ID: live}}

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := NewService(ServiceParams{Repo: repo, Subscriptions: subs, Now: func() time.Time { return now }})

	// Stale row for the live subscription and an orphan for a deleted one.
	repo.records[live.ID] = &models.AnalyticsRecord{
		ID:             uuid.New(),
		SubscriptionID: live.ID,
		Tier:           live.Tier,
		Duration:       live.Duration,
		Status:         enums.SubscriptionStatusExpired,
		Revenue:        decimal.NewFromInt(99),
	}
	orphanID := uuid.New()
	repo.records[orphanID] = &models.AnalyticsRecord{
		ID:             uuid.New(),
		SubscriptionID: orphanID,
		Revenue:        decimal.NewFromInt(1),
	}

	message, err := svc.RepairConsistency(context.Background())
	if err != nil {
		t.Fatalf("RepairConsistency: %v", err)
	}
	if !strings.Contains(message, "removed 1 orphaned") || !strings.Contains(message, "refreshed 1 stale") {
		t.Fatalf("message = %q", message)
	}
	if _, ok := repo.records[orphanID]; ok {
		t.Fatal("orphaned record not removed")
	}
	repaired := repo.records[live.ID]
	if !repaired.Revenue.Equal(decimal.NewFromInt(5)) || repaired.Status != enums.SubscriptionStatusActive {
		t.Fatalf("repaired = %+v", repaired)
	}
	if !repaired.RecordedAt.Equal(now) {
		t.Fatalf("recorded_at = %s, want %s", repaired.RecordedAt, now)
	}
}
