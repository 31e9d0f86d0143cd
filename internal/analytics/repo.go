package analytics

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
)

// Repository handles analytics record persistence and the batch queries the
// backfill and repair procedures run.
type Repository interface {
	Create(ctx context.Context, record *models.AnalyticsRecord) error
	Update(ctx context.Context, record *models.AnalyticsRecord) error
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.AnalyticsRecord, error)
	ListAll(ctx context.Context) ([]models.AnalyticsRecord, error)
	SubscriptionIDsWithRecords(ctx context.Context) (map[uuid.UUID]bool, error)
	DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, record *models.AnalyticsRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) Update(ctx context.Context, record *models.AnalyticsRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.AnalyticsRecord, error) {
	var record models.AnalyticsRecord
	if err := r.db.WithContext(ctx).
		First(&record, "subscription_id = ?", subscriptionID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.AnalyticsRecord, error) {
	var records []models.AnalyticsRecord
	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// SubscriptionIDsWithRecords returns the set of subscription ids that already
// have an analytics row, for the backfill's missing-row scan.
func (r *repository) SubscriptionIDsWithRecords(ctx context.Context) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.AnalyticsRecord{}).
		Pluck("subscription_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *repository) DeleteBySubscription(ctx context.Context, subscriptionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.AnalyticsRecord{}, "subscription_id = ?", subscriptionID).Error
}
