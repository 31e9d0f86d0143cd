package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// ErrStaleWrite signals that an update matched the row id but not the expected
// updated_at, meaning another writer got there first.
var ErrStaleWrite = errors.New("subscription was modified concurrently")

// ListQuery filters subscription listings.
type ListQuery struct {
	AuthCodeID *uuid.UUID
	ProductID  *uuid.UUID
	Status     *enums.SubscriptionStatus
}

// Repository handles subscription persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, sub *models.Subscription) error
	Update(ctx context.Context, sub *models.Subscription, expectedUpdatedAt time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error
	UpdateStatusGuarded(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, expectedUpdatedAt time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	List(ctx context.Context, query ListQuery) ([]models.Subscription, error)
	ListSweepBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a subscription repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// Update persists mutable fields guarded by an updated_at precondition so two
// concurrent admin edits cannot silently overwrite each other.
func (r *repository) Update(ctx context.Context, sub *models.Subscription, expectedUpdatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND updated_at = ?", sub.ID, expectedUpdatedAt).
		Select("tier", "duration", "start_date", "expiry_date", "status", "auto_renew",
			"custom_price", "currency", "username_enc", "password_enc", "notes").
		Updates(sub)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateStatusGuarded applies a status change only when updated_at still
// matches the caller's snapshot.
func (r *repository) UpdateStatusGuarded(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus, expectedUpdatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND updated_at = ?", id, expectedUpdatedAt).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Preload("AuthCode").
		Preload("Product").
		First(&sub, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Subscription, error) {
	db := r.db.WithContext(ctx).Preload("Product")
	if query.AuthCodeID != nil {
		db = db.Where("auth_code_id = ?", *query.AuthCodeID)
	}
	if query.ProductID != nil {
		db = db.Where("product_id = ?", *query.ProductID)
	}
	if query.Status != nil {
		db = db.Where("status = ?", *query.Status)
	}
	var subs []models.Subscription
	if err := db.Order("created_at DESC").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// ListSweepBatch pages through every non-cancelled subscription by primary key.
// Cancelled rows are excluded at the query level so the sweep can never touch them.
func (r *repository) ListSweepBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]models.Subscription, error) {
	db := r.db.WithContext(ctx).
		Where("status <> ?", enums.SubscriptionStatusCancelled).
		Order("id ASC").
		Limit(limit)
	if afterID != uuid.Nil {
		db = db.Where("id > ?", afterID)
	}
	var subs []models.Subscription
	if err := db.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Subscription{}, "id = ?", id).Error
}
