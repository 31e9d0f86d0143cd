package refunds

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
// updated_at, meaning another reviewer got there first.
var ErrStaleWrite = errors.New("refund request was modified concurrently")

// ListQuery filters refund request listings. Limit of zero means no cap.
type ListQuery struct {
	AuthCodeID     *uuid.UUID
	SubscriptionID *uuid.UUID
	Status         *enums.RefundStatus
	Limit          int
}

// Repository handles refund request persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.RefundRequest) error
	Update(ctx context.Context, request *models.RefundRequest, expectedUpdatedAt time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
	List(ctx context.Context, query ListQuery) ([]models.RefundRequest, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.RefundRequest, error)
	HasOpenRequest(ctx context.Context, subscriptionID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a refund request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.RefundRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// Update persists review fields guarded by an updated_at precondition so two
// concurrent reviews cannot silently overwrite each other.
func (r *repository) Update(ctx context.Context, request *models.RefundRequest, expectedUpdatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Where("id = ? AND updated_at = ?", request.ID, expectedUpdatedAt).
		Select("status", "admin_notes", "refund_amount", "refund_method", "processed_at").
		Updates(request)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleWrite
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	var request models.RefundRequest
	if err := r.db.WithContext(ctx).
		Preload("Subscription").
		First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.RefundRequest, error) {
	db := r.db.WithContext(ctx)
	if query.AuthCodeID != nil {
		db = db.Where("auth_code_id = ?", *query.AuthCodeID)
	}
	if query.SubscriptionID != nil {
		db = db.Where("subscription_id = ?", *query.SubscriptionID)
	}
	if query.Status != nil {
		db = db.Where("status = ?", *query.Status)
	}
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	var requests []models.RefundRequest
	if err := db.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repository) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.RefundRequest, error) {
	var requests []models.RefundRequest
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// HasOpenRequest reports whether a non-terminal refund request already exists
// for the subscription.
func (r *repository) HasOpenRequest(ctx context.Context, subscriptionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RefundRequest{}).
		Where("subscription_id = ? AND status IN ?", subscriptionID, []enums.RefundStatus{
			enums.RefundStatusPending,
			enums.RefundStatusUnderReview,
			enums.RefundStatusApproved,
		}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
