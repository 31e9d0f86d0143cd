package authcodes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
)

// Repository handles auth code persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.AuthCode) error
	Update(ctx context.Context, code *models.AuthCode) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuthCode, error)
	FindByCode(ctx context.Context, code string) (*models.AuthCode, error)
	List(ctx context.Context) ([]models.AuthCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an auth code repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, code *models.AuthCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *repository) Update(ctx context.Context, code *models.AuthCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AuthCode, error) {
	var code models.AuthCode
	if err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindByCode(ctx context.Context, raw string) (*models.AuthCode, error) {
	var code models.AuthCode
	if err := r.db.WithContext(ctx).First(&code, "code = ?", raw).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) List(ctx context.Context) ([]models.AuthCode, error) {
	var codes []models.AuthCode
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

// Delete removes the auth code. Subscriptions cascade at the database level.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.AuthCode{}, "id = ?", id).Error
}
