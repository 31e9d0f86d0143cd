package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

// ListQuery filters product listings.
type ListQuery struct {
	Category   *enums.ProductCategory
	ActiveOnly bool
}

// Repository reads the product catalog. The catalog is owned by external
// tooling, so there is no write surface here.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, query ListQuery) ([]models.Product, error)
	PlansByProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingPlan, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Preload("PricingPlans").
		First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Product, error) {
	db := r.db.WithContext(ctx)
	if query.Category != nil {
		db = db.Where("category = ?", *query.Category)
	}
	if query.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	var products []models.Product
	if err := db.Order("name ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) PlansByProduct(ctx context.Context, productID uuid.UUID) ([]models.PricingPlan, error) {
	var plans []models.PricingPlan
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("tier ASC").
		Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}
