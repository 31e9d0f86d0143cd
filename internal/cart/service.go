package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/pricing"
	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

const maxQuantityPerLine = 50

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type subscriptionCreator interface {
	Create(ctx context.Context, input subscriptions.CreateInput) (*models.Subscription, error)
}

// AddInput carries one line being added to the cart.
type AddInput struct {
	ProductID   uuid.UUID
	Tier        enums.SharingTier
	Duration    enums.DurationCode
	Quantity    int
	CustomPrice *decimal.Decimal
}

// Summary is the cart read model: its lines plus derived totals.
type Summary struct {
	Items     []models.CartItem
	LineCount int
	UnitCount int
	Total     decimal.Decimal
}

// CheckoutResult reports the subscriptions provisioned from a checkout.
type CheckoutResult struct {
	SubscriptionIDs []uuid.UUID
	Total           decimal.Decimal
}

// Service defines the cart surface for one auth code.
type Service interface {
	Add(ctx context.Context, authCodeID uuid.UUID, input AddInput) (*Summary, error)
	UpdateQuantity(ctx context.Context, authCodeID, productID uuid.UUID, quantity int) (*Summary, error)
	Remove(ctx context.Context, authCodeID, productID uuid.UUID) (*Summary, error)
	Get(ctx context.Context, authCodeID uuid.UUID) (*Summary, error)
	Checkout(ctx context.Context, authCodeID uuid.UUID) (*CheckoutResult, error)
}

// ServiceParams wires the cart service dependencies.
type ServiceParams struct {
	Repo          Repository
	Products      productLoader
	Subscriptions subscriptionCreator
	Logger        *logger.Logger
}

type service struct {
	repo          Repository
	products      productLoader
	subscriptions subscriptionCreator
	logg          *logger.Logger
}

// NewService builds a cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription creator required")
	}
	return &service{
		repo:          params.Repo,
		products:      params.Products,
		subscriptions: params.Subscriptions,
		logg:          params.Logger,
	}, nil
}

// Add puts a product line in the cart, snapshotting the effective unit price.
// Adding a product already in the cart adds to its quantity and refreshes the
// tier, duration, and price snapshot from the new input.
func (s *service) Add(ctx context.Context, authCodeID uuid.UUID, input AddInput) (*Summary, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sharing tier")
	}
	if !input.Duration.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown duration code")
	}
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 || quantity > maxQuantityPerLine {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 1 and %d", maxQuantityPerLine))
	}

	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	unitPrice, err := pricing.Effective(input.CustomPrice, input.Tier, input.Duration)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.GetOrCreate(ctx, authCodeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, record.ID, input.ProductID)
	switch {
	case err == nil:
		item.Quantity += quantity
		if item.Quantity > maxQuantityPerLine {
			item.Quantity = maxQuantityPerLine
		}
		item.Tier = input.Tier
		item.Duration = input.Duration
		item.CustomPrice = input.CustomPrice
		item.UnitPrice = unitPrice
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = &models.CartItem{
			CartID:      record.ID,
			ProductID:   input.ProductID,
			Tier:        input.Tier,
			Duration:    input.Duration,
			Quantity:    quantity,
			CustomPrice: input.CustomPrice,
			UnitPrice:   unitPrice,
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.Get(ctx, authCodeID)
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *service) UpdateQuantity(ctx context.Context, authCodeID, productID uuid.UUID, quantity int) (*Summary, error) {
	if quantity < 0 || quantity > maxQuantityPerLine {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity must be between 0 and %d", maxQuantityPerLine))
	}
	if quantity == 0 {
		return s.Remove(ctx, authCodeID, productID)
	}
	record, err := s.findCart(ctx, authCodeID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, record.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	item.Quantity = quantity
	if err := s.repo.SaveItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart item")
	}
	return s.Get(ctx, authCodeID)
}

// Remove drops a product line. Removing an absent line is a no-op, even when
// the auth code never touched its cart.
func (s *service) Remove(ctx context.Context, authCodeID, productID uuid.UUID) (*Summary, error) {
	record, err := s.repo.FindByAuthCode(ctx, authCodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Summary{Total: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteItem(ctx, record.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}
	return s.Get(ctx, authCodeID)
}

// Get returns the cart with its derived totals. An auth code that never
// touched its cart gets an empty summary rather than an error.
func (s *service) Get(ctx context.Context, authCodeID uuid.UUID) (*Summary, error) {
	record, err := s.repo.FindByAuthCode(ctx, authCodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Summary{Total: decimal.Zero}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return summarize(record), nil
}

// Checkout converts every cart line into subscriptions, one per unit, then
// clears the cart. Provisioned subscriptions start unassigned: credentials are
// attached later by an admin.
func (s *service) Checkout(ctx context.Context, authCodeID uuid.UUID) (*CheckoutResult, error) {
	record, err := s.findCart(ctx, authCodeID)
	if err != nil {
		return nil, err
	}
	summary := summarize(record)
	if summary.UnitCount == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	result := &CheckoutResult{Total: summary.Total}
	for _, item := range summary.Items {
		for unit := 0; unit < item.Quantity; unit++ {
			sub, err := s.subscriptions.Create(ctx, subscriptions.CreateInput{
				AuthCodeID:  authCodeID,
				ProductID:   item.ProductID,
				Tier:        item.Tier,
				Duration:    item.Duration,
				CustomPrice: item.CustomPrice,
			})
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
					fmt.Sprintf("provision subscription for product %s", item.ProductID))
			}
			result.SubscriptionIDs = append(result.SubscriptionIDs, sub.ID)
		}
	}

	if err := s.repo.ClearItems(ctx, record.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"auth_code_id":  authCodeID.String(),
			"subscriptions": len(result.SubscriptionIDs),
			"total":         result.Total.String(),
		})
		s.logg.Info(logCtx, "cart checked out")
	}
	return result, nil
}

func (s *service) findCart(ctx context.Context, authCodeID uuid.UUID) (*models.CartRecord, error) {
	record, err := s.repo.FindByAuthCode(ctx, authCodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return record, nil
}

func summarize(record *models.CartRecord) *Summary {
	summary := &Summary{
		Items: record.Items,
		Total: decimal.Zero,
	}
	for _, item := range record.Items {
		summary.LineCount++
		summary.UnitCount += item.Quantity
		summary.Total = summary.Total.Add(item.LineTotal())
	}
	return summary
}
