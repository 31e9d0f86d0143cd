package subscriptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/pricing"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
	"github.com/dmarquezdev/subvault-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type authCodeLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.AuthCode, error)
}

type credentialSealer interface {
	Seal(plaintext string) ([]byte, error)
	Open(sealed []byte) (string, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type refundLister interface {
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.RefundRequest, error)
}

// CreateInput carries the fields needed to provision a subscription.
type CreateInput struct {
	AuthCodeID  uuid.UUID
	ProductID   uuid.UUID
	Tier        enums.SharingTier
	Duration    enums.DurationCode
	StartDate   time.Time
	AutoRenew   bool
	CustomPrice *decimal.Decimal
	Username    string
	Password    string
	Notes       *string
}

// UpdateInput carries the admin-editable fields. Nil pointers leave the stored
// value untouched; ClearCustomPrice removes an existing price override.
type UpdateInput struct {
	Tier             *enums.SharingTier
	Duration         *enums.DurationCode
	StartDate        *time.Time
	AutoRenew        *bool
	CustomPrice      *decimal.Decimal
	ClearCustomPrice bool
	Username         *string
	Password         *string
	Notes            *string
	ExpectedUpdated  time.Time
}

// Detail is the read model for one subscription: the row plus its opened
// credentials, effective price, and refund history.
type Detail struct {
	Subscription   models.Subscription
	Username       string
	Password       string
	EffectivePrice decimal.Decimal
	RefundRequests []models.RefundRequest
}

// SweepResult reports the outcome of one status recomputation pass.
type SweepResult struct {
	ActiveCount       int `json:"active_count"`
	ExpiringSoonCount int `json:"expiring_soon_count"`
	ExpiredCount      int `json:"expired_count"`
	UpdatedCount      int `json:"updated_count"`
}

// Service defines the subscription lifecycle surface.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Subscription, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Subscription, error)
	Cancel(ctx context.Context, id uuid.UUID, expectedUpdated *time.Time) (*models.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Detail, error)
	GetForOwner(ctx context.Context, authCodeID, id uuid.UUID) (*Detail, error)
	List(ctx context.Context, query ListQuery) ([]models.Subscription, error)
	RecomputeStatuses(ctx context.Context) (SweepResult, error)
}

// ServiceParams wires the subscription service dependencies.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Products  productLoader
	AuthCodes authCodeLoader
	Sealer    credentialSealer
	Events    eventEmitter
	Refunds   refundLister
	Logger    *logger.Logger
	Now       func() time.Time
	SweepSize int
}

type service struct {
	repo      Repository
	tx        txRunner
	products  productLoader
	authCodes authCodeLoader
	sealer    credentialSealer
	events    eventEmitter
	refunds   refundLister
	logg      *logger.Logger
	now       func() time.Time
	sweepSize int
}

const defaultSweepBatch = 500

// NewService builds a subscription service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if params.AuthCodes == nil {
		return nil, fmt.Errorf("auth code loader required")
	}
	if params.Sealer == nil {
		return nil, fmt.Errorf("credential sealer required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	sweepSize := params.SweepSize
	if sweepSize <= 0 {
		sweepSize = defaultSweepBatch
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		products:  params.Products,
		authCodes: params.AuthCodes,
		sealer:    params.Sealer,
		events:    params.Events,
		refunds:   params.Refunds,
		logg:      params.Logger,
		now:       now,
		sweepSize: sweepSize,
	}, nil
}

// Create validates the payload, derives the expiry from the duration code,
// seals credentials, and persists the subscription with its creation event.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Subscription, error) {
	if input.AuthCodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth code id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sharing tier")
	}
	if !input.Duration.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown duration code")
	}
	if input.CustomPrice != nil && input.CustomPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom price must be non-negative")
	}

	owner, err := s.authCodes.FindByID(ctx, input.AuthCodeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auth code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auth code")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	start := input.StartDate
	if start.IsZero() {
		start = s.now().UTC()
	}
	expiry, err := ExpiryFromStart(start, input.Duration)
	if err != nil {
		return nil, err
	}

	usernameEnc, err := s.sealer.Seal(input.Username)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal username")
	}
	passwordEnc, err := s.sealer.Seal(input.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal password")
	}

	sub := &models.Subscription{
		AuthCodeID:  owner.ID,
		ProductID:   input.ProductID,
		Tier:        input.Tier,
		Duration:    input.Duration,
		StartDate:   start,
		ExpiryDate:  expiry,
		Status:      DeriveStatus(s.now().UTC(), expiry),
		AutoRenew:   input.AutoRenew,
		CustomPrice: input.CustomPrice,
		Currency:    enums.BaseCurrency,
		UsernameEnc: usernameEnc,
		PasswordEnc: passwordEnc,
		Notes:       input.Notes,
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, sub); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventSubscriptionCreated, sub.ID, map[string]any{
			"auth_code_id": sub.AuthCodeID,
			"product_id":   sub.ProductID,
			"expiry_date":  sub.ExpiryDate,
		})
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist subscription")
	}
	return sub, nil
}

// Update applies admin edits. Changing the start date or duration recomputes
// the expiry so the stored expiry always matches the stored duration.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Subscription, error) {
	sub, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Tier != nil {
		if !input.Tier.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sharing tier")
		}
		sub.Tier = *input.Tier
	}
	recomputeExpiry := false
	if input.Duration != nil {
		if !input.Duration.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown duration code")
		}
		sub.Duration = *input.Duration
		recomputeExpiry = true
	}
	if input.StartDate != nil {
		sub.StartDate = *input.StartDate
		recomputeExpiry = true
	}
	if recomputeExpiry {
		expiry, err := ExpiryFromStart(sub.StartDate, sub.Duration)
		if err != nil {
			return nil, err
		}
		sub.ExpiryDate = expiry
		if sub.Status != enums.SubscriptionStatusCancelled {
			sub.Status = DeriveStatus(s.now().UTC(), expiry)
		}
	}
	if input.AutoRenew != nil {
		sub.AutoRenew = *input.AutoRenew
	}
	if input.ClearCustomPrice {
		sub.CustomPrice = nil
	} else if input.CustomPrice != nil {
		if input.CustomPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "custom price must be non-negative")
		}
		sub.CustomPrice = input.CustomPrice
	}
	if input.Username != nil {
		enc, err := s.sealer.Seal(*input.Username)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal username")
		}
		sub.UsernameEnc = enc
	}
	if input.Password != nil {
		enc, err := s.sealer.Seal(*input.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seal password")
		}
		sub.PasswordEnc = enc
	}
	if input.Notes != nil {
		sub.Notes = input.Notes
	}

	expected := input.ExpectedUpdated
	if expected.IsZero() {
		expected = sub.UpdatedAt
	}
	if err := s.repo.Update(ctx, sub, expected); err != nil {
		if errors.Is(err, ErrStaleWrite) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	return sub, nil
}

// Cancel marks the subscription cancelled. Cancelling an already cancelled
// subscription is a no-op. The status sweep never overrides a cancellation.
// A caller holding a stale snapshot may pass expectedUpdated to fail fast
// instead of cancelling over a concurrent change.
func (s *service) Cancel(ctx context.Context, id uuid.UUID, expectedUpdated *time.Time) (*models.Subscription, error) {
	sub, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status == enums.SubscriptionStatusCancelled {
		return sub, nil
	}
	expected := sub.UpdatedAt
	if expectedUpdated != nil && !expectedUpdated.IsZero() {
		expected = *expectedUpdated
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatusGuarded(ctx, id, enums.SubscriptionStatusCancelled, expected); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventSubscriptionCancelled, id, map[string]any{
			"auth_code_id": sub.AuthCodeID,
		})
	}); err != nil {
		if errors.Is(err, ErrStaleWrite) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel subscription")
	}
	sub.Status = enums.SubscriptionStatusCancelled
	return sub, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findExisting(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete subscription")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	sub, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, sub)
}

// GetForOwner scopes the read to the owning auth code so one customer can
// never read another customer's subscription or credentials. A mismatch
// reports not found rather than forbidden to avoid leaking existence.
func (s *service) GetForOwner(ctx context.Context, authCodeID, id uuid.UUID) (*Detail, error) {
	sub, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.AuthCodeID != authCodeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	return s.buildDetail(ctx, sub)
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.Subscription, error) {
	subs, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions")
	}
	return subs, nil
}

// RecomputeStatuses sweeps every non-cancelled subscription and materializes
// the status derived from a single clock reading. The pass is idempotent: a
// second run against the same clock changes nothing. Row-level failures are
// collected and do not stop the sweep.
func (s *service) RecomputeStatuses(ctx context.Context) (SweepResult, error) {
	now := s.now().UTC()
	var result SweepResult
	var errs error
	after := uuid.Nil

	for {
		batch, err := s.repo.ListSweepBatch(ctx, after, s.sweepSize)
		if err != nil {
			return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list subscriptions for sweep")
		}
		if len(batch) == 0 {
			break
		}
		for i := range batch {
			sub := &batch[i]
			derived := DeriveStatus(now, sub.ExpiryDate)
			switch derived {
			case enums.SubscriptionStatusActive:
				result.ActiveCount++
			case enums.SubscriptionStatusExpiringSoon:
				result.ExpiringSoonCount++
			case enums.SubscriptionStatusExpired:
				result.ExpiredCount++
			}
			if derived == sub.Status {
				continue
			}
			if err := s.applyStatus(ctx, sub, derived); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("subscription %s: %w", sub.ID, err))
				continue
			}
			result.UpdatedCount++
		}
		after = batch[len(batch)-1].ID
		if len(batch) < s.sweepSize {
			break
		}
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"active":        result.ActiveCount,
			"expiring_soon": result.ExpiringSoonCount,
			"expired":       result.ExpiredCount,
			"updated":       result.UpdatedCount,
		})
		s.logg.Info(logCtx, "subscription status sweep complete")
	}
	return result, errs
}

func (s *service) applyStatus(ctx context.Context, sub *models.Subscription, derived enums.SubscriptionStatus) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, sub.ID, derived); err != nil {
			return err
		}
		var event enums.OutboxEventType
		switch derived {
		case enums.SubscriptionStatusExpiringSoon:
			event = enums.EventSubscriptionExpiringSoon
		case enums.SubscriptionStatusExpired:
			event = enums.EventSubscriptionExpired
		default:
			return nil
		}
		return s.emit(ctx, tx, event, sub.ID, map[string]any{
			"auth_code_id": sub.AuthCodeID,
			"expiry_date":  sub.ExpiryDate,
		})
	})
}

func (s *service) buildDetail(ctx context.Context, sub *models.Subscription) (*Detail, error) {
	username, err := s.sealer.Open(sub.UsernameEnc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open username")
	}
	password, err := s.sealer.Open(sub.PasswordEnc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open password")
	}
	price, err := pricing.Effective(sub.CustomPrice, sub.Tier, sub.Duration)
	if err != nil {
		return nil, err
	}
	detail := &Detail{
		Subscription:   *sub,
		Username:       username,
		Password:       password,
		EffectivePrice: price,
	}
	if s.refunds != nil {
		history, err := s.refunds.ListBySubscription(ctx, sub.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund history")
		}
		detail.RefundRequests = history
	}
	return detail, nil
}

func (s *service) findExisting(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event enums.OutboxEventType, aggregateID uuid.UUID, data map[string]any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     event,
		AggregateType: enums.AggregateSubscription,
		AggregateID:   aggregateID,
		Data:          data,
		Version:       1,
	})
}
