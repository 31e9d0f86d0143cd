package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/pricing"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
	"github.com/dmarquezdev/subvault-backend/pkg/outbox"
)

const maxDescriptionLen = 1000

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type subscriptionLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput carries a customer's refund claim.
type CreateInput struct {
	AuthCodeID     uuid.UUID
	SubscriptionID uuid.UUID
	Reason         enums.RefundReason
	Description    string
}

// TransitionInput carries an admin review decision.
type TransitionInput struct {
	Status          enums.RefundStatus
	AdminNotes      *string
	RefundAmount    *decimal.Decimal
	RefundMethod    *enums.RefundMethod
	ExpectedUpdated time.Time
}

// Service defines the refund request workflow surface.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.RefundRequest, error)
	Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.RefundRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error)
	List(ctx context.Context, query ListQuery) ([]models.RefundRequest, error)
	ListForOwner(ctx context.Context, authCodeID uuid.UUID) ([]models.RefundRequest, error)
	ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.RefundRequest, error)
}

// ServiceParams wires the refund service dependencies.
type ServiceParams struct {
	Repo          Repository
	Tx            txRunner
	Subscriptions subscriptionLoader
	Events        eventEmitter
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	repo          Repository
	tx            txRunner
	subscriptions subscriptionLoader
	events        eventEmitter
	logg          *logger.Logger
	now           func() time.Time
}

// NewService builds a refund workflow service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("refund repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription loader required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:          params.Repo,
		tx:            params.Tx,
		subscriptions: params.Subscriptions,
		events:        params.Events,
		logg:          params.Logger,
		now:           now,
	}, nil
}

// Create files a refund request against a subscription the caller owns. The
// request starts in pending regardless of input, and a subscription can hold
// at most one open request at a time.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.RefundRequest, error) {
	if input.AuthCodeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth code id is required")
	}
	if input.SubscriptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown refund reason")
	}
	if input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if len(input.Description) > maxDescriptionLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("description exceeds %d characters", maxDescriptionLen))
	}

	sub, err := s.subscriptions.FindByID(ctx, input.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub.AuthCodeID != input.AuthCodeID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}

	open, err := s.repo.HasOpenRequest(ctx, sub.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open refund requests")
	}
	if open {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "subscription already has an open refund request")
	}

	request := &models.RefundRequest{
		SubscriptionID: sub.ID,
		AuthCodeID:     sub.AuthCodeID,
		Reason:         input.Reason,
		Description:    input.Description,
		Status:         enums.RefundStatusPending,
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return err
		}
		return s.emit(ctx, tx, enums.EventRefundRequested, request.ID, map[string]any{
			"subscription_id": request.SubscriptionID,
			"auth_code_id":    request.AuthCodeID,
			"reason":          request.Reason,
		})
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist refund request")
	}
	return request, nil
}

// Transition moves a refund request through its review workflow. Illegal moves
// are rejected against the transition table; approving without an explicit
// amount defaults to the subscription's effective price. Every transition
// stamps processed_at with the transition time.
func (s *service) Transition(ctx context.Context, id uuid.UUID, input TransitionInput) (*models.RefundRequest, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown refund status")
	}
	if input.RefundMethod != nil && !input.RefundMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown refund method")
	}
	if input.RefundAmount != nil && input.RefundAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be non-negative")
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund request")
	}
	if !request.Status.CanTransitionTo(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move refund request from %s to %s", request.Status, input.Status))
	}

	expected := input.ExpectedUpdated
	if expected.IsZero() {
		expected = request.UpdatedAt
	}

	request.Status = input.Status
	if input.AdminNotes != nil {
		request.AdminNotes = input.AdminNotes
	}
	if input.RefundMethod != nil {
		request.RefundMethod = input.RefundMethod
	}
	switch input.Status {
	case enums.RefundStatusApproved:
		amount := input.RefundAmount
		if amount == nil {
			defaulted, err := s.defaultAmount(ctx, request)
			if err != nil {
				return nil, err
			}
			amount = &defaulted
		}
		request.RefundAmount = amount
	case enums.RefundStatusCompleted:
		if input.RefundAmount != nil {
			request.RefundAmount = input.RefundAmount
		}
	}
	processed := s.now().UTC()
	request.ProcessedAt = &processed

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, request, expected); err != nil {
			return err
		}
		event, ok := transitionEvent(input.Status)
		if !ok {
			return nil
		}
		data := map[string]any{
			"subscription_id": request.SubscriptionID,
			"auth_code_id":    request.AuthCodeID,
			"status":          request.Status,
		}
		if request.RefundAmount != nil {
			data["refund_amount"] = request.RefundAmount
		}
		return s.emit(ctx, tx, event, request.ID, data)
	}); err != nil {
		if errors.Is(err, ErrStaleWrite) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "refund request was modified concurrently")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund request")
	}
	return request, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RefundRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "refund request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load refund request")
	}
	return request, nil
}

func (s *service) List(ctx context.Context, query ListQuery) ([]models.RefundRequest, error) {
	requests, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list refund requests")
	}
	return requests, nil
}

func (s *service) ListForOwner(ctx context.Context, authCodeID uuid.UUID) ([]models.RefundRequest, error) {
	return s.List(ctx, ListQuery{AuthCodeID: &authCodeID})
}

func (s *service) ListBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]models.RefundRequest, error) {
	requests, err := s.repo.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list refund requests")
	}
	return requests, nil
}

// defaultAmount resolves the refund amount from the subscription's effective
// price when the reviewer does not provide one.
func (s *service) defaultAmount(ctx context.Context, request *models.RefundRequest) (decimal.Decimal, error) {
	sub := request.Subscription
	if sub == nil {
		loaded, err := s.subscriptions.FindByID(ctx, request.SubscriptionID)
		if err != nil {
			return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription for refund amount")
		}
		sub = loaded
	}
	amount, err := pricing.Effective(sub.CustomPrice, sub.Tier, sub.Duration)
	if err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func transitionEvent(status enums.RefundStatus) (enums.OutboxEventType, bool) {
	switch status {
	case enums.RefundStatusApproved:
		return enums.EventRefundApproved, true
	case enums.RefundStatusRejected:
		return enums.EventRefundRejected, true
	case enums.RefundStatusCompleted:
		return enums.EventRefundCompleted, true
	default:
		return "", false
	}
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event enums.OutboxEventType, aggregateID uuid.UUID, data map[string]any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     event,
		AggregateType: enums.AggregateRefundRequest,
		AggregateID:   aggregateID,
		Data:          data,
		Version:       1,
	})
}
