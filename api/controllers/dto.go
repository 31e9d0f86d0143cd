package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dmarquezdev/subvault-backend/internal/cart"
	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
)

type authCodeResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAuthCodeResponse(record *models.AuthCode) authCodeResponse {
	return authCodeResponse{
		ID:        record.ID,
		Code:      record.Code,
		Name:      record.Name,
		Email:     record.Email,
		IsActive:  record.IsActive,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func newAuthCodeListResponse(records []models.AuthCode) []authCodeResponse {
	out := make([]authCodeResponse, 0, len(records))
	for i := range records {
		out = append(out, newAuthCodeResponse(&records[i]))
	}
	return out
}

type subscriptionResponse struct {
	ID          uuid.UUID                `json:"id"`
	AuthCodeID  uuid.UUID                `json:"auth_code_id"`
	ProductID   uuid.UUID                `json:"product_id"`
	ProductName string                   `json:"product_name,omitempty"`
	Tier        enums.SharingTier        `json:"tier"`
	Duration    enums.DurationCode       `json:"duration"`
	StartDate   time.Time                `json:"start_date"`
	ExpiryDate  time.Time                `json:"expiry_date"`
	Status      enums.SubscriptionStatus `json:"status"`
	AutoRenew   bool                     `json:"auto_renew"`
	CustomPrice *decimal.Decimal         `json:"custom_price,omitempty"`
	Currency    enums.CurrencyCode       `json:"currency"`
	Notes       *string                  `json:"notes,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func newSubscriptionResponse(sub *models.Subscription) subscriptionResponse {
	resp := subscriptionResponse{
		ID:          sub.ID,
		AuthCodeID:  sub.AuthCodeID,
		ProductID:   sub.ProductID,
		Tier:        sub.Tier,
		Duration:    sub.Duration,
		StartDate:   sub.StartDate,
		ExpiryDate:  sub.ExpiryDate,
		Status:      sub.Status,
		AutoRenew:   sub.AutoRenew,
		CustomPrice: sub.CustomPrice,
		Currency:    sub.Currency,
		Notes:       sub.Notes,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	}
	if sub.Product != nil {
		resp.ProductName = sub.Product.Name
	}
	return resp
}

func newSubscriptionListResponse(subs []models.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, newSubscriptionResponse(&subs[i]))
	}
	return out
}

type subscriptionDetailResponse struct {
	subscriptionResponse
	Username       string                  `json:"username"`
	Password       string                  `json:"password"`
	EffectivePrice decimal.Decimal         `json:"effective_price"`
	DisplayPrice   string                  `json:"display_price,omitempty"`
	RefundRequests []refundRequestResponse `json:"refund_requests"`
}

func newSubscriptionDetailResponse(detail *subscriptions.Detail, displayPrice string) subscriptionDetailResponse {
	return subscriptionDetailResponse{
		subscriptionResponse: newSubscriptionResponse(&detail.Subscription),
		Username:             detail.Username,
		Password:             detail.Password,
		EffectivePrice:       detail.EffectivePrice,
		DisplayPrice:         displayPrice,
		RefundRequests:       newRefundRequestListResponse(detail.RefundRequests),
	}
}

type refundRequestResponse struct {
	ID             uuid.UUID           `json:"id"`
	SubscriptionID uuid.UUID           `json:"subscription_id"`
	AuthCodeID     uuid.UUID           `json:"auth_code_id"`
	Reason         enums.RefundReason  `json:"reason"`
	Description    string              `json:"description"`
	Status         enums.RefundStatus  `json:"status"`
	AdminNotes     *string             `json:"admin_notes,omitempty"`
	RefundAmount   *decimal.Decimal    `json:"refund_amount,omitempty"`
	RefundMethod   *enums.RefundMethod `json:"refund_method,omitempty"`
	ProcessedAt    *time.Time          `json:"processed_at,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func newRefundRequestResponse(record *models.RefundRequest) refundRequestResponse {
	return refundRequestResponse{
		ID:             record.ID,
		SubscriptionID: record.SubscriptionID,
		AuthCodeID:     record.AuthCodeID,
		Reason:         record.Reason,
		Description:    record.Description,
		Status:         record.Status,
		AdminNotes:     record.AdminNotes,
		RefundAmount:   record.RefundAmount,
		RefundMethod:   record.RefundMethod,
		ProcessedAt:    record.ProcessedAt,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func newRefundRequestListResponse(records []models.RefundRequest) []refundRequestResponse {
	out := make([]refundRequestResponse, 0, len(records))
	for i := range records {
		out = append(out, newRefundRequestResponse(&records[i]))
	}
	return out
}

type productResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Category    enums.ProductCategory `json:"category"`
	ListPrice   decimal.Decimal       `json:"list_price"`
	Description *string               `json:"description,omitempty"`
	IsActive    bool                  `json:"is_active"`
	CreatedAt   time.Time             `json:"created_at"`
}

func newProductResponse(product *models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		Name:        product.Name,
		Category:    product.Category,
		ListPrice:   product.ListPrice,
		Description: product.Description,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
	}
}

type pricingPlanResponse struct {
	ID            uuid.UUID         `json:"id"`
	ProductID     uuid.UUID         `json:"product_id"`
	Tier          enums.SharingTier `json:"tier"`
	Enabled       bool              `json:"enabled"`
	MonthlyAmount decimal.Decimal   `json:"monthly_amount"`
	YearlyAmount  decimal.Decimal   `json:"yearly_amount"`
}

func newPricingPlanListResponse(plans []models.PricingPlan) []pricingPlanResponse {
	out := make([]pricingPlanResponse, 0, len(plans))
	for _, plan := range plans {
		out = append(out, pricingPlanResponse{
			ID:            plan.ID,
			ProductID:     plan.ProductID,
			Tier:          plan.Tier,
			Enabled:       plan.Enabled,
			MonthlyAmount: plan.MonthlyAmount,
			YearlyAmount:  plan.YearlyAmount,
		})
	}
	return out
}

type cartItemResponse struct {
	ProductID   uuid.UUID          `json:"product_id"`
	ProductName string             `json:"product_name,omitempty"`
	Tier        enums.SharingTier  `json:"tier"`
	Duration    enums.DurationCode `json:"duration"`
	Quantity    int                `json:"quantity"`
	CustomPrice *decimal.Decimal   `json:"custom_price,omitempty"`
	UnitPrice   decimal.Decimal    `json:"unit_price"`
	LineTotal   decimal.Decimal    `json:"line_total"`
}

type cartSummaryResponse struct {
	Items     []cartItemResponse `json:"items"`
	LineCount int                `json:"line_count"`
	UnitCount int                `json:"unit_count"`
	Total     decimal.Decimal    `json:"total"`
}

func newCartSummaryResponse(summary *cart.Summary) cartSummaryResponse {
	items := make([]cartItemResponse, 0, len(summary.Items))
	for _, item := range summary.Items {
		line := cartItemResponse{
			ProductID:   item.ProductID,
			Tier:        item.Tier,
			Duration:    item.Duration,
			Quantity:    item.Quantity,
			CustomPrice: item.CustomPrice,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal(),
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		items = append(items, line)
	}
	return cartSummaryResponse{
		Items:     items,
		LineCount: summary.LineCount,
		UnitCount: summary.UnitCount,
		Total:     summary.Total,
	}
}

type checkoutResponse struct {
	SubscriptionIDs []uuid.UUID     `json:"subscription_ids"`
	Total           decimal.Decimal `json:"total"`
}

func newCheckoutResponse(result *cart.CheckoutResult) checkoutResponse {
	return checkoutResponse{
		SubscriptionIDs: result.SubscriptionIDs,
		Total:           result.Total,
	}
}
