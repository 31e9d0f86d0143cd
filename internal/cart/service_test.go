package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

type fakeRepo struct {
	carts map[uuid.UUID]*models.CartRecord
	items map[uuid.UUID]map[uuid.UUID]*models.CartItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		carts: map[uuid.UUID]*models.CartRecord{},
		items: map[uuid.UUID]map[uuid.UUID]*models.CartItem{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) FindByAuthCode(ctx context.Context, authCodeID uuid.UUID) (*models.CartRecord, error) {
	record, ok := f.carts[authCodeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	copied.Items = nil
	for _, item := range f.items[record.ID] {
		copied.Items = append(copied.Items, *item)
	}
	return &copied, nil
}

func (f *fakeRepo) GetOrCreate(ctx context.Context, authCodeID uuid.UUID) (*models.CartRecord, error) {
	if record, ok := f.carts[authCodeID]; ok {
		return record, nil
	}
	record := &models.CartRecord{ID: uuid.New(), AuthCodeID: authCodeID}
	f.carts[authCodeID] = record
	f.items[record.ID] = map[uuid.UUID]*models.CartItem{}
	return record, nil
}

func (f *fakeRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	item, ok := f.items[cartID][productID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeRepo) SaveItem(ctx context.Context, item *models.CartItem) error {
	if f.items[item.CartID] == nil {
		f.items[item.CartID] = map[uuid.UUID]*models.CartItem{}
	}
	copied := *item
	f.items[item.CartID][item.ProductID] = &copied
	return nil
}

func (f *fakeRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	delete(f.items[cartID], productID)
	return nil
}

func (f *fakeRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	f.items[cartID] = map[uuid.UUID]*models.CartItem{}
	return nil
}

type fakeProducts struct{ known map[uuid.UUID]bool }

func (f fakeProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if !f.known[id] {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Product{ID: id}, nil
}

type fakeCreator struct {
	created []subscriptions.CreateInput
	err     error
}

func (f *fakeCreator) Create(ctx context.Context, input subscriptions.CreateInput) (*models.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	return &models.Subscription{ID: uuid.New(), AuthCodeID: input.AuthCodeID, ProductID: input.ProductID}, nil
}

type fixture struct {
	svc        Service
	creator    *fakeCreator
	authCodeID uuid.UUID
	productA   uuid.UUID
	productB   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		creator:    &fakeCreator{},
		authCodeID: uuid.New(),
		productA:   uuid.New(),
		productB:   uuid.New(),
	}
	svc, err := NewService(ServiceParams{
		Repo:          newFakeRepo(),
		Products:      fakeProducts{known: map[uuid.UUID]bool{f.productA: true, f.productB: true}},
		Subscriptions: f.creator,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func TestCartAdd_SnapshotsEffectivePrice(t *testing.T) {
	f := newFixture(t)
	summary, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTierSemiPrivate,
		Duration:  enums.DurationThreeMonths,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if summary.LineCount != 1 || summary.UnitCount != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	// semi_private three months: 10 * 2.5 per unit.
	if !summary.Total.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("total = %s, want 50", summary.Total)
	}
}

func TestCartAdd_SameProductMergesLines(t *testing.T) {
	f := newFixture(t)
	input := AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTierShared,
		Duration:  enums.DurationOneMonth,
	}
	if _, err := f.svc.Add(context.Background(), f.authCodeID, input); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	summary, err := f.svc.Add(context.Background(), f.authCodeID, input)
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if summary.LineCount != 1 || summary.UnitCount != 2 {
		t.Fatalf("summary = %+v, want one merged line of two units", summary)
	}
}

func TestCartAdd_CustomPriceLine(t *testing.T) {
	f := newFixture(t)
	custom := decimal.NewFromFloat(3.99)
	summary, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID:   f.productA,
		Tier:        enums.SharingTierShared,
		Duration:    enums.DurationOneMonth,
		CustomPrice: &custom,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !summary.Total.Equal(custom) {
		t.Fatalf("total = %s, want 3.99", summary.Total)
	}
}

func TestCartAdd_Validation(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTier("family"),
		Duration:  enums.DurationOneMonth,
	}); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for tier, got %v", err)
	}
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: uuid.New(),
		Tier:      enums.SharingTierShared,
		Duration:  enums.DurationOneMonth,
	}); codeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown product, got %v", err)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTierShared,
		Duration:  enums.DurationOneMonth,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	summary, err := f.svc.UpdateQuantity(context.Background(), f.authCodeID, f.productA, 5)
	if err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if summary.UnitCount != 5 {
		t.Fatalf("units = %d, want 5", summary.UnitCount)
	}

	// Zero removes the line.
	summary, err = f.svc.UpdateQuantity(context.Background(), f.authCodeID, f.productA, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity to zero: %v", err)
	}
	if summary.LineCount != 0 {
		t.Fatalf("lines = %d, want 0", summary.LineCount)
	}

	if _, err := f.svc.UpdateQuantity(context.Background(), f.authCodeID, f.productB, 3); codeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for absent line, got %v", err)
	}
}

func TestCartRemove_AbsentLineIsNoop(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTierShared,
		Duration:  enums.DurationOneMonth,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	summary, err := f.svc.Remove(context.Background(), f.authCodeID, f.productB)
	if err != nil {
		t.Fatalf("Remove absent: %v", err)
	}
	if summary.LineCount != 1 {
		t.Fatalf("lines = %d, want 1", summary.LineCount)
	}

	// An auth code without a cart record gets an empty summary, not an error.
	summary, err = f.svc.Remove(context.Background(), uuid.New(), f.productB)
	if err != nil {
		t.Fatalf("Remove without cart: %v", err)
	}
	if summary.LineCount != 0 || !summary.Total.IsZero() {
		t.Fatalf("summary = %+v, want empty", summary)
	}

	summary, err = f.svc.UpdateQuantity(context.Background(), uuid.New(), f.productB, 0)
	if err != nil {
		t.Fatalf("UpdateQuantity zero without cart: %v", err)
	}
	if summary.LineCount != 0 {
		t.Fatalf("lines = %d, want 0", summary.LineCount)
	}
}

func TestCartGet_NeverTouchedIsEmpty(t *testing.T) {
	f := newFixture(t)
	summary, err := f.svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if summary.LineCount != 0 || !summary.Total.IsZero() {
		t.Fatalf("summary = %+v, want empty", summary)
	}
}

func TestCartCheckout_OneSubscriptionPerUnit(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productA,
		Tier:      enums.SharingTierShared,
		Duration:  enums.DurationOneMonth,
		Quantity:  3,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := f.svc.Add(context.Background(), f.authCodeID, AddInput{
		ProductID: f.productB,
		Tier:      enums.SharingTierPrivate,
		Duration:  enums.DurationOneYear,
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	result, err := f.svc.Checkout(context.Background(), f.authCodeID)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(result.SubscriptionIDs) != 4 {
		t.Fatalf("subscriptions = %d, want 4", len(result.SubscriptionIDs))
	}
	// 3 shared months at 5 each plus one private year at 120.
	if !result.Total.Equal(decimal.NewFromInt(135)) {
		t.Fatalf("total = %s, want 135", result.Total)
	}
	if len(f.creator.created) != 4 {
		t.Fatalf("creator calls = %d, want 4", len(f.creator.created))
	}
	for _, input := range f.creator.created {
		if input.AuthCodeID != f.authCodeID {
			t.Fatal("subscription provisioned for wrong owner")
		}
	}

	// Checkout clears the cart.
	summary, err := f.svc.Get(context.Background(), f.authCodeID)
	if err != nil {
		t.Fatalf("Get after checkout: %v", err)
	}
	if summary.LineCount != 0 {
		t.Fatalf("lines after checkout = %d, want 0", summary.LineCount)
	}

	// A second checkout on the emptied cart is rejected.
	if _, err := f.svc.Checkout(context.Background(), f.authCodeID); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty cart, got %v", err)
	}
}
