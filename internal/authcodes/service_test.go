package authcodes

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
)

func codeOf(err error) pkgerrors.Code {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Code()
	}
	return ""
}

type fakeRepo struct {
	byID    map[uuid.UUID]*models.AuthCode
	byEmail map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:    map[uuid.UUID]*models.AuthCode{},
		byEmail: map[string]uuid.UUID{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, code *models.AuthCode) error {
	if _, exists := f.byEmail[code.Email]; exists {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	copied := *code
	f.byID[code.ID] = &copied
	f.byEmail[code.Email] = code.ID
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, code *models.AuthCode) error {
	if owner, exists := f.byEmail[code.Email]; exists && owner != code.ID {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	stored, ok := f.byID[code.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.byEmail, stored.Email)
	copied := *code
	f.byID[code.ID] = &copied
	f.byEmail[code.Email] = code.ID
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.AuthCode, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (f *fakeRepo) FindByCode(ctx context.Context, raw string) (*models.AuthCode, error) {
	for _, stored := range f.byID {
		if stored.Code == raw {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) List(ctx context.Context) ([]models.AuthCode, error) {
	var out []models.AuthCode
	for _, stored := range f.byID {
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if stored, ok := f.byID[id]; ok {
		delete(f.byEmail, stored.Email)
		delete(f.byID, id)
	}
	return nil
}

func newService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(newFakeRepo(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAuthCodeCreate_GeneratesCode(t *testing.T) {
	svc := newService(t)
	record, err := svc.Create(context.Background(), CreateInput{
		Name:  "Dana",
		Email: "Dana@Example.com",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(record.Code) != codeLength {
		t.Fatalf("code %q, want %d characters", record.Code, codeLength)
	}
	for _, r := range record.Code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", record.Code, r)
		}
	}
	if record.Email != "dana@example.com" {
		t.Fatalf("email = %q, want lowercased", record.Email)
	}
	if !record.IsActive {
		t.Fatal("new auth code must be active")
	}
}

func TestAuthCodeCreate_DuplicateEmail(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Create(context.Background(), CreateInput{Name: "A", Email: "same@example.com"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateInput{Name: "B", Email: "same@example.com"})
	if codeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if pkgerrors.As(err).Message() != "duplicate user" {
		t.Fatalf("message = %q, want duplicate user", pkgerrors.As(err).Message())
	}
}

func TestAuthCodeCreate_Validation(t *testing.T) {
	svc := newService(t)
	if _, err := svc.Create(context.Background(), CreateInput{Email: "x@example.com"}); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "X", Email: "not-an-email"}); codeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad email, got %v", err)
	}
}

func TestAuthCodeGetByCode(t *testing.T) {
	svc := newService(t)
	record, err := svc.Create(context.Background(), CreateInput{
		Name:  "Dana",
		Email: "dana@example.com",
		Code:  "mycode123",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Code != "MYCODE123" {
		t.Fatalf("code = %q, want uppercased", record.Code)
	}

	found, err := svc.GetByCode(context.Background(), "  mycode123 ")
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if found.ID != record.ID {
		t.Fatal("looked up wrong record")
	}

	if _, err := svc.GetByCode(context.Background(), "UNKNOWN"); codeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAuthCodeUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	record, err := svc.Create(context.Background(), CreateInput{Name: "Dana", Email: "dana@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	inactive := false
	updated, err := svc.Update(context.Background(), record.ID, UpdateInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected deactivated auth code")
	}

	if err := svc.Delete(context.Background(), record.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), record.ID); codeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
