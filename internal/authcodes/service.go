package authcodes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/dmarquezdev/subvault-backend/pkg/db"
	"github.com/dmarquezdev/subvault-backend/pkg/db/models"
	pkgerrors "github.com/dmarquezdev/subvault-backend/pkg/errors"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
)

// codeAlphabet avoids ambiguous characters so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 10

// CreateInput carries the fields for issuing a new auth code.
type CreateInput struct {
	Name  string
	Email string
	Code  string
}

// UpdateInput carries the editable auth code fields.
type UpdateInput struct {
	Name     *string
	Email    *string
	IsActive *bool
}

// Service manages customer auth codes.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.AuthCode, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.AuthCode, error)
	Get(ctx context.Context, id uuid.UUID) (*models.AuthCode, error)
	GetByCode(ctx context.Context, code string) (*models.AuthCode, error)
	List(ctx context.Context) ([]models.AuthCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds an auth code service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth code repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Create issues an auth code. A blank code gets a generated one. Emails are
// unique: a duplicate is a conflict, not an internal error.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.AuthCode, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	code := strings.TrimSpace(strings.ToUpper(input.Code))
	if code == "" {
		generated, err := generateCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate auth code")
		}
		code = generated
	}

	record := &models.AuthCode{
		Code:     code,
		Name:     name,
		Email:    email,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create auth code")
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"auth_code_id": record.ID.String()})
		s.logg.Info(logCtx, "auth code issued")
	}
	return record, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.AuthCode, error) {
	record, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		record.Name = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
		}
		record.Email = email
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}
	if err := s.repo.Update(ctx, record); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "duplicate user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update auth code")
	}
	return record, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.AuthCode, error) {
	return s.findExisting(ctx, id)
}

func (s *service) GetByCode(ctx context.Context, code string) (*models.AuthCode, error) {
	record, err := s.repo.FindByCode(ctx, strings.TrimSpace(strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auth code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auth code")
	}
	return record, nil
}

// Delete removes the auth code and, through the cascade, every subscription
// it owns.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findExisting(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete auth code")
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.AuthCode, error) {
	codes, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list auth codes")
	}
	return codes, nil
}

func (s *service) findExisting(ctx context.Context, id uuid.UUID) (*models.AuthCode, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "auth code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load auth code")
	}
	return record, nil
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
