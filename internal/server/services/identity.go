package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
)

// IdentityService maps verified identities onto internal users.
type IdentityService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	logger      logging.Logger
}

func NewIdentityService(db dbx.DBTX, m repomanager.RepositoryManager, hasher auth.PasswordHasher, logger logging.Logger) *IdentityService {
	return &IdentityService{db: db, repomanager: m, hasher: hasher, logger: logger.With("module", "identity")}
}

// Register creates a password user. The email is lower-cased first and
// must not be taken by any sign-in method.
func (s *IdentityService) Register(ctx context.Context, email, password string) (*models.User, error) {
	return s.register(ctx, s.db, email, password)
}

func (s *IdentityService) register(ctx context.Context, db dbx.DBTX, email, password string) (*models.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorAlreadyRegistered
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Password: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyRegistered
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Resolve returns the user behind id, creating it on first contact for
// delegated identities. created reports whether this call inserted it.
func (s *IdentityService) Resolve(ctx context.Context, id *models.VerifiedIdentity) (*models.User, bool, error) {
	if id == nil {
		return nil, false, fmt.Errorf("%w: no identity", common.ErrorValidation)
	}
	if id.User != nil {
		return id.User, false, nil
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, id.Key)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, false, fmt.Errorf("error looking up user: %w", err)
	}

	user, err = repo.Create(ctx, &models.User{
		Email:       id.Key,
		Password:    id.Secret,
		DisplayName: id.DisplayName,
	})
	if err == nil {
		s.logger.Info(ctx, "user provisioned", "user_id", user.ID, "method", id.Method)
		return user, true, nil
	}
	if !errors.Is(err, common.ErrorAlreadyExists) {
		return nil, false, fmt.Errorf("error creating user: %w", err)
	}

	// Lost the insert race to a concurrent first contact.
	user, err = repo.GetByEmail(ctx, id.Key)
	if err != nil {
		return nil, false, fmt.Errorf("error re-reading user: %w", err)
	}
	return user, false, nil
}

func validateEmail(email string) (string, error) {
	email = normalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", common.ErrorValidation)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password is longer than %d bytes", common.ErrorValidation, auth.MaxPasswordBytes)
	}
	return nil
}
