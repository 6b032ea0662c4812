// Package services contains server-side business logic: credential
// verification, identity resolution, sessions and owner-scoped notes.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
)

// Verifier checks one kind of credential and vouches for an identity.
type Verifier interface {
	Method() string
	Verify(ctx context.Context, cred models.Credential) (*models.VerifiedIdentity, error)
}

// Verifiers holds one verifier per sign-in method.
type Verifiers struct {
	Password  Verifier
	OAuth     Verifier
	Principal Verifier
}

var errWrongCredential = errors.New("credential type does not match verifier")

// PasswordVerifier checks an email and password against the stored bcrypt
// hash. It never writes.
type PasswordVerifier struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
}

func NewPasswordVerifier(db dbx.DBTX, m repomanager.RepositoryManager, hasher auth.PasswordHasher) *PasswordVerifier {
	return &PasswordVerifier{db: db, repomanager: m, hasher: hasher}
}

func (v *PasswordVerifier) Method() string { return models.MethodPassword }

// Verify returns common.ErrorNotFound for an unknown email and
// common.ErrorInvalidCredential for a wrong password or an account
// without one.
func (v *PasswordVerifier) Verify(ctx context.Context, cred models.Credential) (*models.VerifiedIdentity, error) {
	c, ok := cred.(models.PasswordCredential)
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, errWrongCredential)
	}

	email := normalizeEmail(c.Email)
	if email == "" || c.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", common.ErrorValidation)
	}

	user, err := v.repomanager.Users(v.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if !user.HasPassword() {
		return nil, common.ErrorInvalidCredential
	}
	if err := v.hasher.Compare(user.Password, c.Password); err != nil {
		return nil, common.ErrorInvalidCredential
	}

	return &models.VerifiedIdentity{
		Method:      models.MethodPassword,
		Key:         user.Email,
		DisplayName: user.DisplayName,
		User:        user,
	}, nil
}

// OAuthVerifier accepts a profile the provider already verified.
type OAuthVerifier struct{}

func NewOAuthVerifier() *OAuthVerifier { return &OAuthVerifier{} }

func (v *OAuthVerifier) Method() string { return models.MethodGoogle }

func (v *OAuthVerifier) Verify(_ context.Context, cred models.Credential) (*models.VerifiedIdentity, error) {
	c, ok := cred.(models.OAuthCredential)
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, errWrongCredential)
	}

	email := normalizeEmail(c.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: provider profile has no email", common.ErrorValidation)
	}

	return &models.VerifiedIdentity{
		Method:      models.MethodGoogle,
		Key:         email,
		DisplayName: c.Name,
		Secret:      common.GooglePasswordSentinel,
	}, nil
}

// PrincipalVerifier accepts an Internet Identity principal after checking
// its textual form and checksum. Possession of the principal is not proven.
type PrincipalVerifier struct{}

func NewPrincipalVerifier() *PrincipalVerifier { return &PrincipalVerifier{} }

func (v *PrincipalVerifier) Method() string { return models.MethodPrincipal }

func (v *PrincipalVerifier) Verify(_ context.Context, cred models.Credential) (*models.VerifiedIdentity, error) {
	c, ok := cred.(models.PrincipalCredential)
	if !ok {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, errWrongCredential)
	}

	if _, err := auth.ParsePrincipal(c.Principal); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	return &models.VerifiedIdentity{
		Method:      models.MethodPrincipal,
		Key:         common.PrincipalKeyPrefix + c.Principal,
		DisplayName: common.PrincipalDisplayName,
		Secret:      common.PrincipalPasswordSentinel,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
