package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/models"
)

// AuthService runs verify, resolve and session creation as one step.
type AuthService struct {
	tx       dbx.Transactor
	identity *IdentityService
	sessions *SessionService
	logger   logging.Logger
}

func NewAuthService(tx dbx.Transactor, identity *IdentityService, sessions *SessionService, logger logging.Logger) *AuthService {
	return &AuthService{tx: tx, identity: identity, sessions: sessions, logger: logger.With("module", "auth")}
}

// Register creates a password user and its first session in one
// transaction.
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, *models.Session, error) {
	var (
		user    *models.User
		session *models.Session
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if user, err = s.identity.register(ctx, tx, email, password); err != nil {
			return err
		}
		session, err = s.sessions.create(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// SignIn verifies cred with v, resolves the user and opens a session.
func (s *AuthService) SignIn(ctx context.Context, v Verifier, cred models.Credential) (*models.User, *models.Session, error) {
	id, err := v.Verify(ctx, cred)
	if err != nil {
		return nil, nil, err
	}

	user, created, err := s.identity.Resolve(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening session: %w", err)
	}

	s.logger.Info(ctx, "signed in", "user_id", user.ID, "method", v.Method(), "created", created)
	return user, session, nil
}
