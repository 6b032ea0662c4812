package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/thejerf/abtime"
)

// sessionIDBytes gives 64 hex characters of session id.
const sessionIDBytes = 32

// SessionService issues and checks server-side sessions. Sessions have a
// fixed lifetime from creation and are never extended.
type SessionService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	clock       abtime.AbstractTime
	ttl         time.Duration
	logger      logging.Logger
}

func NewSessionService(db dbx.DBTX, m repomanager.RepositoryManager, clock abtime.AbstractTime, ttl time.Duration, logger logging.Logger) *SessionService {
	if clock == nil {
		clock = abtime.NewRealTime()
	}
	if ttl <= 0 {
		ttl = common.DefaultSessionTTL
	}
	return &SessionService{db: db, repomanager: m, clock: clock, ttl: ttl, logger: logger.With("module", "sessions")}
}

// TTL is the lifetime given to new sessions.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Now is the service clock, shared with the cookie token codec.
func (s *SessionService) Now() time.Time {
	return s.clock.Now()
}

func (s *SessionService) Create(ctx context.Context, userID string) (*models.Session, error) {
	return s.create(ctx, s.db, userID)
}

func (s *SessionService) create(ctx context.Context, db dbx.DBTX, userID string) (*models.Session, error) {
	id, err := common.MakeRandHexString(sessionIDBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating session id: %w", err)
	}

	now := s.clock.Now().UTC()
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return nil, fmt.Errorf("error storing session: %w", err)
	}

	s.logger.Debug(ctx, "session created", "user_id", userID)
	return session, nil
}

// Validate returns the current user of a live session. Missing, expired
// and orphaned sessions all yield common.ErrorUnauthorized.
func (s *SessionService) Validate(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error reading session: %w", err)
	}

	if session.ExpiredAt(s.clock.Now()) {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error reading session user: %w", err)
	}
	return user, nil
}

// Destroy removes a session. Unknown ids are not an error.
func (s *SessionService) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session past its expiry.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("error purging sessions: %w", err)
	}
	return n, nil
}
