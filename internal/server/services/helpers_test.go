package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/memory"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/abtime"
	"golang.org/x/crypto/bcrypt"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	rm        *memory.RepositoryManager
	clock     *abtime.ManualTime
	hasher    *auth.BcryptHasher
	identity  *IdentityService
	sessions  *SessionService
	notes     *NoteService
	auth      *AuthService
	verifiers Verifiers
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith builds services over memory repositories. wrap, when set,
// lets a test swap individual repositories for failing fakes.
func newTestEnvWith(t *testing.T, wrap func(repomanager.RepositoryManager) repomanager.RepositoryManager) *testEnv {
	t.Helper()

	mem := memory.NewRepositoryManager()
	var rm repomanager.RepositoryManager = mem
	if wrap != nil {
		rm = wrap(mem)
	}

	log := logging.NewNop()
	clock := abtime.NewManualAtTime(epoch)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)

	identity := NewIdentityService(nil, rm, hasher, log)
	sess := NewSessionService(nil, rm, clock, 24*time.Hour, log)

	return &testEnv{
		rm:       mem,
		clock:    clock,
		hasher:   hasher,
		identity: identity,
		sessions: sess,
		notes:    NewNoteService(nil, rm),
		auth:     NewAuthService(memory.Transactor{}, identity, sess, log),
		verifiers: Verifiers{
			Password:  NewPasswordVerifier(nil, rm, hasher),
			OAuth:     NewOAuthVerifier(),
			Principal: NewPrincipalVerifier(),
		},
	}
}

func (e *testEnv) mustRegister(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := e.identity.Register(context.Background(), email, password)
	require.NoError(t, err)
	return u
}

// faultyManager overrides selected repositories of an underlying manager.
type faultyManager struct {
	repomanager.RepositoryManager
	users    users.Repository
	sessions sessions.Repository
}

func (m *faultyManager) Users(db dbx.DBTX) users.Repository {
	if m.users != nil {
		return m.users
	}
	return m.RepositoryManager.Users(db)
}

func (m *faultyManager) Sessions(db dbx.DBTX) sessions.Repository {
	if m.sessions != nil {
		return m.sessions
	}
	return m.RepositoryManager.Sessions(db)
}

type failingSessions struct {
	sessions.Repository
	err error
}

func (f *failingSessions) Create(context.Context, *models.Session) error { return f.err }
func (f *failingSessions) Find(context.Context, string) (*models.Session, error) {
	return nil, f.err
}
func (f *failingSessions) Delete(context.Context, string) error { return f.err }
func (f *failingSessions) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, f.err
}

// racingUsers reports a miss on the first lookup and a unique violation on
// insert, as if another request created the user in between.
type racingUsers struct {
	users.Repository
	winner  *models.User
	lookups int
}

func (r *racingUsers) GetByEmail(context.Context, string) (*models.User, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, common.ErrorNotFound
	}
	return r.winner, nil
}

func (r *racingUsers) Create(context.Context, *models.User) (*models.User, error) {
	return nil, common.ErrorAlreadyExists
}

type erroringUsers struct {
	users.Repository
	err error
}

func (e *erroringUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, e.err
}

func (e *erroringUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, e.err
}
