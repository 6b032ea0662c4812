package services

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_CreateAndValidate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")

	s, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, s.ID, 64)
	_, err = hex.DecodeString(s.ID)
	assert.NoError(t, err)
	assert.Equal(t, epoch, s.CreatedAt)
	assert.Equal(t, epoch.Add(24*time.Hour), s.ExpiresAt)

	got, err := env.sessions.Validate(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestSessionService_ExpiresAfterTTL(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")

	s, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)

	env.clock.Advance(24*time.Hour - time.Second)
	_, err = env.sessions.Validate(ctx, s.ID)
	require.NoError(t, err, "still valid just before expiry")

	env.clock.Advance(time.Second)
	_, err = env.sessions.Validate(ctx, s.ID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized, "expiry instant is invalid")
}

func TestSessionService_Destroy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")

	s1, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	s2, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)

	require.NoError(t, env.sessions.Destroy(ctx, s1.ID))
	require.NoError(t, env.sessions.Destroy(ctx, s1.ID), "destroy is idempotent")
	require.NoError(t, env.sessions.Destroy(ctx, ""))

	_, err = env.sessions.Validate(ctx, s1.ID)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = env.sessions.Validate(ctx, s2.ID)
	assert.NoError(t, err, "other sessions of the user survive")
}

func TestSessionService_Validate_Unauthorized(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")
	s, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)

	env.rm.Store().DeleteUser(u.ID)

	for _, sid := range []string{"", "unknown", s.ID} {
		_, err := env.sessions.Validate(ctx, sid)
		assert.ErrorIs(t, err, common.ErrorUnauthorized, sid)
	}
}

func TestSessionService_StorageErrorsAreNotUnauthorized(t *testing.T) {
	boom := errors.New("db down")
	env := newTestEnvWith(t, func(m repomanager.RepositoryManager) repomanager.RepositoryManager {
		return &faultyManager{RepositoryManager: m, sessions: &failingSessions{err: boom}}
	})
	ctx := context.Background()

	_, err := env.sessions.Validate(ctx, "sid")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)

	_, err = env.sessions.Create(ctx, "u")
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, env.sessions.Destroy(ctx, "sid"), boom)

	_, err = env.sessions.PurgeExpired(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestSessionService_UserLookupError(t *testing.T) {
	boom := errors.New("db down")
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")
	s, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)

	broken := NewSessionService(nil, &faultyManager{RepositoryManager: env.rm, users: &erroringUsers{err: boom}}, env.clock, time.Hour, env.sessions.logger)
	_, err = broken.Validate(ctx, s.ID)
	assert.ErrorIs(t, err, boom)
}

func TestSessionService_PurgeExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustRegister(t, "a@x.com", "pw")

	old, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)
	env.clock.Advance(12 * time.Hour)
	fresh, err := env.sessions.Create(ctx, u.ID)
	require.NoError(t, err)

	n, err := env.sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	env.clock.Advance(12 * time.Hour)
	n, err = env.sessions.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = env.rm.Sessions(nil).Find(ctx, old.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = env.sessions.Validate(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestNewSessionService_Defaults(t *testing.T) {
	env := newTestEnv(t)
	s := NewSessionService(nil, env.rm, nil, 0, env.sessions.logger)
	assert.Equal(t, common.DefaultSessionTTL, s.TTL())
	assert.WithinDuration(t, time.Now(), s.Now(), time.Minute)
}
