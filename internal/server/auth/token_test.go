package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec([]byte("super-secret"), nil)
	tok, err := c.GenerateToken("sid-123", time.Now().Add(time.Hour))
	require.NoError(t, err)

	sid, err := c.GetSessionIDFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-123", sid)
}

func TestTokenCodec_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := now
	c := NewTokenCodec([]byte("secret"), func() time.Time { return clock })

	tok, err := c.GenerateToken("sid", now.Add(time.Hour))
	require.NoError(t, err)

	_, err = c.GetSessionIDFromToken(tok)
	require.NoError(t, err)

	clock = now.Add(2 * time.Hour)
	_, err = c.GetSessionIDFromToken(tok)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenCodec([]byte("right"), nil).GenerateToken("sid", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = NewTokenCodec([]byte("wrong"), nil).GetSessionIDFromToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenCodec_Garbage(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec([]byte("secret"), nil)
	for _, in := range []string{"", "abc", "a.b.c"} {
		_, err := c.GetSessionIDFromToken(in)
		assert.ErrorIs(t, err, common.ErrInvalidToken, in)
	}
}

func TestTokenCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		SessionID:        "sid",
	})
	s, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = NewTokenCodec(secret, nil).GetSessionIDFromToken(s)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestTokenCodec_EmptySessionID(t *testing.T) {
	t.Parallel()

	c := NewTokenCodec([]byte("secret"), nil)
	tok, err := c.GenerateToken("", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = c.GetSessionIDFromToken(tok)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
