// Package auth holds the credential primitives of the server: the signed
// session cookie token, password hashing, Internet Identity principal
// parsing and the Google OAuth provider.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the session id inside the cookie token.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// TokenCodec signs and verifies session cookie tokens with HS256.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec returns a codec using secret. now drives expiry checks;
// nil means time.Now.
func NewTokenCodec(secret []byte, now func() time.Time) *TokenCodec {
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{secret: secret, now: now}
}

// GenerateToken returns a token for sessionID that stops verifying at expiresAt.
func (c *TokenCodec) GenerateToken(sessionID string, expiresAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(c.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// GetSessionIDFromToken verifies tokenString and returns the session id.
// Expired tokens yield common.ErrTokenExpired, anything else that fails
// verification yields common.ErrInvalidToken.
func (c *TokenCodec) GetSessionIDFromToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return "", common.ErrInvalidToken
	}
	return claims.SessionID, nil
}
