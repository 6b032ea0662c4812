package auth

import (
	"fmt"

	"github.com/dmitrijs2005/todolist/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash and an error wrapping
	// common.ErrorInvalidCredential otherwise.
	Compare(hash, password string) error
}

// BcryptHasher hashes passwords with bcrypt at the given cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorInvalidCredential, err)
	}
	return nil
}
