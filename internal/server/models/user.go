package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
)

// User is an internal account. Email doubles as the resolution key for
// every sign-in method, so principal accounts store "ii:<principal>" there.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HasPassword reports whether the account can sign in with a password.
// Delegated accounts carry a sentinel that no bcrypt hash can equal.
func (u *User) HasPassword() bool {
	return u.Password != "" && !strings.HasPrefix(u.Password, common.NoPasswordPrefix)
}
