// Package sessions declares the server-side repository contract for
// session rows and its PostgreSQL implementation.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error

	// Find returns the session with the given id or common.ErrorNotFound.
	// Expired rows are returned as well; callers check ExpiresAt.
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes every session that expired at or before now
	// and reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
