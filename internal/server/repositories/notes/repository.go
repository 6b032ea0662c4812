// Package notes provides owner-scoped note persistence. Every statement
// filters by user_id, so a note owned by someone else behaves exactly like
// a missing one.
package notes

import (
	"context"

	"github.com/dmitrijs2005/todolist/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Note, error)
	// Update rewrites title and content of a note owned by note.UserID.
	// Zero matched rows yield common.ErrorNotFound.
	Update(ctx context.Context, note *models.Note) (*models.Note, error)
	// Delete removes a note owned by userID or returns common.ErrorNotFound.
	Delete(ctx context.Context, userID, id string) error
}
