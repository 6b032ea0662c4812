// Package memory holds map-backed repositories used when the server runs
// without a database and by service tests. Transactions are not rolled back.
package memory

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/notes"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/users"
)

// RepositoryManager hands out the same store whatever DBTX it is given.
type RepositoryManager struct {
	store *Store
}

func NewRepositoryManager() *RepositoryManager {
	return &RepositoryManager{store: NewStore()}
}

func (m *RepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *RepositoryManager) Users(dbx.DBTX) users.Repository {
	return &UserRepository{s: m.store}
}

func (m *RepositoryManager) Notes(dbx.DBTX) notes.Repository {
	return &NoteRepository{s: m.store}
}

func (m *RepositoryManager) Sessions(dbx.DBTX) sessions.Repository {
	return &SessionRepository{s: m.store}
}

// Transactor runs fn directly with a nil DBTX.
type Transactor struct{}

func (Transactor) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

// Store exposes the shared state, mainly so tests can remove users.
func (m *RepositoryManager) Store() *Store {
	return m.store
}
