package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/google/uuid"
)

// Store is the shared state of all in-memory repositories. Deleting a user
// cascades to their notes and sessions as the SQL schema does.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[string]models.User
	byEmail  map[string]string
	notes    map[string]models.Note
	sessions map[string]models.Session
}

func NewStore() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]models.User),
		byEmail:  make(map[string]string),
		notes:    make(map[string]models.Note),
		sessions: make(map[string]models.Session),
	}
}

// DeleteUser removes a user and everything that references it.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	for k, n := range s.notes {
		if n.UserID == id {
			delete(s.notes, k)
		}
	}
	for k, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, k)
		}
	}
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.byEmail[user.Email]; taken {
		return nil, common.ErrorAlreadyExists
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.now().UTC()
	r.s.users[user.ID] = *user
	r.s.byEmail[user.Email] = user.ID
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

type NoteRepository struct {
	s *Store
}

func (r *NoteRepository) Create(_ context.Context, note *models.Note) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[note.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	note.ID = uuid.NewString()
	note.CreatedAt = r.s.now().UTC()
	note.UpdatedAt = note.CreatedAt
	r.s.notes[note.ID] = *note
	return note, nil
}

func (r *NoteRepository) ListByUser(_ context.Context, userID string) ([]*models.Note, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*models.Note, 0)
	for _, n := range r.s.notes {
		if n.UserID == userID {
			n := n
			result = append(result, &n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *NoteRepository) Update(_ context.Context, note *models.Note) (*models.Note, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.notes[note.ID]
	if !ok || stored.UserID != note.UserID {
		return nil, common.ErrorNotFound
	}
	stored.Title = note.Title
	stored.Content = note.Content
	stored.UpdatedAt = r.s.now().UTC()
	r.s.notes[note.ID] = stored

	*note = stored
	return note, nil
}

func (r *NoteRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.notes[id]
	if !ok || stored.UserID != userID {
		return common.ErrorNotFound
	}
	delete(r.s.notes, id)
	return nil
}

type SessionRepository struct {
	s *Store
}

func (r *SessionRepository) Create(_ context.Context, session *models.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[session.UserID]; !ok {
		return common.ErrorNotFound
	}
	if _, dup := r.s.sessions[session.ID]; dup {
		return common.ErrorAlreadyExists
	}
	r.s.sessions[session.ID] = *session
	return nil
}

func (r *SessionRepository) Find(_ context.Context, id string) (*models.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &sess, nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, id)
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, sess := range r.s.sessions {
		if sess.ExpiredAt(now) {
			delete(r.s.sessions, id)
			n++
		}
	}
	return n, nil
}
