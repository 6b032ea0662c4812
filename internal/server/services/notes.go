package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/dbx"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/dmitrijs2005/todolist/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NoteService is owner-scoped CRUD on notes. userID always comes from the
// authenticated session, never from the request body.
type NoteService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db dbx.DBTX, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

func (s *NoteService) List(ctx context.Context, userID string) ([]*models.Note, error) {
	notes, err := s.repomanager.Notes(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) Create(ctx context.Context, userID, title, content string) (*models.Note, error) {
	if err := validateNote(title, content); err != nil {
		return nil, err
	}
	note, err := s.repomanager.Notes(s.db).Create(ctx, &models.Note{UserID: userID, Title: title, Content: content})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return note, nil
}

// Update returns common.ErrorNotFound when the note does not exist or
// belongs to someone else.
func (s *NoteService) Update(ctx context.Context, userID, id, title, content string) (*models.Note, error) {
	if err := validateNoteID(id); err != nil {
		return nil, err
	}
	if err := validateNote(title, content); err != nil {
		return nil, err
	}
	note, err := s.repomanager.Notes(s.db).Update(ctx, &models.Note{ID: id, UserID: userID, Title: title, Content: content})
	if err != nil {
		return nil, fmt.Errorf("error updating note: %w", err)
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if err := validateNoteID(id); err != nil {
		return err
	}
	if err := s.repomanager.Notes(s.db).Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("error deleting note: %w", err)
	}
	return nil
}

func validateNoteID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid note id", common.ErrorValidation)
	}
	return nil
}

func validateNote(title, content string) error {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: title or content is required", common.ErrorValidation)
	}
	return nil
}
