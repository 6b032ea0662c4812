package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/labstack/echo/v4"
)

type noteRequest struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	Message string       `json:"message"`
	Note    *models.Note `json:"note"`
}

func (s *Server) handleListNotes(c echo.Context) error {
	notes, err := s.services.Notes.List(c.Request().Context(), currentUser(c).ID)
	if err != nil {
		return toHTTPError(err)
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	return c.JSON(http.StatusOK, notes)
}

func (s *Server) handleCreateNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	note, err := s.services.Notes.Create(c.Request().Context(), currentUser(c).ID, req.Title, req.Content)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, noteResponse{Message: "Task added!", Note: note})
}

func (s *Server) handleUpdateNote(c echo.Context) error {
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	note, err := s.services.Notes.Update(c.Request().Context(), currentUser(c).ID, req.ID, req.Title, req.Content)
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, noteResponse{Message: "Task updated!", Note: note})
}

func (s *Server) handleDeleteNote(c echo.Context) error {
	err := s.services.Notes.Delete(c.Request().Context(), currentUser(c).ID, c.QueryParam("id"))
	if err != nil {
		return noteError(err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task removed!"})
}

// noteError hides whether a note is missing or owned by someone else.
func noteError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return toHTTPError(err)
}
