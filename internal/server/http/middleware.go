package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// requireUser is the authorization gate: only requests with a live session
// reach the wrapped handler, and the owner is taken from here alone.
func (s *Server) requireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := s.authenticate(c)
		if err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			return err
		}
		c.Set(userContextKey, user)
		return next(c)
	}
}

// authenticate resolves the session cookie to its user. Any problem with
// the cookie itself is common.ErrorUnauthorized.
func (s *Server) authenticate(c echo.Context) (*models.User, error) {
	sid, err := s.sessionID(c)
	if err != nil {
		return nil, err
	}
	return s.services.Sessions.Validate(c.Request().Context(), sid)
}

func (s *Server) sessionID(c echo.Context) (string, error) {
	cookie, err := c.Cookie(common.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", common.ErrorUnauthorized
	}
	sid, err := s.tokens.GetSessionIDFromToken(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
	}
	return sid, nil
}

func currentUser(c echo.Context) *models.User {
	u, _ := c.Get(userContextKey).(*models.User)
	return u
}
