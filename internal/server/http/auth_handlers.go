package http

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/labstack/echo/v4"
)

const oauthStateBytes = 16

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	user, session, err := s.services.Auth.Register(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	if err := s.setSessionCookie(c, session); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Successfully registered!", User: user})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cred := models.PasswordCredential{Email: req.Email, Password: req.Password}
	user, session, err := s.services.Auth.SignIn(c.Request().Context(), s.verifiers.Password, cred)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		case errors.Is(err, common.ErrorInvalidCredential):
			return echo.NewHTTPError(http.StatusUnauthorized, "Incorrect password")
		}
		return toHTTPError(err)
	}
	if err := s.setSessionCookie(c, session); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Login successful", User: user})
}

// handleLogout always clears the cookie, even when the session row could
// not be deleted.
func (s *Server) handleLogout(c echo.Context) error {
	s.clearSessionCookie(c)

	sid, err := s.sessionID(c)
	if err == nil {
		if err := s.services.Sessions.Destroy(c.Request().Context(), sid); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed").SetInternal(err)
		}
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// handleSession reports the signed-in user, or null. It never fails.
func (s *Server) handleSession(c echo.Context) error {
	user, err := s.authenticate(c)
	if err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			s.logger.Warn(c.Request().Context(), "session lookup failed", "error", err)
		}
		user = nil
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

func (s *Server) handleGoogleRedirect(c echo.Context) error {
	if s.oauth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Google sign-in is not configured")
	}

	state, err := common.MakeRandHexString(oauthStateBytes)
	if err != nil {
		return fmt.Errorf("error generating oauth state: %w", err)
	}
	s.setStateCookie(c, state)
	return c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state))
}

// handleGoogleCallback finishes the code flow and sends the browser back to
// the frontend, to /main on success and /login otherwise.
func (s *Server) handleGoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()
	failure := s.frontendURL + "/login"

	if s.oauth == nil {
		return c.Redirect(http.StatusFound, failure)
	}

	if !s.validState(c) {
		s.logger.Warn(ctx, "oauth state mismatch")
		return c.Redirect(http.StatusFound, failure)
	}
	if e := c.QueryParam("error"); e != "" {
		s.logger.Info(ctx, "oauth consent refused", "error", e)
		return c.Redirect(http.StatusFound, failure)
	}

	cred, err := s.oauth.Exchange(ctx, c.QueryParam("code"))
	if err != nil {
		s.logger.Error(ctx, "oauth exchange failed", "error", err)
		return c.Redirect(http.StatusFound, failure)
	}

	_, session, err := s.services.Auth.SignIn(ctx, s.verifiers.OAuth, *cred)
	if err != nil {
		s.logger.Error(ctx, "google sign-in failed", "error", err)
		return c.Redirect(http.StatusFound, failure)
	}
	if err := s.setSessionCookie(c, session); err != nil {
		s.logger.Error(ctx, "session cookie failed", "error", err)
		return c.Redirect(http.StatusFound, failure)
	}
	return c.Redirect(http.StatusFound, s.frontendURL+"/main")
}

// validState compares the callback state with the cookie set on redirect
// and consumes the cookie.
func (s *Server) validState(c echo.Context) bool {
	cookie, err := c.Cookie(common.OAuthStateCookieName)
	s.clearStateCookie(c)
	if err != nil || cookie.Value == "" {
		return false
	}
	state := c.QueryParam("state")
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) == 1
}

func (s *Server) handleInternetIdentity(c echo.Context) error {
	principal := strings.TrimSpace(c.Param("principalID"))
	if principal == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Principal ID is required")
	}

	cred := models.PrincipalCredential{Principal: principal}
	user, session, err := s.services.Auth.SignIn(c.Request().Context(), s.verifiers.Principal, cred)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid principal ID")
		}
		return toHTTPError(err)
	}
	if err := s.setSessionCookie(c, session); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{Message: "Login successful", User: user})
}
