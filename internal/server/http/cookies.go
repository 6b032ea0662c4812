package http

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/models"
	"github.com/labstack/echo/v4"
)

const oauthStatePath = "/auth/google"

type cookiePolicy struct {
	secure   bool
	sameSite http.SameSite
	maxAge   int
}

// newCookiePolicy follows the deployment: cross-site frontends in
// production need SameSite=None, which browsers only accept with Secure.
func newCookiePolicy(cfg *config.Config, ttl time.Duration) cookiePolicy {
	p := cookiePolicy{
		secure:   cfg.Production,
		sameSite: http.SameSiteLaxMode,
		maxAge:   int(ttl / time.Second),
	}
	if cfg.Production && cfg.FrontendURL != "" {
		p.sameSite = http.SameSiteNoneMode
	}
	return p
}

func (s *Server) setSessionCookie(c echo.Context, session *models.Session) error {
	token, err := s.tokens.GenerateToken(session.ID, session.ExpiresAt)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cookies.maxAge,
		HttpOnly: true,
		Secure:   s.cookies.secure,
		SameSite: s.cookies.sameSite,
	})
	return nil
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookies.secure,
		SameSite: s.cookies.sameSite,
	})
}

// The state cookie rides a top-level redirect back from the provider, so
// Lax is enough in every deployment.
func (s *Server) setStateCookie(c echo.Context, state string) {
	c.SetCookie(&http.Cookie{
		Name:     common.OAuthStateCookieName,
		Value:    state,
		Path:     oauthStatePath,
		MaxAge:   int(common.OAuthStateTTL / time.Second),
		HttpOnly: true,
		Secure:   s.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearStateCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     common.OAuthStateCookieName,
		Value:    "",
		Path:     oauthStatePath,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.cookies.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
