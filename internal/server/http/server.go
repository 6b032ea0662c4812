// Package http exposes the to-do list API over HTTP with echo.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todolist/internal/logging"
	"github.com/dmitrijs2005/todolist/internal/server/auth"
	"github.com/dmitrijs2005/todolist/internal/server/config"
	"github.com/dmitrijs2005/todolist/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

// Services are the business services behind the HTTP handlers.
type Services struct {
	Auth     *services.AuthService
	Sessions *services.SessionService
	Notes    *services.NoteService
}

type Server struct {
	address     string
	frontendURL string
	echo        *echo.Echo
	services    Services
	verifiers   services.Verifiers
	oauth       auth.OAuthProvider
	tokens      *auth.TokenCodec
	cookies     cookiePolicy
	logger      logging.Logger
}

// NewServer builds the echo router. oauth may be nil, in which case the
// Google routes answer 503.
func NewServer(cfg *config.Config, svc Services, verifiers services.Verifiers, oauth auth.OAuthProvider, tokens *auth.TokenCodec, logger logging.Logger) *Server {
	s := &Server{
		address:     cfg.HTTPAddr,
		frontendURL: cfg.FrontendURL,
		echo:        echo.New(),
		services:    svc,
		verifiers:   verifiers,
		oauth:       oauth,
		tokens:      tokens,
		cookies:     newCookiePolicy(cfg, svc.Sessions.TTL()),
		logger:      logger.With("module", "http_server"),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.errorHandler

	s.echo.Use(middleware.Recover())
	s.echo.Use(s.requestLogger())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.FrontendOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo

	e.POST("/register", s.handleRegister)
	e.POST("/login", s.handleLogin)
	e.GET("/logout", s.handleLogout)
	e.GET("/auth/session", s.handleSession)

	e.GET("/auth/google", s.handleGoogleRedirect)
	e.GET("/auth/google/main", s.handleGoogleCallback)

	e.GET("/auth/internet-identity", s.handleInternetIdentity)
	e.GET("/auth/internet-identity/", s.handleInternetIdentity)
	e.GET("/auth/internet-identity/:principalID", s.handleInternetIdentity)

	notes := e.Group("/main", s.requireUser)
	notes.GET("", s.handleListNotes)
	notes.POST("", s.handleCreateNote)
	notes.PUT("", s.handleUpdateNote)
	notes.DELETE("", s.handleDeleteNote)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				s.logger.Error(ctx, "request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency.String(), "error", v.Error)
				return nil
			}
			s.logger.Info(ctx, "request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency.String())
			return nil
		},
	})
}
