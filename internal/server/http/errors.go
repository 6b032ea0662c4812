package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/todolist/internal/common"
	"github.com/labstack/echo/v4"
)

const msgInternal = "Internal server error"

type messageResponse struct {
	Message string `json:"message"`
}

// toHTTPError maps service errors onto status codes. 5xx responses carry a
// generic message and keep the cause as the internal error for logging.
func toHTTPError(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return echo.NewHTTPError(http.StatusBadRequest, clientMessage(err, common.ErrorValidation))
	case errors.Is(err, common.ErrorAlreadyRegistered):
		return echo.NewHTTPError(http.StatusBadRequest, "Already registered. Please log-in")
	case errors.Is(err, common.ErrorUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, common.ErrorInvalidCredential):
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorUpstream):
		return echo.NewHTTPError(http.StatusBadGateway, "Upstream provider error").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, msgInternal).SetInternal(err)
	}
}

// clientMessage strips the sentinel prefix so "validation error: invalid
// email address" reads as "invalid email address".
func clientMessage(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := toHTTPError(err)
	msg, ok := he.Message.(string)
	if !ok || he.Internal != nil {
		msg = http.StatusText(he.Code)
		if he.Code == http.StatusInternalServerError {
			msg = msgInternal
		}
	}

	if he.Code >= http.StatusInternalServerError {
		cause := he.Internal
		if cause == nil {
			cause = err
		}
		s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "status", he.Code, "error", cause)
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, messageResponse{Message: msg})
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "error response failed", "error", werr)
	}
}
