package service

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// XRPCError is the JSON error body shape: a machine-readable error name
// plus a human-readable message.
type XRPCError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Well-known error names.
const (
	ErrNameAuthRequired      = "AuthRequired"
	ErrNameUnauthorized      = "Unauthorized"
	ErrNameInvalidRequest    = "InvalidRequest"
	ErrNameRateLimitExceeded = "RateLimitExceeded"
	ErrNameFutureCursor      = "FutureCursor"
	ErrNameInternalFailure   = "InternalFailure"
)

func NewXRPCError(code int, name, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, &XRPCError{Error: name, Message: msg})
}

func invalidRequest(format string, args ...any) *echo.HTTPError {
	return NewXRPCError(http.StatusBadRequest, ErrNameInvalidRequest, fmt.Sprintf(format, args...))
}

// errorHandler maps handler errors to XRPC-shaped JSON responses. Detail
// for unexpected errors stays in the server logs.
func (s *Service) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		// websocket connections and half-written responses
		return
	}

	switch err := err.(type) {
	case *echo.HTTPError:
		body, ok := err.Message.(*XRPCError)
		if !ok {
			name := ErrNameInvalidRequest
			if err.Code >= 500 {
				name = ErrNameInternalFailure
			}
			body = &XRPCError{Error: name, Message: fmt.Sprint(err.Message)}
		}
		if err2 := c.JSON(err.Code, body); err2 != nil {
			s.log.Error("failed to write http error", "err", err2)
		}
	default:
		s.log.Warn("handler error", "path", c.Path(), "err", err)
		if err2 := c.JSON(http.StatusInternalServerError, &XRPCError{
			Error:   ErrNameInternalFailure,
			Message: "internal error",
		}); err2 != nil {
			s.log.Error("failed to write http error", "err", err2)
		}
	}
}
