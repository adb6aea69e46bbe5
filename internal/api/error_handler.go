package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/airiscab/ridefare/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, rate limiting, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound, "Route not found"
	case errors.Is(err, domain.ErrInvalidPhone):
		return http.StatusBadRequest, "Phone number must be in E.164 format (+1XXXXXXXXXX)"
	case errors.Is(err, domain.ErrInvalidPassengerCount),
		errors.Is(err, domain.ErrInvalidTargetPrice):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrRouteUnavailable),
		errors.Is(err, domain.ErrNoEligibleService):
		return http.StatusUnprocessableEntity, unwrapSentinel(err)
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

// unwrapSentinel keeps provider details out of client-facing messages.
func unwrapSentinel(err error) string {
	if errors.Is(err, domain.ErrNoEligibleService) {
		return domain.ErrNoEligibleService.Error()
	}
	return domain.ErrRouteUnavailable.Error()
}
