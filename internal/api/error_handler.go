package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes and renders {"error": "<message>"}. Unexpected
// errors are logged and reported as a generic 500.
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
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthenticationError
		notFoundErr   *domain.NotFoundError
		operationErr  *domain.OperationError
		configErr     *domain.ConfigurationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, authErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, notFoundErr.Error()
	case errors.As(err, &operationErr):
		log.Error().
			Err(errors.Unwrap(operationErr)).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("operation failed")
		return http.StatusInternalServerError, operationErr.Error()
	case errors.As(err, &configErr):
		log.Error().
			Err(err).
			Str("setting", configErr.Setting).
			Str("path", c.Path()).
			Msg("service misconfigured")
		return http.StatusInternalServerError, "internal server error"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
