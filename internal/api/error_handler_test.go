package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", domain.NewValidationError("username cannot be empty"), http.StatusBadRequest, "username cannot be empty"},
		{"wrapped validation", fmt.Errorf("create: %w", domain.NewValidationError("roles cannot be empty")), http.StatusBadRequest, "roles cannot be empty"},
		{"authentication", &domain.AuthenticationError{}, http.StatusUnauthorized, "invalid credentials"},
		{"not found", &domain.NotFoundError{}, http.StatusNotFound, "account not found"},
		{"operation", &domain.OperationError{Err: errors.New("connection reset")}, http.StatusInternalServerError, "an error occurred during role creation"},
		{"configuration", &domain.ConfigurationError{Setting: "JWT key"}, http.StatusInternalServerError, "internal server error"},
		{"echo error", echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), http.StatusTooManyRequests, "slow down"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/roles", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tc.wantMsg {
				t.Fatalf("expected %q, got %q", tc.wantMsg, resp.Error)
			}
		})
	}
}

func TestHTTPErrorHandler_DoesNotLeakOperationCause(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/roles", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.OperationError{Err: errors.New("pq: secret table")}, c)

	if body := rec.Body.String(); strings.Contains(body, "secret table") {
		t.Fatalf("backend detail leaked: %s", body)
	}
}
