package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identification/identity-service/internal/api/middleware"
	"github.com/identification/identity-service/internal/core/domain"
)

// errorBody documents the JSON error envelope for swagger.
type errorBody struct {
	Error string `json:"error"`
}

// currentClaims returns the claims injected by the Auth middleware and fails
// with 401 when the middleware did not run.
func currentClaims(c echo.Context) (*domain.Claims, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.Subject == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return claims, nil
}
