package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/identification/identity-service/internal/api/metrics"
	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

// LoginThrottle abstracts the failed sign-in counter (Redis).
type LoginThrottle interface {
	Locked(ctx context.Context, normalizedUsername string) (bool, error)
	RecordFailure(ctx context.Context, normalizedUsername string) error
	Reset(ctx context.Context, normalizedUsername string) error
}

type AuthHandler struct {
	identity ports.IdentityService
	throttle LoginThrottle
	log      zerolog.Logger
}

// NewAuthHandler builds the sign-in handler. throttle may be nil.
func NewAuthHandler(identity ports.IdentityService, throttle LoginThrottle, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, throttle: throttle, log: log}
}

type signInRequest struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=100"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// SignIn authenticates an account and returns a JWT access token.
//
// @Summary      Sign in
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      429   {object}  errorBody
// @Router       /api/account/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	key := domain.Normalize(req.Username)

	if h.throttle != nil {
		locked, err := h.throttle.Locked(ctx, key)
		if err != nil {
			h.log.Warn().Err(err).Str("username", req.Username).Msg("throttle check failed, continuing")
		} else if locked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many failed sign-in attempts")
		}
	}

	token, err := h.identity.Login(ctx, req.Username, req.Password)
	if err != nil {
		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			h.recordFailure(ctx, key)
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	if h.throttle != nil {
		if err := h.throttle.Reset(ctx, key); err != nil {
			h.log.Warn().Err(err).Str("username", req.Username).Msg("failed to reset throttle")
		}
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) recordFailure(ctx context.Context, key string) {
	if h.throttle == nil {
		return
	}
	if err := h.throttle.RecordFailure(ctx, key); err != nil {
		h.log.Warn().Err(err).Msg("failed to record sign-in failure")
	}
}
