package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/identification/identity-service/docs"
	"github.com/identification/identity-service/internal/api/handler"
	"github.com/identification/identity-service/internal/api/middleware"
	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

// Dependencies groups everything the HTTP layer needs. Throttle and the
// health pingers are optional; a nil Registry means the default prometheus
// registry.
type Dependencies struct {
	Identity ports.IdentityService
	Verifier middleware.TokenVerifier
	Throttle handler.LoginThrottle
	Health   map[string]handler.Pinger
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "identity",
		Registerer: registerer(deps.Registry),
	}))

	authHandler := handler.NewAuthHandler(deps.Identity, deps.Throttle, deps.Logger)
	accountHandler := handler.NewAccountHandler(deps.Identity)
	roleHandler := handler.NewRoleHandler(deps.Identity)
	healthHandler := handler.NewHealthHandler(deps.Health)

	authenticated := middleware.Auth(deps.Verifier)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Account routes ---
	account := e.Group("/api/account")
	account.POST("/signin", authHandler.SignIn)
	account.GET("/me", accountHandler.Me, authenticated)
	account.POST("/create", accountHandler.Create, authenticated, adminOnly)
	account.POST("/roles", accountHandler.AssignRoles, authenticated, adminOnly)

	// --- Role routes ---
	roles := e.Group("/api/roles", authenticated, adminOnly)
	roles.POST("", roleHandler.Create)
	roles.GET("", roleHandler.List)

	// --- Health probes and tooling (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}
