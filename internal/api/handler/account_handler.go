package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/identification/identity-service/internal/api/metrics"
	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

type AccountHandler struct {
	identity ports.IdentityService
}

func NewAccountHandler(identity ports.IdentityService) *AccountHandler {
	return &AccountHandler{identity: identity}
}

type createAccountRequest struct {
	Username string   `json:"username" form:"username" validate:"required,min=3,max=100"`
	Password string   `json:"password" form:"password" validate:"required,min=6,max=100"`
	Roles    []string `json:"roles"    form:"roles"    validate:"required,min=1,dive,required"`
}

type accountResponse struct {
	Account *domain.Account `json:"user"`
}

type assignRolesRequest struct {
	Username string   `json:"username" validate:"required"`
	Roles    []string `json:"roles"    validate:"required,min=1,dive,required"`
}

type assignRolesResponse struct {
	Assigned bool `json:"assigned"`
}

type meResponse struct {
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create registers a new account with the given roles.
//
// @Summary      Create an account
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      200   {object}  accountResponse
// @Failure      400   {object}  errorBody
// @Failure      401   {object}  errorBody
// @Failure      403   {object}  errorBody
// @Router       /api/account/create [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.identity.CreateAccount(c.Request().Context(), req.Username, req.Password, req.Roles)
	if err != nil {
		if errors.Is(err, domain.ErrOrphanedAccount) {
			metrics.OrphanedAccountsTotal.Inc()
		}
		return err
	}

	metrics.AccountsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, accountResponse{Account: account})
}

// AssignRoles attaches existing roles to an existing account.
//
// @Summary      Assign roles
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      assignRolesRequest  true  "Username and roles"
// @Success      200   {object}  assignRolesResponse
// @Failure      400   {object}  errorBody
// @Failure      404   {object}  errorBody
// @Router       /api/account/roles [post]
func (h *AccountHandler) AssignRoles(c echo.Context) error {
	var req assignRolesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	assigned, err := h.identity.AssignRoles(c.Request().Context(), req.Username, req.Roles)
	if err != nil {
		metrics.RoleAssignmentsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	if assigned {
		metrics.RoleAssignmentsTotal.WithLabelValues("assigned").Inc()
	} else {
		metrics.RoleAssignmentsTotal.WithLabelValues("failed").Inc()
	}
	return c.JSON(http.StatusOK, assignRolesResponse{Assigned: assigned})
}

// Me echoes the caller's token claims.
//
// @Summary      Current identity
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  meResponse
// @Failure      401   {object}  errorBody
// @Router       /api/account/me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	resp := meResponse{Username: claims.Subject, Roles: claims.Roles, TokenID: claims.ID}
	if resp.Roles == nil {
		resp.Roles = []string{}
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return c.JSON(http.StatusOK, resp)
}
