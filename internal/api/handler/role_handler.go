package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/identification/identity-service/internal/api/metrics"
	"github.com/identification/identity-service/internal/core/domain"
	"github.com/identification/identity-service/internal/core/ports"
)

type RoleHandler struct {
	identity ports.IdentityService
}

func NewRoleHandler(identity ports.IdentityService) *RoleHandler {
	return &RoleHandler{identity: identity}
}

type createRoleRequest struct {
	Name string `json:"name" form:"name" validate:"required,max=100"`
}

type roleResponse struct {
	Role *domain.Role `json:"role"`
}

type rolesResponse struct {
	Roles []*domain.Role `json:"roles"`
}

// Create registers a new role.
//
// @Summary      Create a role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      400   {object}  errorBody
// @Failure      500   {object}  errorBody
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.identity.CreateRole(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	metrics.RolesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, roleResponse{Role: role})
}

// List returns every role.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200   {object}  rolesResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.identity.ListRoles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rolesResponse{Roles: roles})
}
