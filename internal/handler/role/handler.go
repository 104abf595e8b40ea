package role

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/user-admin/internal/model"
	roleService "github.com/jwalitptl/user-admin/internal/service/role"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/httputil"
)

type Handler struct {
	service roleService.RoleService
}

func NewHandler(service roleService.RoleService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	roles := r.Group("/roles")
	{
		roles.GET("", h.ListRoles)
		roles.POST("", h.CreateRole)
	}
}

func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.service.ListRoles(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Roles retrieved successfully", roles)
}

func (h *Handler) CreateRole(c *gin.Context) {
	var req model.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("Invalid data", nil))
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Role created successfully", role)
}
