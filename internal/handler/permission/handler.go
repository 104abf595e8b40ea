package permission

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/user-admin/internal/model"
	permissionService "github.com/jwalitptl/user-admin/internal/service/permission"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/httputil"
)

type Handler struct {
	service permissionService.PermissionService
}

func NewHandler(service permissionService.PermissionService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	perms := r.Group("/permissions")
	{
		perms.GET("", h.ListPermissions)
		perms.POST("", h.CreatePermission)
	}
}

func (h *Handler) ListPermissions(c *gin.Context) {
	permissions, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, "Permissions retrieved successfully", permissions)
}

func (h *Handler) CreatePermission(c *gin.Context) {
	var req model.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("Invalid data", nil))
		return
	}

	permission, err := h.service.CreatePermission(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, "Permission created successfully", permission)
}
