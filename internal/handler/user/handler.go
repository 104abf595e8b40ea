package user

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/user-admin/internal/model"
	userService "github.com/jwalitptl/user-admin/internal/service/user"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/httputil"
)

const (
	msgUserCreated   = "User created successfully"
	msgUserUpdated   = "User updated successfully"
	msgUserRetrieved = "User retrieved successfully"
	msgUserDeleted   = "User deleted successfully"
	msgUsersListed   = "Users retrieved successfully"
)

type Handler struct {
	service userService.UserServicer
}

func NewHandler(service userService.UserServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.POST("/search", h.ListUsers)
		users.POST("/DataTable", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(userService.MsgInvalidData, nil))
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgUserCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(userService.MsgInvalidData, nil))
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgUserUpdated, user)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgUserRetrieved, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgUserDeleted, model.DeleteResult{
		Result:  true,
		Message: msgUserDeleted,
	})
}

// ListUsers accepts an empty body as a request for the first page
func (h *Handler) ListUsers(c *gin.Context) {
	var req model.DataTableRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondWithError(c, apperrors.Validation(userService.MsgInvalidData, nil))
		return
	}

	page, err := h.service.ListUsers(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, msgUsersListed, page)
}
