package permission

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	permissionService "github.com/jwalitptl/user-admin/internal/service/permission"
	"github.com/jwalitptl/user-admin/internal/testutil"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

func TestPermissionEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := permissionService.NewService(testutil.NewStore(t), validator.New())
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))

	send := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/permissions", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":{"code":"200","description":"Permissions retrieved successfully"},"data":[]}`, w.Body.String())

	w = send(http.MethodPost, `{"permissionName":"Reports"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"permissionName":"Reports"`)

	w = send(http.MethodPost, `{"permissionName":"Reports"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PermissionName already exists")

	w = send(http.MethodPost, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
