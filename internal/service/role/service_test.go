package role

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/testutil"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

func newService(t *testing.T) (*Service, *testutil.RecordingPublisher) {
	t.Helper()
	pub := &testutil.RecordingPublisher{}
	svc := NewService(testutil.NewStore(t), validator.New(),
		WithPublisher(pub),
		WithClock(testutil.Clock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))),
	)
	return svc, pub
}

func TestCreateAndListRoles(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Viewer", "Admin", "admin"} {
		created, err := svc.CreateRole(ctx, model.CreateRoleRequest{RoleName: name})
		require.NoError(t, err)
		assert.Equal(t, name, created.RoleName)
		_, err = uuid.Parse(created.RoleID)
		assert.NoError(t, err)
	}

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.RoleName)
	}
	assert.Equal(t, []string{"Viewer", "Admin", "admin"}, names, "creation order")
	assert.Len(t, pub.Events(), 3)
	assert.Equal(t, messaging.EventRoleCreated, pub.Events()[0].Type)
}

func TestCreateDuplicateRole(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, model.CreateRoleRequest{RoleName: "Admin"})
	require.NoError(t, err)

	_, err = svc.CreateRole(ctx, model.CreateRoleRequest{RoleName: "Admin"})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Equal(t, MsgRoleNameExists, appErr.Message)

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
	assert.Len(t, pub.Events(), 1)
}

func TestCreateRoleValidation(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.CreateRole(context.Background(), model.CreateRoleRequest{RoleName: "  "})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, []validator.FieldError{{Field: "roleName", Message: "Field must not be blank"}}, appErr.Details)
}

func TestCreateRoleNameTooLong(t *testing.T) {
	svc, pub := newService(t)
	ctx := context.Background()

	_, err := svc.CreateRole(ctx, model.CreateRoleRequest{RoleName: strings.Repeat("r", 101)})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, []validator.FieldError{{Field: "roleName", Message: "Value is too long"}}, appErr.Details)

	_, err = svc.CreateRole(ctx, model.CreateRoleRequest{RoleName: strings.Repeat("r", 100)})
	require.NoError(t, err)
	assert.Len(t, pub.Events(), 1)
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(testutil.NewStore(t), validator.New(), WithPublisher(nil))

	created, err := svc.CreateRole(context.Background(), model.CreateRoleRequest{RoleName: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", created.RoleName)
}

func TestListRolesEmpty(t *testing.T) {
	svc, _ := newService(t)

	roles, err := svc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, roles)
	assert.Empty(t, roles)
}
