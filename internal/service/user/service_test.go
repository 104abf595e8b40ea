package user

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository/sqlstore"
	"github.com/jwalitptl/user-admin/internal/testutil"
	apperrors "github.com/jwalitptl/user-admin/pkg/errors"
	"github.com/jwalitptl/user-admin/pkg/messaging"
	"github.com/jwalitptl/user-admin/pkg/security"
	"github.com/jwalitptl/user-admin/pkg/validator"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	store     *sqlstore.Store
	hasher    security.PasswordHasher
	publisher *testutil.RecordingPublisher
}

func setup(t *testing.T) fixture {
	t.Helper()
	store := testutil.NewStore(t)
	testutil.SeedRole(t, store, "r1", "Admin", t0)
	testutil.SeedRole(t, store, "r2", "Viewer", t0)
	testutil.SeedPermission(t, store, "p1", "Reports", t0)
	testutil.SeedPermission(t, store, "p2", "Billing", t0)
	testutil.SeedPermission(t, store, "p3", "Export", t0)

	hasher := security.NewSHA256Hasher()
	pub := &testutil.RecordingPublisher{}
	svc := NewService(store, hasher, validator.New(),
		config.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
		WithClock(testutil.Clock(t0)),
		WithPublisher(pub),
	)
	return fixture{svc: svc, store: store, hasher: hasher, publisher: pub}
}

func validRequest(username string) model.CreateUserRequest {
	return model.CreateUserRequest{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     username + "@example.com",
		Phone:     "555-0100",
		RoleID:    "r1",
		Username:  username,
		Password:  "secret",
		UserPermissions: []model.CreateUserPermissionRequest{
			{PermissionID: "p1", IsReadable: true},
			{PermissionID: "p2", IsWritable: true, IsDeletable: true},
		},
	}
}

func assertKind(t *testing.T, err error, kind apperrors.Kind, message string) {
	t.Helper()
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func countUsers(t *testing.T, f fixture) int {
	t.Helper()
	n, err := f.store.Session().CountUsers(context.Background())
	require.NoError(t, err)
	return n
}

func TestCreateThenGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)

	_, err = uuid.Parse(created.UserID)
	require.NoError(t, err, "id is generated when absent")
	assert.Equal(t, "Admin", created.Role.RoleName)
	assert.Equal(t, "2024-06-01T12:00:00", created.CreatedDate)
	assert.Equal(t, []model.UserGrantResponse{
		{PermissionID: "p2", PermissionName: "Billing", IsWritable: true, IsDeletable: true},
		{PermissionID: "p1", PermissionName: "Reports", IsReadable: true},
	}, created.Permissions)

	got, err := f.svc.GetUser(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	stored, err := f.store.Session().GetUser(ctx, created.UserID)
	require.NoError(t, err)
	want, _ := f.hasher.Hash("secret")
	assert.Equal(t, want, stored.Password)

	assert.Equal(t, []string{messaging.EventUserCreated}, f.publisher.Types())
	assert.Equal(t, created.UserID, f.publisher.Events()[0].ID)
}

func TestCreateWithSuppliedID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := validRequest("ann")
	req.ID = "custom-id"
	created, err := f.svc.CreateUser(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "custom-id", created.UserID)

	req = validRequest("bob")
	req.ID = "custom-id"
	_, err = f.svc.CreateUser(ctx, req)
	assertKind(t, err, apperrors.KindConflict, MsgUserIDExists)
	assert.Equal(t, 1, countUsers(t, f))
}

func TestCreateWithEmptyGrants(t *testing.T) {
	f := setup(t)

	req := validRequest("ann")
	req.Phone = ""
	req.UserPermissions = []model.CreateUserPermissionRequest{}
	created, err := f.svc.CreateUser(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, created.Phone)
	assert.NotNil(t, created.Permissions)
	assert.Empty(t, created.Permissions)
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CreateUserRequest)
		field  string
	}{
		{"blank first name", func(r *model.CreateUserRequest) { r.FirstName = " " }, "firstName"},
		{"missing last name", func(r *model.CreateUserRequest) { r.LastName = "" }, "lastName"},
		{"bad email", func(r *model.CreateUserRequest) { r.Email = "nope" }, "email"},
		{"missing role", func(r *model.CreateUserRequest) { r.RoleID = "" }, "roleId"},
		{"missing username", func(r *model.CreateUserRequest) { r.Username = "" }, "username"},
		{"missing password", func(r *model.CreateUserRequest) { r.Password = "" }, "password"},
		{"missing grant list", func(r *model.CreateUserRequest) { r.UserPermissions = nil }, "userPermissions"},
		{"grant without permission", func(r *model.CreateUserRequest) {
			r.UserPermissions = []model.CreateUserPermissionRequest{{IsReadable: true}}
		}, "userPermissions[0].permissionId"},
		{"repeated permission", func(r *model.CreateUserRequest) {
			r.UserPermissions = []model.CreateUserPermissionRequest{{PermissionID: "p1"}, {PermissionID: "p1"}}
		}, "userPermissions[1].permissionId"},
		{"id too long", func(r *model.CreateUserRequest) { r.ID = strings.Repeat("u", 65) }, "id"},
		{"first name too long", func(r *model.CreateUserRequest) { r.FirstName = strings.Repeat("a", 101) }, "firstName"},
		{"last name too long", func(r *model.CreateUserRequest) { r.LastName = strings.Repeat("a", 101) }, "lastName"},
		{"email too long", func(r *model.CreateUserRequest) {
			r.Email = "ann@" + strings.Repeat(strings.Repeat("d", 60)+".", 5) + "com"
		}, "email"},
		{"phone too long", func(r *model.CreateUserRequest) { r.Phone = strings.Repeat("5", 51) }, "phone"},
		{"role id too long", func(r *model.CreateUserRequest) { r.RoleID = strings.Repeat("r", 65) }, "roleId"},
		{"username too long", func(r *model.CreateUserRequest) { r.Username = strings.Repeat("n", 101) }, "username"},
		{"permission id too long", func(r *model.CreateUserRequest) {
			r.UserPermissions = []model.CreateUserPermissionRequest{{PermissionID: strings.Repeat("p", 65)}}
		}, "userPermissions[0].permissionId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			req := validRequest("ann")
			tt.mutate(&req)

			_, err := f.svc.CreateUser(context.Background(), req)
			assertKind(t, err, apperrors.KindValidation, MsgInvalidData)

			appErr, _ := apperrors.As(err)
			details, ok := appErr.Details.([]validator.FieldError)
			require.True(t, ok)
			fields := make([]string, 0, len(details))
			for _, d := range details {
				fields = append(fields, d.Field)
			}
			assert.Contains(t, fields, tt.field)
			assert.Equal(t, 0, countUsers(t, f))
		})
	}
}

func TestCreateDuplicateUsername(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)

	_, err = f.svc.CreateUser(ctx, validRequest("ann"))
	assertKind(t, err, apperrors.KindConflict, MsgUsernameExists)
	assert.Equal(t, 1, countUsers(t, f))
	assert.Equal(t, []string{messaging.EventUserCreated}, f.publisher.Types())
}

func TestCreateInvalidReferences(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	req := validRequest("ann")
	req.RoleID = "missing"
	_, err := f.svc.CreateUser(ctx, req)
	assertKind(t, err, apperrors.KindValidation, MsgInvalidRoleID)

	req = validRequest("ann")
	req.UserPermissions = append(req.UserPermissions, model.CreateUserPermissionRequest{PermissionID: "missing"})
	_, err = f.svc.CreateUser(ctx, req)
	assertKind(t, err, apperrors.KindValidation, MsgInvalidPermissionIDs)

	assert.Equal(t, 0, countUsers(t, f))
}

func TestUpdatePassword(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)
	before, err := f.store.Session().GetUser(ctx, created.UserID)
	require.NoError(t, err)

	req := validRequest("ann")
	req.Password = ""
	req.FirstName = "Annie"
	updated, err := f.svc.UpdateUser(ctx, created.UserID, req)
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.FirstName)
	assert.Equal(t, created.CreatedDate, updated.CreatedDate)

	after, err := f.store.Session().GetUser(ctx, created.UserID)
	require.NoError(t, err)
	assert.Equal(t, before.Password, after.Password, "blank password keeps the hash")

	req.Password = "changed"
	_, err = f.svc.UpdateUser(ctx, created.UserID, req)
	require.NoError(t, err)

	after, err = f.store.Session().GetUser(ctx, created.UserID)
	require.NoError(t, err)
	want, _ := f.hasher.Hash("changed")
	assert.Equal(t, want, after.Password)
}

func TestUpdateReplacesGrants(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)

	req := validRequest("ann")
	req.RoleID = "r2"
	req.UserPermissions = []model.CreateUserPermissionRequest{{PermissionID: "p3", IsDeletable: true}}
	updated, err := f.svc.UpdateUser(ctx, created.UserID, req)
	require.NoError(t, err)

	assert.Equal(t, model.UserRoleResponse{RoleID: "r2", RoleName: "Viewer"}, updated.Role)
	assert.Equal(t, []model.UserGrantResponse{
		{PermissionID: "p3", PermissionName: "Export", IsDeletable: true},
	}, updated.Permissions)

	grants, err := f.store.Session().ListGrants(ctx, created.UserID)
	require.NoError(t, err)
	assert.Len(t, grants, 1)
	assert.Equal(t, []string{messaging.EventUserCreated, messaging.EventUserUpdated}, f.publisher.Types())
}

func TestUpdateErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	ann, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)
	_, err = f.svc.CreateUser(ctx, validRequest("bob"))
	require.NoError(t, err)

	req := validRequest("ann")
	req.ID = "someone-else"
	_, err = f.svc.UpdateUser(ctx, ann.UserID, req)
	assertKind(t, err, apperrors.KindValidation, MsgInvalidUserID)

	req = validRequest("ann")
	req.ID = ann.UserID
	_, err = f.svc.UpdateUser(ctx, ann.UserID, req)
	assert.NoError(t, err, "matching body id is accepted")

	_, err = f.svc.UpdateUser(ctx, "missing", validRequest("zed"))
	assertKind(t, err, apperrors.KindNotFound, "User not found")

	_, err = f.svc.UpdateUser(ctx, ann.UserID, validRequest("bob"))
	assertKind(t, err, apperrors.KindConflict, MsgUsernameExists)

	req = validRequest("ann")
	req.RoleID = "missing"
	_, err = f.svc.UpdateUser(ctx, ann.UserID, req)
	assertKind(t, err, apperrors.KindValidation, MsgInvalidRoleID)

	req = validRequest("ann")
	req.Email = "broken"
	_, err = f.svc.UpdateUser(ctx, ann.UserID, req)
	assertKind(t, err, apperrors.KindValidation, MsgInvalidData)

	got, err := f.svc.GetUser(ctx, ann.UserID)
	require.NoError(t, err)
	assert.Equal(t, "r1", got.Role.RoleID, "failed edits change nothing")
}

func TestDeleteUser(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	created, err := f.svc.CreateUser(ctx, validRequest("ann"))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, created.UserID))

	_, err = f.svc.GetUser(ctx, created.UserID)
	assertKind(t, err, apperrors.KindNotFound, "User not found")

	grants, err := f.store.Session().ListGrants(ctx, created.UserID)
	require.NoError(t, err)
	assert.Empty(t, grants)

	err = f.svc.DeleteUser(ctx, created.UserID)
	assertKind(t, err, apperrors.KindNotFound, "User not found")
	assert.Equal(t, []string{messaging.EventUserCreated, messaging.EventUserDeleted}, f.publisher.Types())
}

func TestListUsersPaging(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 25; i++ {
		req := validRequest(fmt.Sprintf("user%02d", i))
		created, err := f.svc.CreateUser(ctx, req)
		require.NoError(t, err)
		ids = append(ids, created.UserID)
	}

	page, err := f.svc.ListUsers(ctx, model.DataTableRequest{PageNumber: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PageSize)
	require.Len(t, page.DataSource, 10)
	for i, u := range page.DataSource {
		assert.Equal(t, ids[10+i], u.UserID)
	}

	page, err = f.svc.ListUsers(ctx, model.DataTableRequest{Search: "USER07@example"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	require.Len(t, page.DataSource, 1)
	assert.Equal(t, "user07", page.DataSource[0].Username)
	assert.Len(t, page.DataSource[0].Permissions, 2)

	page, err = f.svc.ListUsers(ctx, model.DataTableRequest{OrderBy: "email", OrderDirection: "desc", PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.DataSource, 3)
	assert.Equal(t, "user25", page.DataSource[0].Username)
}

func TestListUsersPageFarPastEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.CreateUser(ctx, validRequest(name))
		require.NoError(t, err)
	}

	page, err := f.svc.ListUsers(ctx, model.DataTableRequest{PageNumber: math.MaxInt, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalCount)
	assert.Empty(t, page.DataSource)
	assert.Equal(t, model.MaxOffset/10+1, page.Page)
}

func TestListUsersUnknownColumnIgnoresDirection(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.CreateUser(ctx, validRequest(name))
		require.NoError(t, err)
	}

	usernames := func(req model.DataTableRequest) []string {
		page, err := f.svc.ListUsers(ctx, req)
		require.NoError(t, err)
		out := make([]string, 0, len(page.DataSource))
		for _, u := range page.DataSource {
			out = append(out, u.Username)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, usernames(model.DataTableRequest{OrderBy: "Bogus"}))
	assert.Equal(t, []string{"a", "b", "c"}, usernames(model.DataTableRequest{OrderBy: "Bogus", OrderDirection: "DESC"}))
	assert.Equal(t, []string{"a", "b", "c"}, usernames(model.DataTableRequest{OrderDirection: "DESC"}))
	assert.Equal(t, []string{"c", "b", "a"}, usernames(model.DataTableRequest{OrderBy: "Email", OrderDirection: "DESC"}))
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := setup(t)
	f.publisher.Err = errors.New("broker down")

	_, err := f.svc.CreateUser(context.Background(), validRequest("ann"))
	assert.NoError(t, err)
	assert.Equal(t, 1, countUsers(t, f))
}

func TestCreateAcceptsMaximumLengths(t *testing.T) {
	f := setup(t)

	req := validRequest("ann")
	req.ID = strings.Repeat("u", 64)
	req.FirstName = strings.Repeat("a", 100)
	req.Phone = strings.Repeat("5", 50)
	req.Username = strings.Repeat("n", 100)
	req.Email = "ann@example.com"

	created, err := f.svc.CreateUser(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.ID, created.UserID)
	assert.Equal(t, req.FirstName, created.FirstName)
}
