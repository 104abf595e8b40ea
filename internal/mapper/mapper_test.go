package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/user-admin/internal/model"
)

func TestNewRoleGeneratesID(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	a := NewRole(model.CreateRoleRequest{RoleName: "Admin"}, now)
	b := NewRole(model.CreateRoleRequest{RoleName: "Admin"}, now)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "Admin", a.Name)
	assert.Equal(t, now, a.CreatedAt)
}

func TestNewPermissionGeneratesID(t *testing.T) {
	p := NewPermission(model.CreatePermissionRequest{PermissionName: "Reports"}, time.Now())

	_, err := uuid.Parse(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reports", p.Name)
}

func TestNewUserAndGrants(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	req := model.CreateUserRequest{
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		RoleID:    "r1",
		Username:  "ann",
		Password:  "plain",
		UserPermissions: []model.CreateUserPermissionRequest{
			{PermissionID: "p1", IsReadable: true},
			{PermissionID: "p2", IsWritable: true, IsDeletable: true},
		},
	}

	u := NewUser(req, "u1", "digest", created)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "digest", u.Password)
	assert.Nil(t, u.Phone, "blank phone is stored as NULL")
	assert.Equal(t, created, u.CreatedDate)

	grants := NewGrants(u.ID, req.UserPermissions)
	assert.Equal(t, []model.UserPermission{
		{UserID: "u1", PermissionID: "p1", IsReadable: true},
		{UserID: "u1", PermissionID: "p2", IsWritable: true, IsDeletable: true},
	}, grants)
}

func TestToUserResponse(t *testing.T) {
	phone := "555-0100"
	u := &model.User{
		ID:          "u1",
		FirstName:   "Ann",
		LastName:    "Lee",
		Email:       "ann@example.com",
		Phone:       &phone,
		RoleID:      "r1",
		Username:    "ann",
		Password:    "digest",
		CreatedDate: time.Date(2024, 1, 2, 3, 4, 5, 999, time.UTC),
		Role:        &model.Role{ID: "r1", Name: "Admin"},
		Permissions: []model.UserPermission{
			{UserID: "u1", PermissionID: "p1", PermissionName: "Reports", IsReadable: true},
		},
	}

	resp := ToUserResponse(u)
	assert.Equal(t, model.UserResponse{
		UserID:    "u1",
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@example.com",
		Phone:     &phone,
		Role:      model.UserRoleResponse{RoleID: "r1", RoleName: "Admin"},
		Username:  "ann",
		Permissions: []model.UserGrantResponse{
			{PermissionID: "p1", PermissionName: "Reports", IsReadable: true},
		},
		CreatedDate: "2024-01-02T03:04:05",
	}, resp)
}

func TestToUserResponseWithoutGrants(t *testing.T) {
	resp := ToUserResponse(&model.User{ID: "u1"})
	assert.NotNil(t, resp.Permissions, "empty grants serialize as []")
	assert.Empty(t, resp.Permissions)
}

func TestToUserFilters(t *testing.T) {
	tests := []struct {
		name string
		req  model.DataTableRequest
		want model.UserFilters
	}{
		{
			name: "defaults",
			req:  model.DataTableRequest{},
			want: model.UserFilters{Page: 1, PageSize: 10},
		},
		{
			name: "negative values clamp",
			req:  model.DataTableRequest{PageNumber: -3, PageSize: -1},
			want: model.UserFilters{Page: 1, PageSize: 10},
		},
		{
			name: "size capped",
			req:  model.DataTableRequest{PageNumber: 2, PageSize: 5000},
			want: model.UserFilters{Page: 2, PageSize: 100},
		},
		{
			name: "known column descending",
			req:  model.DataTableRequest{OrderBy: "LastName", OrderDirection: "DESC", Search: " ann "},
			want: model.UserFilters{Search: "ann", SortBy: model.UserSortLastName, SortDesc: true, Page: 1, PageSize: 10},
		},
		{
			name: "camel case column ascending",
			req:  model.DataTableRequest{OrderBy: "email", OrderDirection: "asc"},
			want: model.UserFilters{SortBy: model.UserSortEmail, Page: 1, PageSize: 10},
		},
		{
			name: "unknown column ignores direction",
			req:  model.DataTableRequest{OrderBy: "Password", OrderDirection: "DESC"},
			want: model.UserFilters{Page: 1, PageSize: 10},
		},
		{
			name: "direction without column ignored",
			req:  model.DataTableRequest{OrderDirection: "DESC"},
			want: model.UserFilters{Page: 1, PageSize: 10},
		},
		{
			name: "huge page clamped",
			req:  model.DataTableRequest{PageNumber: math.MaxInt, PageSize: 10},
			want: model.UserFilters{Page: model.MaxOffset/10 + 1, PageSize: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToUserFilters(tt.req, 10, 100))
		})
	}
}

func TestUserFiltersOffset(t *testing.T) {
	assert.Equal(t, 10, model.UserFilters{Page: 2, PageSize: 10}.Offset())
	assert.Equal(t, 0, model.UserFilters{Page: 0, PageSize: 10}.Offset())
	assert.Equal(t, model.MaxOffset, model.UserFilters{Page: math.MaxInt, PageSize: 10}.Offset())
	assert.Equal(t, model.MaxOffset, model.UserFilters{Page: math.MaxInt, PageSize: 100}.Offset())
}

func TestClampedPageOffsetStaysInRange(t *testing.T) {
	for _, size := range []int{1, 7, 10, 100} {
		f := ToUserFilters(model.DataTableRequest{PageNumber: math.MaxInt, PageSize: size}, 10, 100)
		offset := f.Offset()
		assert.Greater(t, offset, 0, "size %d", size)
		assert.LessOrEqual(t, offset, model.MaxOffset, "size %d", size)
	}
}
