// Package mapper converts between request/response shapes and persisted
// entities. Every function is pure: no I/O, no shared state.
package mapper

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/user-admin/internal/model"
)

// CreatedDateLayout is the wire format of UserResponse.CreatedDate
const CreatedDateLayout = "2006-01-02T15:04:05"

// NewRole builds a Role with a freshly generated identifier
func NewRole(req model.CreateRoleRequest, now time.Time) *model.Role {
	return &model.Role{
		ID:        uuid.NewString(),
		Name:      req.RoleName,
		CreatedAt: now,
	}
}

// NewPermission builds a Permission with a freshly generated identifier
func NewPermission(req model.CreatePermissionRequest, now time.Time) *model.Permission {
	return &model.Permission{
		ID:        uuid.NewString(),
		Name:      req.PermissionName,
		CreatedAt: now,
	}
}

// NewUser builds a User from req. The caller supplies the identifier, the
// password digest and the creation time.
func NewUser(req model.CreateUserRequest, id, passwordHash string, created time.Time) *model.User {
	u := &model.User{
		ID:          id,
		Password:    passwordHash,
		CreatedDate: created,
	}
	ApplyUser(u, req)
	return u
}

// ApplyUser overwrites the mutable scalar fields of u from req.
// The password and creation date are left alone.
func ApplyUser(u *model.User, req model.CreateUserRequest) {
	u.FirstName = req.FirstName
	u.LastName = req.LastName
	u.Email = req.Email
	u.Phone = optional(req.Phone)
	u.RoleID = req.RoleID
	u.Username = req.Username
}

// NewGrants converts the requested grants into rows owned by userID
func NewGrants(userID string, reqs []model.CreateUserPermissionRequest) []model.UserPermission {
	grants := make([]model.UserPermission, 0, len(reqs))
	for _, r := range reqs {
		grants = append(grants, model.UserPermission{
			UserID:       userID,
			PermissionID: r.PermissionID,
			IsReadable:   r.IsReadable,
			IsWritable:   r.IsWritable,
			IsDeletable:  r.IsDeletable,
		})
	}
	return grants
}

// ToUserResponse projects a user loaded with its role and grants
func ToUserResponse(u *model.User) model.UserResponse {
	resp := model.UserResponse{
		UserID:      u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        model.UserRoleResponse{RoleID: u.RoleID},
		Username:    u.Username,
		Permissions: make([]model.UserGrantResponse, 0, len(u.Permissions)),
		CreatedDate: u.CreatedDate.UTC().Format(CreatedDateLayout),
	}
	if u.Role != nil {
		resp.Role.RoleName = u.Role.Name
	}
	for _, g := range u.Permissions {
		resp.Permissions = append(resp.Permissions, model.UserGrantResponse{
			PermissionID:   g.PermissionID,
			PermissionName: g.PermissionName,
			IsReadable:     g.IsReadable,
			IsWritable:     g.IsWritable,
			IsDeletable:    g.IsDeletable,
		})
	}
	return resp
}

func ToUserResponses(users []*model.User) []model.UserResponse {
	out := make([]model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}

func ToRoleResponse(r *model.Role) model.RoleResponse {
	return model.RoleResponse{RoleID: r.ID, RoleName: r.Name}
}

func ToRoleResponses(roles []*model.Role) []model.RoleResponse {
	out := make([]model.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, ToRoleResponse(r))
	}
	return out
}

func ToPermissionResponse(p *model.Permission) model.PermissionResponse {
	return model.PermissionResponse{PermissionID: p.ID, PermissionName: p.Name}
}

func ToPermissionResponses(perms []*model.Permission) []model.PermissionResponse {
	out := make([]model.PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, ToPermissionResponse(p))
	}
	return out
}

// ToUserFilters normalizes a list request. Non-positive page numbers become 1,
// non-positive sizes become defaultSize and sizes above maxSize are capped.
// An unrecognized order column yields the default order.
func ToUserFilters(req model.DataTableRequest, defaultSize, maxSize int) model.UserFilters {
	f := model.UserFilters{
		Search:   strings.TrimSpace(req.Search),
		SortBy:   sortColumn(req.OrderBy),
		Page:     req.PageNumber,
		PageSize: req.PageSize,
	}
	// direction only applies to a recognised column
	f.SortDesc = f.SortBy != "" && strings.EqualFold(req.OrderDirection, "DESC")
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultSize
	}
	if maxSize > 0 && f.PageSize > maxSize {
		f.PageSize = maxSize
	}
	if f.PageSize > 0 && f.Page > model.MaxOffset/f.PageSize+1 {
		f.Page = model.MaxOffset/f.PageSize + 1
	}
	return f
}

func sortColumn(orderBy string) string {
	switch {
	case strings.EqualFold(orderBy, "FirstName"):
		return model.UserSortFirstName
	case strings.EqualFold(orderBy, "LastName"):
		return model.UserSortLastName
	case strings.EqualFold(orderBy, "Email"):
		return model.UserSortEmail
	default:
		return ""
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
