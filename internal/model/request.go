package model

// CreateUserRequest is the body of both user create and user edit.
// Password is required on create only; the service enforces that.
// Length limits match the column sizes in the schema.
type CreateUserRequest struct {
	ID              string                        `json:"id" validate:"omitempty,max=64"`
	FirstName       string                        `json:"firstName" validate:"notblank,max=100"`
	LastName        string                        `json:"lastName" validate:"notblank,max=100"`
	Email           string                        `json:"email" validate:"required,email,max=255"`
	Phone           string                        `json:"phone" validate:"omitempty,max=50"`
	RoleID          string                        `json:"roleId" validate:"notblank,max=64"`
	Username        string                        `json:"username" validate:"notblank,max=100"`
	Password        string                        `json:"password"`
	UserPermissions []CreateUserPermissionRequest `json:"userPermissions" validate:"required,dive"`
}

// CreateUserPermissionRequest describes one requested grant
type CreateUserPermissionRequest struct {
	PermissionID string `json:"permissionId" validate:"notblank,max=64"`
	IsReadable   bool   `json:"isReadable"`
	IsWritable   bool   `json:"isWritable"`
	IsDeletable  bool   `json:"isDeletable"`
}

type CreateRoleRequest struct {
	RoleName string `json:"roleName" validate:"notblank,max=100"`
}

type CreatePermissionRequest struct {
	PermissionName string `json:"permissionName" validate:"notblank,max=100"`
}

// DataTableRequest carries search, sort and paging for the user list
type DataTableRequest struct {
	OrderBy        string `json:"orderBy"`
	OrderDirection string `json:"orderDirection"`
	PageNumber     int    `json:"pageNumber"`
	PageSize       int    `json:"pageSize"`
	Search         string `json:"search"`
}
