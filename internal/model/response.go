package model

// UserResponse is the projection returned for a user; it never carries the password
type UserResponse struct {
	UserID      string              `json:"userId"`
	FirstName   string              `json:"firstName"`
	LastName    string              `json:"lastName"`
	Email       string              `json:"email"`
	Phone       *string             `json:"phone"`
	Role        UserRoleResponse    `json:"role"`
	Username    string              `json:"username"`
	Permissions []UserGrantResponse `json:"permissions"`
	CreatedDate string              `json:"createdDate"`
}

type UserRoleResponse struct {
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
}

type UserGrantResponse struct {
	PermissionID   string `json:"permissionId"`
	PermissionName string `json:"permissionName"`
	IsReadable     bool   `json:"isReadable"`
	IsWritable     bool   `json:"isWritable"`
	IsDeletable    bool   `json:"isDeletable"`
}

type RoleResponse struct {
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
}

type PermissionResponse struct {
	PermissionID   string `json:"permissionId"`
	PermissionName string `json:"permissionName"`
}

// UserPage is one page of the user list
type UserPage struct {
	DataSource []UserResponse `json:"dataSource"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalCount int            `json:"totalCount"`
}

// DeleteResult is returned by a successful user delete
type DeleteResult struct {
	Result  bool   `json:"result"`
	Message string `json:"message"`
}
