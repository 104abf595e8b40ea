package model

import (
	"math"
	"time"
)

// User represents an administered account. Password holds the digest only.
type User struct {
	ID          string    `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Email       string    `db:"email"`
	Phone       *string   `db:"phone"`
	RoleID      string    `db:"role_id"`
	Username    string    `db:"username"`
	Password    string    `db:"password"`
	CreatedDate time.Time `db:"created_date"`

	// Populated by the store when the user is loaded with its relations
	Role        *Role            `db:"-"`
	Permissions []UserPermission `db:"-"`
}

// UserPermission is a grant: one row per (user, permission) pair
type UserPermission struct {
	UserID       string `db:"user_id"`
	PermissionID string `db:"permission_id"`
	IsReadable   bool   `db:"is_readable"`
	IsWritable   bool   `db:"is_writable"`
	IsDeletable  bool   `db:"is_deletable"`

	// Resolved from the permissions table on reads
	PermissionName string `db:"permission_name"`
}

// Sortable user columns
const (
	UserSortFirstName = "first_name"
	UserSortLastName  = "last_name"
	UserSortEmail     = "email"
)

// UserFilters represents user search parameters after defaults are applied
type UserFilters struct {
	Search   string
	SortBy   string // one of the UserSort* columns, empty for default order
	SortDesc bool
	Page     int
	PageSize int
}

// MaxOffset bounds the rows skipped by a list query. It fits a 32-bit
// signed column on every driver and is past any real user count.
const MaxOffset = math.MaxInt32

// Offset returns the number of rows skipped before the requested page,
// saturating at MaxOffset
func (f UserFilters) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	if f.Page-1 > MaxOffset/f.PageSize {
		return MaxOffset
	}
	return (f.Page - 1) * f.PageSize
}
