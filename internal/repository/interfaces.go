package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/user-admin/internal/model"
)

var (
	// ErrNotFound is returned when a row looked up by key does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	// UserRepository handles user rows and their grants
	UserRepository interface {
		CreateUser(ctx context.Context, user *model.User) error
		// GetUser loads the user together with its role and grants
		GetUser(ctx context.Context, id string) (*model.User, error)
		UserExists(ctx context.Context, id string) (bool, error)
		// FindUserIDByUsername returns "" when no user has the username
		FindUserIDByUsername(ctx context.Context, username string) (string, error)
		UpdateUser(ctx context.Context, user *model.User) error
		DeleteUser(ctx context.Context, id string) error
		// ListUsers returns one page of users with relations and the total match count
		ListUsers(ctx context.Context, filters model.UserFilters) ([]*model.User, int, error)
		CountUsers(ctx context.Context) (int, error)
	}

	// GrantRepository handles UserPermission rows
	GrantRepository interface {
		InsertGrants(ctx context.Context, grants []model.UserPermission) error
		DeleteGrants(ctx context.Context, userID string) error
		ListGrants(ctx context.Context, userIDs ...string) ([]model.UserPermission, error)
	}

	RoleRepository interface {
		CreateRole(ctx context.Context, role *model.Role) error
		GetRole(ctx context.Context, id string) (*model.Role, error)
		RoleNameExists(ctx context.Context, name string) (bool, error)
		ListRoles(ctx context.Context) ([]*model.Role, error)
	}

	PermissionRepository interface {
		CreatePermission(ctx context.Context, permission *model.Permission) error
		PermissionNameExists(ctx context.Context, name string) (bool, error)
		// FindPermissions returns the permissions whose ids are in ids
		FindPermissions(ctx context.Context, ids []string) ([]*model.Permission, error)
		ListPermissions(ctx context.Context) ([]*model.Permission, error)
	}

	// Session is a handle to the store scoped to one operation. Inside
	// Store.WithTx every call runs in the same transaction.
	Session interface {
		UserRepository
		GrantRepository
		RoleRepository
		PermissionRepository
	}

	// Store hands out sessions
	Store interface {
		// Session returns a non-transactional session for reads
		Session() Session
		// WithTx runs fn in one transaction, committing when fn returns nil
		// and rolling back otherwise
		WithTx(ctx context.Context, fn func(Session) error) error
		Ping(ctx context.Context) error
	}
)
