package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository"
)

func (s *session) CreateRole(ctx context.Context, role *model.Role) (err error) {
	defer s.observe("create_role", time.Now(), &err)

	query := `INSERT INTO roles (role_id, role_name, created_at) VALUES (?, ?, ?)`
	if _, err := s.q.ExecContext(ctx, s.q.Rebind(query), role.ID, role.Name, role.CreatedAt); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (s *session) GetRole(ctx context.Context, id string) (_ *model.Role, err error) {
	defer s.observe("get_role", time.Now(), &err)

	query := `SELECT role_id, role_name, created_at FROM roles WHERE role_id = ?`

	var role model.Role
	if err := sqlx.GetContext(ctx, s.q, &role, s.q.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get role: %w", err)
	}
	return &role, nil
}

func (s *session) RoleNameExists(ctx context.Context, name string) (_ bool, err error) {
	defer s.observe("role_name_exists", time.Now(), &err)

	n, err := s.count(ctx, `SELECT COUNT(*) FROM roles WHERE role_name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to check role name: %w", err)
	}
	return n > 0, nil
}

func (s *session) ListRoles(ctx context.Context) (_ []*model.Role, err error) {
	defer s.observe("list_roles", time.Now(), &err)

	query := `SELECT role_id, role_name, created_at FROM roles ORDER BY created_at, role_id`

	roles := []*model.Role{}
	if err := sqlx.SelectContext(ctx, s.q, &roles, query); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (s *session) CreatePermission(ctx context.Context, permission *model.Permission) (err error) {
	defer s.observe("create_permission", time.Now(), &err)

	query := `INSERT INTO permissions (permission_id, permission_name, created_at) VALUES (?, ?, ?)`
	if _, err := s.q.ExecContext(ctx, s.q.Rebind(query), permission.ID, permission.Name, permission.CreatedAt); err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create permission: %w", err)
	}
	return nil
}

func (s *session) PermissionNameExists(ctx context.Context, name string) (_ bool, err error) {
	defer s.observe("permission_name_exists", time.Now(), &err)

	n, err := s.count(ctx, `SELECT COUNT(*) FROM permissions WHERE permission_name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to check permission name: %w", err)
	}
	return n > 0, nil
}

func (s *session) FindPermissions(ctx context.Context, ids []string) (_ []*model.Permission, err error) {
	if len(ids) == 0 {
		return []*model.Permission{}, nil
	}
	defer s.observe("find_permissions", time.Now(), &err)

	query, args, err := sqlx.In(`
		SELECT permission_id, permission_name, created_at
		FROM permissions
		WHERE permission_id IN (?)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build permission query: %w", err)
	}

	perms := []*model.Permission{}
	if err := sqlx.SelectContext(ctx, s.q, &perms, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find permissions: %w", err)
	}
	return perms, nil
}

func (s *session) ListPermissions(ctx context.Context) (_ []*model.Permission, err error) {
	defer s.observe("list_permissions", time.Now(), &err)

	query := `SELECT permission_id, permission_name, created_at FROM permissions ORDER BY created_at, permission_id`

	perms := []*model.Permission{}
	if err := sqlx.SelectContext(ctx, s.q, &perms, query); err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	return perms, nil
}
