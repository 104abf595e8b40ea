package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository"
)

func (s *session) InsertGrants(ctx context.Context, grants []model.UserPermission) (err error) {
	defer s.observe("insert_grants", time.Now(), &err)

	query := s.q.Rebind(`
		INSERT INTO user_permissions (
			user_id, permission_id, is_readable, is_writable, is_deletable
		) VALUES (?, ?, ?, ?, ?)
	`)

	for _, g := range grants {
		_, err := s.q.ExecContext(ctx, query,
			g.UserID,
			g.PermissionID,
			g.IsReadable,
			g.IsWritable,
			g.IsDeletable,
		)
		if err != nil {
			if isDuplicate(err) {
				return repository.ErrDuplicate
			}
			return fmt.Errorf("failed to insert grant: %w", err)
		}
	}
	return nil
}

func (s *session) DeleteGrants(ctx context.Context, userID string) (err error) {
	defer s.observe("delete_grants", time.Now(), &err)

	if _, err := s.q.ExecContext(ctx, s.q.Rebind(`DELETE FROM user_permissions WHERE user_id = ?`), userID); err != nil {
		return fmt.Errorf("failed to delete grants: %w", err)
	}
	return nil
}

// ListGrants returns the grants of the given users with permission names
// resolved, ordered by permission name then id
func (s *session) ListGrants(ctx context.Context, userIDs ...string) (_ []model.UserPermission, err error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	defer s.observe("list_grants", time.Now(), &err)

	query, args, err := sqlx.In(`
		SELECT g.user_id, g.permission_id, g.is_readable, g.is_writable, g.is_deletable,
			p.permission_name
		FROM user_permissions g
		JOIN permissions p ON p.permission_id = g.permission_id
		WHERE g.user_id IN (?)
		ORDER BY p.permission_name, g.permission_id
	`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build grant query: %w", err)
	}

	var grants []model.UserPermission
	if err := sqlx.SelectContext(ctx, s.q, &grants, s.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	return grants, nil
}
