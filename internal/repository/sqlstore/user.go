package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository"
)

const userColumns = `u.id, u.first_name, u.last_name, u.email, u.phone, u.role_id,
	u.username, u.password, u.created_date, r.role_name`

// userRow is a user joined with its role name
type userRow struct {
	model.User
	RoleName sql.NullString `db:"role_name"`
}

func (r userRow) toUser() *model.User {
	u := r.User
	if r.RoleName.Valid {
		u.Role = &model.Role{ID: u.RoleID, Name: r.RoleName.String}
	}
	return &u
}

func (s *session) CreateUser(ctx context.Context, user *model.User) (err error) {
	defer s.observe("create_user", time.Now(), &err)

	query := `
		INSERT INTO users (
			id, first_name, last_name, email, phone,
			role_id, username, password, created_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.q.ExecContext(ctx, s.q.Rebind(query),
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.RoleID,
		user.Username,
		user.Password,
		user.CreatedDate,
	)
	if err != nil {
		if isDuplicate(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *session) GetUser(ctx context.Context, id string) (_ *model.User, err error) {
	defer s.observe("get_user", time.Now(), &err)

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN roles r ON r.role_id = u.role_id
		WHERE u.id = ?
	`

	var row userRow
	if err := sqlx.GetContext(ctx, s.q, &row, s.q.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user := row.toUser()
	grants, err := s.ListGrants(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Permissions = grants

	return user, nil
}

func (s *session) UserExists(ctx context.Context, id string) (_ bool, err error) {
	defer s.observe("user_exists", time.Now(), &err)

	n, err := s.count(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

func (s *session) FindUserIDByUsername(ctx context.Context, username string) (_ string, err error) {
	defer s.observe("find_user_by_username", time.Now(), &err)

	var id string
	err = sqlx.GetContext(ctx, s.q, &id, s.q.Rebind(`SELECT id FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to find user by username: %w", err)
	}
	return id, nil
}

// UpdateUser overwrites every mutable column; created_date is never touched
func (s *session) UpdateUser(ctx context.Context, user *model.User) (err error) {
	defer s.observe("update_user", time.Now(), &err)

	query := `
		UPDATE users SET
			first_name = ?,
			last_name = ?,
			email = ?,
			phone = ?,
			role_id = ?,
			username = ?,
			password = ?
		WHERE id = ?
	`

	err = s.execAffecting(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Phone,
		user.RoleID,
		user.Username,
		user.Password,
		user.ID,
	)
	if err != nil && !errors.Is(err, repository.ErrNotFound) && !errors.Is(err, repository.ErrDuplicate) {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return err
}

func (s *session) DeleteUser(ctx context.Context, id string) (err error) {
	defer s.observe("delete_user", time.Now(), &err)

	err = s.execAffecting(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return err
}

func (s *session) CountUsers(ctx context.Context) (_ int, err error) {
	defer s.observe("count_users", time.Now(), &err)

	n, err := s.count(ctx, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

var userSortColumns = map[string]string{
	model.UserSortFirstName: "u.first_name",
	model.UserSortLastName:  "u.last_name",
	model.UserSortEmail:     "u.email",
}

func (s *session) ListUsers(ctx context.Context, filters model.UserFilters) (_ []*model.User, _ int, err error) {
	defer s.observe("list_users", time.Now(), &err)

	var (
		where string
		args  []interface{}
	)
	if filters.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filters.Search)) + "%"
		where = ` WHERE LOWER(u.first_name) LIKE ? ESCAPE '\'
			OR LOWER(u.last_name) LIKE ? ESCAPE '\'
			OR LOWER(u.email) LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	total, err := s.count(ctx, `SELECT COUNT(*) FROM users u`+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	orderBy := "u.created_date ASC, u.id ASC"
	if col, ok := userSortColumns[filters.SortBy]; ok {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}
		orderBy = col + " " + direction + ", u.id ASC"
	}

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN roles r ON r.role_id = u.role_id` + where + `
		ORDER BY ` + orderBy + `
		LIMIT ? OFFSET ?
	`

	var rows []userRow
	pageArgs := append(append([]interface{}{}, args...), filters.PageSize, filters.Offset())
	if err := sqlx.SelectContext(ctx, s.q, &rows, s.q.Rebind(query), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*model.User, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
		ids = append(ids, row.ID)
	}

	grants, err := s.ListGrants(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}
	byUser := make(map[string][]model.UserPermission, len(users))
	for _, g := range grants {
		byUser[g.UserID] = append(byUser[g.UserID], g)
	}
	for _, u := range users {
		u.Permissions = byUser[u.ID]
	}

	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern with ESCAPE '\'
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
