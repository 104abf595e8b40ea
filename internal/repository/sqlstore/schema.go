package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema runs in order; every statement is idempotent and valid on both
// PostgreSQL and SQLite
var schema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		role_id    VARCHAR(64) PRIMARY KEY,
		role_name  VARCHAR(100) NOT NULL UNIQUE,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS permissions (
		permission_id   VARCHAR(64) PRIMARY KEY,
		permission_name VARCHAR(100) NOT NULL UNIQUE,
		created_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id           VARCHAR(64) PRIMARY KEY,
		first_name   VARCHAR(100) NOT NULL,
		last_name    VARCHAR(100) NOT NULL,
		email        VARCHAR(255) NOT NULL,
		phone        VARCHAR(50),
		role_id      VARCHAR(64) NOT NULL REFERENCES roles (role_id),
		username     VARCHAR(100) NOT NULL UNIQUE,
		password     VARCHAR(255) NOT NULL,
		created_date TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_permissions (
		user_id       VARCHAR(64) NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		permission_id VARCHAR(64) NOT NULL REFERENCES permissions (permission_id),
		is_readable   BOOLEAN NOT NULL DEFAULT FALSE,
		is_writable   BOOLEAN NOT NULL DEFAULT FALSE,
		is_deletable  BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (user_id, permission_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_role_id ON users (role_id)`,
	`CREATE INDEX IF NOT EXISTS idx_users_created_date ON users (created_date)`,
	`CREATE INDEX IF NOT EXISTS idx_user_permissions_permission_id ON user_permissions (permission_id)`,
}

// Migrate creates the tables and indexes that do not exist yet
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
