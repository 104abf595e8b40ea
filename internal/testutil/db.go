// Package testutil provides an in-memory store for package tests
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/user-admin/internal/config"
	"github.com/jwalitptl/user-admin/internal/model"
	"github.com/jwalitptl/user-admin/internal/repository/sqlstore"
)

// NewDB opens a private in-memory SQLite database with the schema applied.
// It is closed when the test ends.
func NewDB(t *testing.T) *sqlx.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: sqlstore.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString()),
	}
	ctx := context.Background()

	db, err := sqlstore.NewDB(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db))
	return db
}

// NewStore returns a store over NewDB without metrics
func NewStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	return sqlstore.NewStore(NewDB(t), nil)
}

// Clock returns strictly increasing UTC times one second apart
func Clock(start time.Time) func() time.Time {
	next := start.UTC()
	return func() time.Time {
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// SeedRole inserts a role directly through the store
func SeedRole(t *testing.T, store *sqlstore.Store, id, name string, created time.Time) *model.Role {
	t.Helper()
	role := &model.Role{ID: id, Name: name, CreatedAt: created}
	require.NoError(t, store.Session().CreateRole(context.Background(), role))
	return role
}

// SeedPermission inserts a permission directly through the store
func SeedPermission(t *testing.T, store *sqlstore.Store, id, name string, created time.Time) *model.Permission {
	t.Helper()
	perm := &model.Permission{ID: id, Name: name, CreatedAt: created}
	require.NoError(t, store.Session().CreatePermission(context.Background(), perm))
	return perm
}
