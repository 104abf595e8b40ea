package model

import (
	"time"
)

type Role struct {
	ID        string    `db:"role_id"`
	Name      string    `db:"role_name"`
	CreatedAt time.Time `db:"created_at"`
}

type Permission struct {
	ID        string    `db:"permission_id"`
	Name      string    `db:"permission_name"`
	CreatedAt time.Time `db:"created_at"`
}
