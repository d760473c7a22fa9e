package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table. The external-id columns are both
// nullable; login flows set exactly one of them.
type User struct {
	ID        string         `db:"id"` // ULID
	GitHubID  sql.NullString `db:"github_id"`
	GoogleID  sql.NullString `db:"google_id"`
	Username  sql.NullString `db:"username"`
	Name      sql.NullString `db:"name"`
	Email     sql.NullString `db:"email"`
	AvatarURL sql.NullString `db:"avatar_url"`
	CreatedAt time.Time      `db:"created_at"`
}
