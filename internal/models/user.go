package models

import (
	"database/sql"
	"time"
)

// Roles a user account can hold.
const (
	RoleManagerApp = "manager-app"
	RoleManager    = "manager"
	RoleResident   = "resident"
	RoleMessenger  = "messenger"
)

// User is a portal account. UnitID links a resident to a unit; it is null
// for accounts without a residence (manager-app, most messengers).
type User struct {
	ID           int            `db:"id" json:"id"`
	Username     string         `db:"username" json:"username"`
	PasswordHash sql.NullString `db:"password_hash" json:"-"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	Phone        string         `db:"phone" json:"phone"`
	Block        string         `db:"block" json:"block"`
	UnitID       sql.NullInt64  `db:"unit_id" json:"unit_id,omitempty"`
	UnitName     sql.NullString `db:"unit_name" json:"unit_name,omitempty"`
	Role         string         `db:"role" json:"role"`
	Approved     bool           `db:"approved" json:"approved"`
	FirstAccess  bool           `db:"first_access" json:"first_access"`
	ResetToken   sql.NullString `db:"reset_token" json:"-"`
	ResetExpires sql.NullTime   `db:"reset_expires" json:"-"`
	UnreadCount  int            `db:"unread_count" json:"-"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
