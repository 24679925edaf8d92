package models

import (
	"database/sql"
	"time"
)

// Message kinds.
const (
	MessageKindQuick        = "quick"
	MessageKindConventional = "conventional"
)

// Destination kinds.
const (
	DestUnit        = "unit"
	DestGroup       = "group"
	DestManagerRole = "manager-role"
)

// ManagerRoleSentinel is stored as destination id for manager-role
// messages, where no unit or group is referenced.
const ManagerRoleSentinel = 0

// Destination describes where a message is addressed.
type Destination struct {
	Kind string `json:"kind"`
	ID   int    `json:"id"`
}

// ValidityWindow is the [start, end) interval during which a message is
// visible. Messages past End plus the expiry grace period are purged.
type ValidityWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Message is a bulletin message. Sender is a display name, not a user
// reference, so messages survive account deletion.
type Message struct {
	ID             int            `db:"id" json:"id"`
	Kind           string         `db:"kind" json:"kind"`
	Sender         string         `db:"sender" json:"sender"`
	Subject        sql.NullString `db:"subject" json:"subject,omitempty"`
	Body           string         `db:"body" json:"body"`
	DestKind       string         `db:"dest_kind" json:"dest_kind"`
	DestID         int            `db:"dest_id" json:"dest_id"`
	ValidFrom      time.Time      `db:"valid_from" json:"valid_from"`
	ValidUntil     time.Time      `db:"valid_until" json:"valid_until"`
	TemplateKindID sql.NullInt64  `db:"template_kind_id" json:"template_kind_id,omitempty"`
	TemplateID     sql.NullInt64  `db:"template_id" json:"template_id,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// MessageView is the list representation returned to viewers, with the
// destination resolved to a display name.
type MessageView struct {
	Message
	DestName string `db:"dest_name" json:"dest_name"`
}
