package models

import "time"

// TemplateKind categorizes quick-message templates.
type TemplateKind struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// QuickTemplate is a canned body for quick messages.
type QuickTemplate struct {
	ID        int       `db:"id" json:"id"`
	KindID    int       `db:"kind_id" json:"kind_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
