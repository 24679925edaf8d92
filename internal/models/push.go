package models

import "time"

// PushSubscription is a device registration, one per user. Role, block and
// unit are snapshots taken at subscribe time and may drift from the live
// user record; targeting always goes back to the user table.
type PushSubscription struct {
	ID        int       `db:"id" json:"id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"`
	Block     string    `db:"block" json:"block"`
	Unit      string    `db:"unit" json:"unit"`
	Endpoint  string    `db:"endpoint" json:"endpoint"`
	P256dh    string    `db:"p256dh" json:"p256dh"`
	Auth      string    `db:"auth" json:"auth"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PushPayload is the JSON body delivered to the service worker.
type PushPayload struct {
	Title string          `json:"title"`
	Body  string          `json:"body"`
	Icon  string          `json:"icon,omitempty"`
	Badge string          `json:"badge,omitempty"`
	Data  PushPayloadData `json:"data"`
}

// PushPayloadData carries the deep link and the precomputed badge number a
// receiving device applies without a round-trip.
type PushPayloadData struct {
	URL       string `json:"url"`
	RealBadge int    `json:"realBadge"`
	UserID    int    `json:"userId"`
}
