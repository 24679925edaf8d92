package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"condo-portal/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// ExpiryGrace is how long past its validity end a message stays visible
// before the purge removes it. Tolerates clock skew and lets devices catch
// trailing notifications.
const ExpiryGrace = 3 * time.Hour

const messageColumns = `m.id, m.kind, m.sender, m.subject, m.body, m.dest_kind, m.dest_id,
        m.valid_from, m.valid_until, m.template_kind_id, m.template_id, m.created_at`

// destNameCase resolves the destination display name per destination kind.
const destNameCase = `CASE
            WHEN m.dest_kind = 'unit' THEN un.name
            WHEN m.dest_kind = 'group' THEN CONCAT(b.name, ' - ', s.name)
            WHEN m.dest_kind = 'manager-role' THEN 'Managers'
        END AS dest_name`

const destNameJoins = `
        LEFT JOIN units un ON m.dest_kind = 'unit' AND m.dest_id = un.id
        LEFT JOIN groups g ON m.dest_kind = 'group' AND m.dest_id = g.id
        LEFT JOIN blocks b ON g.block_id = b.id
        LEFT JOIN subblocks s ON g.subblock_id = s.id`

// MessageRepository defines interactions for bulletin messages.
type MessageRepository interface {
	CreateQuickMessage(ctx context.Context, sender, body string, templateKindID, templateID int, dest models.Destination, window models.ValidityWindow) (int, error)
	CreateConventionalMessage(ctx context.Context, sender, subject, body string, dest models.Destination, window models.ValidityWindow) (int, error)
	ListAllActive(ctx context.Context) ([]models.MessageView, error)
	ListActiveForMessenger(ctx context.Context) ([]models.MessageView, error)
	ListActiveForResident(ctx context.Context, unitID int, senderName string) ([]models.MessageView, error)
	DeleteMessage(ctx context.Context, id int) error
	PurgeExpired(ctx context.Context) (int, error)
	CountActive(ctx context.Context) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// storeDestID normalizes manager-role destinations to the sentinel id so
// the stored row round-trips no matter what the caller passed.
func storeDestID(dest models.Destination) int {
	if dest.Kind == models.DestManagerRole {
		return models.ManagerRoleSentinel
	}
	return dest.ID
}

// CreateQuickMessage stores a quick message with its template links.
func (r *MessageRepo) CreateQuickMessage(ctx context.Context, sender, body string, templateKindID, templateID int, dest models.Destination, window models.ValidityWindow) (int, error) {
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (kind, sender, body, dest_kind, dest_id, valid_from, valid_until, template_kind_id, template_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		models.MessageKindQuick, sender, body, dest.Kind, storeDestID(dest), window.Start, window.End,
		templateKindID, templateID).Scan(&id)
	return id, err
}

// CreateConventionalMessage stores a conventional message.
func (r *MessageRepo) CreateConventionalMessage(ctx context.Context, sender, subject, body string, dest models.Destination, window models.ValidityWindow) (int, error) {
	destID := storeDestID(dest)
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (kind, sender, subject, body, dest_kind, dest_id, valid_from, valid_until)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		models.MessageKindConventional, sender, subject, body, dest.Kind, destID,
		window.Start, window.End).Scan(&id)
	return id, err
}

// ListAllActive returns every non-expired message, newest first.
func (r *MessageRepo) ListAllActive(ctx context.Context) ([]models.MessageView, error) {
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+`, `+destNameCase+`
         FROM messages m`+destNameJoins+`
         WHERE m.valid_until > (NOW() - INTERVAL '3 hours')
         ORDER BY m.created_at DESC`)
	return msgs, err
}

// ListActiveForMessenger returns non-expired unit and group messages;
// manager-role traffic is never exposed to messengers.
func (r *MessageRepo) ListActiveForMessenger(ctx context.Context) ([]models.MessageView, error) {
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+`, `+destNameCase+`
         FROM messages m`+destNameJoins+`
         WHERE m.dest_kind IN ('unit', 'group')
         AND m.valid_until > (NOW() - INTERVAL '3 hours')
         ORDER BY m.created_at DESC`)
	return msgs, err
}

// ListActiveForResident returns the union of messages addressed to the
// resident's unit, to any group containing that unit, and the resident's
// own outgoing messages to the manager role.
func (r *MessageRepo) ListActiveForResident(ctx context.Context, unitID int, senderName string) ([]models.MessageView, error) {
	var msgs []models.MessageView
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+`, `+destNameCase+`
         FROM messages m`+destNameJoins+`
         WHERE m.valid_until > (NOW() - INTERVAL '3 hours')
         AND (
                (m.dest_kind = 'unit' AND m.dest_id = $1)
             OR (m.dest_kind = 'group' AND $1 = ANY(g.unit_ids))
             OR (m.dest_kind = 'manager-role' AND m.sender = $2)
         )
         ORDER BY m.created_at DESC`, unitID, senderName)
	return msgs, err
}

// DeleteMessage hard-deletes a message.
func (r *MessageRepo) DeleteMessage(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// PurgeExpired deletes every message past its validity end plus the grace
// period and reports how many were removed.
func (r *MessageRepo) PurgeExpired(ctx context.Context) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM messages WHERE valid_until < (NOW() - INTERVAL '3 hours')`)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}

// CountActive counts every non-expired message, regardless of destination.
func (r *MessageRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE valid_until > (NOW() - INTERVAL '3 hours')`)
	return count, err
}
