package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"condo-portal/internal/models"
)

var ErrSubscriptionNotFound = errors.New("push subscription not found")

// PushRepository defines interactions for device push registrations.
type PushRepository interface {
	Upsert(ctx context.Context, sub models.PushSubscription) error
	DeleteByUser(ctx context.Context, userID int) error
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	ListByUserIDs(ctx context.Context, userIDs []int) ([]models.PushSubscription, error)
}

// PushRepo is a sqlx-backed repository.
type PushRepo struct {
	db *sqlx.DB
}

// NewPushRepo constructs PushRepo.
func NewPushRepo(db *sqlx.DB) *PushRepo {
	return &PushRepo{db: db}
}

// Upsert saves a registration, replacing any previous one for the user.
func (r *PushRepo) Upsert(ctx context.Context, sub models.PushSubscription) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, role, block, unit, endpoint, p256dh, auth)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (user_id) DO UPDATE
         SET role = EXCLUDED.role, block = EXCLUDED.block, unit = EXCLUDED.unit,
             endpoint = EXCLUDED.endpoint, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth,
             updated_at = NOW()`,
		sub.UserID, sub.Role, sub.Block, sub.Unit, sub.Endpoint, sub.P256dh, sub.Auth)
	return err
}

// DeleteByUser removes a user's registration.
func (r *PushRepo) DeleteByUser(ctx context.Context, userID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE user_id=$1`, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// DeleteByEndpoint removes registrations the push provider reported gone.
func (r *PushRepo) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint=$1`, endpoint)
	return err
}

// ListByUserIDs returns the registrations held by the given users.
func (r *PushRepo) ListByUserIDs(ctx context.Context, userIDs []int) ([]models.PushSubscription, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	ids := make(pq.Int64Array, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, int64(id))
	}
	var subs []models.PushSubscription
	err := r.db.SelectContext(ctx, &subs,
		`SELECT id, user_id, role, block, unit, endpoint, p256dh, auth, created_at, updated_at
         FROM push_subscriptions
         WHERE user_id = ANY($1)
         ORDER BY user_id`, ids)
	return subs, err
}
