package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNoVapidKeys = errors.New("no vapid keys stored")

// VapidRepository persists the process-wide web-push key pair.
type VapidRepository interface {
	Load(ctx context.Context) (publicKey, privateKey string, err error)
	Save(ctx context.Context, publicKey, privateKey string) error
}

// VapidRepo is a sqlx-backed repository.
type VapidRepo struct {
	db *sqlx.DB
}

// NewVapidRepo constructs VapidRepo.
func NewVapidRepo(db *sqlx.DB) *VapidRepo {
	return &VapidRepo{db: db}
}

// Load returns the stored key pair, if any.
func (r *VapidRepo) Load(ctx context.Context) (string, string, error) {
	var row struct {
		PublicKey  string `db:"public_key"`
		PrivateKey string `db:"private_key"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT public_key, private_key FROM vapid_keys LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNoVapidKeys
	}
	if err != nil {
		return "", "", err
	}
	return row.PublicKey, row.PrivateKey, nil
}

// Save persists a freshly generated key pair.
func (r *VapidRepo) Save(ctx context.Context, publicKey, privateKey string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vapid_keys (public_key, private_key) VALUES ($1, $2)`, publicKey, privateKey)
	return err
}
