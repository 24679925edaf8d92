package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"condo-portal/internal/models"
)

var (
	ErrUnitNotFound = errors.New("unit not found")
	// ErrUnitInUse is returned when deletion would orphan a group.
	ErrUnitInUse = errors.New("unit referenced by groups")
)

// UnitRepository defines interactions for units.
type UnitRepository interface {
	GetUnit(ctx context.Context, id int) (models.Unit, error)
	ListUnits(ctx context.Context) ([]models.Unit, error)
	ListUnitsByIDs(ctx context.Context, ids []int) ([]models.Unit, error)
	CreateUnit(ctx context.Context, name string) (models.Unit, error)
	CountUnitsNamed(ctx context.Context, name string) (int, error)
	RenameUnit(ctx context.Context, id int, name string) error
	DeleteUnit(ctx context.Context, id int) error
}

// UnitRepo is a sqlx-backed repository.
type UnitRepo struct {
	db *sqlx.DB
}

// NewUnitRepo constructs UnitRepo.
func NewUnitRepo(db *sqlx.DB) *UnitRepo {
	return &UnitRepo{db: db}
}

// GetUnit retrieves a single unit.
func (r *UnitRepo) GetUnit(ctx context.Context, id int) (models.Unit, error) {
	var unit models.Unit
	err := r.db.GetContext(ctx, &unit, `SELECT id, name, created_at FROM units WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Unit{}, ErrUnitNotFound
	}
	return unit, err
}

// ListUnits returns all units ordered by id.
func (r *UnitRepo) ListUnits(ctx context.Context) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.SelectContext(ctx, &units, `SELECT id, name, created_at FROM units ORDER BY id`)
	return units, err
}

// ListUnitsByIDs returns the units matching the given ids.
func (r *UnitRepo) ListUnitsByIDs(ctx context.Context, ids []int) ([]models.Unit, error) {
	arr := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		arr = append(arr, int64(id))
	}
	var units []models.Unit
	err := r.db.SelectContext(ctx, &units,
		`SELECT id, name, created_at FROM units WHERE id = ANY($1) ORDER BY name`, arr)
	return units, err
}

// CreateUnit stores a unit. Name collisions are allowed; callers warn.
func (r *UnitRepo) CreateUnit(ctx context.Context, name string) (models.Unit, error) {
	var unit models.Unit
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO units (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&unit.ID, &unit.Name, &unit.CreatedAt)
	return unit, err
}

// CountUnitsNamed counts units sharing a display name.
func (r *UnitRepo) CountUnitsNamed(ctx context.Context, name string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM units WHERE name=$1`, name)
	return count, err
}

// RenameUnit updates a unit's display name.
func (r *UnitRepo) RenameUnit(ctx context.Context, id int, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE units SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUnitNotFound
	}
	return nil
}

// DeleteUnit removes a unit unless a group still references it.
func (r *UnitRepo) DeleteUnit(ctx context.Context, id int) error {
	var refs int
	if err := r.db.GetContext(ctx, &refs,
		`SELECT COUNT(*) FROM groups WHERE $1 = ANY(unit_ids)`, id); err != nil {
		return err
	}
	if refs > 0 {
		return ErrUnitInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUnitNotFound
	}
	return nil
}
