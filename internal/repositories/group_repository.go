package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"condo-portal/internal/models"
)

var ErrGroupNotFound = errors.New("group not found")

// UnknownUnitsError rejects a group creation referencing units that do not
// exist. Creation is all-or-nothing.
type UnknownUnitsError struct {
	IDs []int
}

func (e *UnknownUnitsError) Error() string {
	parts := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		parts = append(parts, strconv.Itoa(id))
	}
	return fmt.Sprintf("unknown unit ids: %s", strings.Join(parts, ", "))
}

// GroupRepository defines interactions for unit groups.
type GroupRepository interface {
	CreateGroup(ctx context.Context, blockID, subblockID int, unitIDs []int) (models.Group, error)
	GetGroup(ctx context.Context, id int) (models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	DeleteGroup(ctx context.Context, id int) error
}

// GroupRepo is a sqlx-backed repository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

const groupColumns = `g.id, g.block_id, g.subblock_id, g.unit_ids,
        b.name AS block_name, s.name AS subblock_name, g.created_at`

const groupFrom = ` FROM groups g
        LEFT JOIN blocks b ON g.block_id = b.id
        LEFT JOIN subblocks s ON g.subblock_id = s.id`

// CreateGroup validates that every referenced unit exists before inserting.
func (r *GroupRepo) CreateGroup(ctx context.Context, blockID, subblockID int, unitIDs []int) (models.Group, error) {
	ids := make(pq.Int64Array, 0, len(unitIDs))
	for _, id := range unitIDs {
		ids = append(ids, int64(id))
	}

	var known pq.Int64Array
	if err := r.db.SelectContext(ctx, &known,
		`SELECT id FROM units WHERE id = ANY($1)`, ids); err != nil {
		return models.Group{}, err
	}
	knownSet := make(map[int]struct{}, len(known))
	for _, id := range known {
		knownSet[int(id)] = struct{}{}
	}
	var missing []int
	for _, id := range unitIDs {
		if _, ok := knownSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return models.Group{}, &UnknownUnitsError{IDs: missing}
	}

	var groupID int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO groups (block_id, subblock_id, unit_ids) VALUES ($1, $2, $3) RETURNING id`,
		blockID, subblockID, ids).Scan(&groupID)
	if err != nil {
		return models.Group{}, err
	}
	return r.GetGroup(ctx, groupID)
}

// GetGroup retrieves a group with its classifier names resolved.
func (r *GroupRepo) GetGroup(ctx context.Context, id int) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT `+groupColumns+groupFrom+` WHERE g.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListGroups returns all groups ordered by id.
func (r *GroupRepo) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, `SELECT `+groupColumns+groupFrom+` ORDER BY g.id`)
	return groups, err
}

// DeleteGroup removes a group.
func (r *GroupRepo) DeleteGroup(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrGroupNotFound
	}
	return nil
}
