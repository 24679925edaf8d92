package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"condo-portal/internal/models"
)

var (
	ErrBlockNotFound    = errors.New("block not found")
	ErrBlockInUse       = errors.New("block referenced by subblocks or groups")
	ErrSubblockNotFound = errors.New("subblock not found")
	ErrSubblockInUse    = errors.New("subblock referenced by groups")
)

// BlockRepository defines interactions for blocks and subblocks.
type BlockRepository interface {
	ListBlocks(ctx context.Context) ([]models.Block, error)
	CreateBlock(ctx context.Context, name string) (models.Block, error)
	RenameBlock(ctx context.Context, id int, name string) error
	DeleteBlock(ctx context.Context, id int) error

	ListSubblocks(ctx context.Context) ([]models.Subblock, error)
	CreateSubblock(ctx context.Context, name string, blockID int) (models.Subblock, error)
	UpdateSubblock(ctx context.Context, id int, name string, blockID int) error
	DeleteSubblock(ctx context.Context, id int) error
}

// BlockRepo is a sqlx-backed repository.
type BlockRepo struct {
	db *sqlx.DB
}

// NewBlockRepo constructs BlockRepo.
func NewBlockRepo(db *sqlx.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

func (r *BlockRepo) ListBlocks(ctx context.Context) ([]models.Block, error) {
	var blocks []models.Block
	err := r.db.SelectContext(ctx, &blocks, `SELECT id, name, created_at FROM blocks ORDER BY id`)
	return blocks, err
}

func (r *BlockRepo) CreateBlock(ctx context.Context, name string) (models.Block, error) {
	var block models.Block
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO blocks (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&block.ID, &block.Name, &block.CreatedAt)
	return block, err
}

func (r *BlockRepo) RenameBlock(ctx context.Context, id int, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE blocks SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// DeleteBlock removes a block unless subblocks or groups still reference it.
func (r *BlockRepo) DeleteBlock(ctx context.Context, id int) error {
	var refs int
	if err := r.db.GetContext(ctx, &refs,
		`SELECT (SELECT COUNT(*) FROM subblocks WHERE block_id=$1) + (SELECT COUNT(*) FROM groups WHERE block_id=$1)`, id); err != nil {
		return err
	}
	if refs > 0 {
		return ErrBlockInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (r *BlockRepo) ListSubblocks(ctx context.Context) ([]models.Subblock, error) {
	var subblocks []models.Subblock
	err := r.db.SelectContext(ctx, &subblocks,
		`SELECT id, name, block_id, created_at FROM subblocks ORDER BY id`)
	return subblocks, err
}

func (r *BlockRepo) CreateSubblock(ctx context.Context, name string, blockID int) (models.Subblock, error) {
	var subblock models.Subblock
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO subblocks (name, block_id) VALUES ($1, $2) RETURNING id, name, block_id, created_at`,
		name, blockID).
		Scan(&subblock.ID, &subblock.Name, &subblock.BlockID, &subblock.CreatedAt)
	return subblock, err
}

func (r *BlockRepo) UpdateSubblock(ctx context.Context, id int, name string, blockID int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subblocks SET name=$1, block_id=$2 WHERE id=$3`, name, blockID, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSubblockNotFound
	}
	return nil
}

// DeleteSubblock removes a subblock unless groups still reference it.
func (r *BlockRepo) DeleteSubblock(ctx context.Context, id int) error {
	var refs int
	if err := r.db.GetContext(ctx, &refs,
		`SELECT COUNT(*) FROM groups WHERE subblock_id=$1`, id); err != nil {
		return err
	}
	if refs > 0 {
		return ErrSubblockInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM subblocks WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrSubblockNotFound
	}
	return nil
}
