package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Unit is an addressable residence.
type Unit struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Block is the coarse building classifier groups hang off.
type Block struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subblock is the finer classifier inside a block.
type Subblock struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	BlockID   int       `db:"block_id" json:"block_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Group is a named set of units used as a single message destination.
// Its display name is derived from the block and subblock names.
type Group struct {
	ID           int            `db:"id" json:"id"`
	BlockID      sql.NullInt64  `db:"block_id" json:"block_id,omitempty"`
	SubblockID   sql.NullInt64  `db:"subblock_id" json:"subblock_id,omitempty"`
	UnitIDs      pq.Int64Array  `db:"unit_ids" json:"unit_ids"`
	BlockName    sql.NullString `db:"block_name" json:"block_name,omitempty"`
	SubblockName sql.NullString `db:"subblock_name" json:"subblock_name,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// DisplayName renders the group label shown on message views.
func (g Group) DisplayName() string {
	block := "Block"
	if g.BlockName.Valid {
		block = g.BlockName.String
	}
	subblock := "Section"
	if g.SubblockName.Valid {
		subblock = g.SubblockName.String
	}
	return block + " - " + subblock
}
