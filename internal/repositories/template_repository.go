package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"condo-portal/internal/models"
)

var (
	ErrTemplateNotFound     = errors.New("quick template not found")
	ErrTemplateKindNotFound = errors.New("template kind not found")
	ErrTemplateKindInUse    = errors.New("template kind referenced by templates")
)

// TemplateRepository defines interactions for the quick-message catalogue.
type TemplateRepository interface {
	ListKinds(ctx context.Context) ([]models.TemplateKind, error)
	CreateKind(ctx context.Context, name string) (models.TemplateKind, error)
	RenameKind(ctx context.Context, id int, name string) error
	DeleteKind(ctx context.Context, id int) error

	GetTemplate(ctx context.Context, id int) (models.QuickTemplate, error)
	ListTemplates(ctx context.Context) ([]models.QuickTemplate, error)
	CreateTemplate(ctx context.Context, kindID int, body string) (models.QuickTemplate, error)
	UpdateTemplate(ctx context.Context, id, kindID int, body string) error
	DeleteTemplate(ctx context.Context, id int) error
}

// TemplateRepo is a sqlx-backed repository.
type TemplateRepo struct {
	db *sqlx.DB
}

// NewTemplateRepo constructs TemplateRepo.
func NewTemplateRepo(db *sqlx.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

func (r *TemplateRepo) ListKinds(ctx context.Context) ([]models.TemplateKind, error) {
	var kinds []models.TemplateKind
	err := r.db.SelectContext(ctx, &kinds, `SELECT id, name, created_at FROM template_kinds ORDER BY id`)
	return kinds, err
}

func (r *TemplateRepo) CreateKind(ctx context.Context, name string) (models.TemplateKind, error) {
	var kind models.TemplateKind
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO template_kinds (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&kind.ID, &kind.Name, &kind.CreatedAt)
	return kind, err
}

func (r *TemplateRepo) RenameKind(ctx context.Context, id int, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE template_kinds SET name=$1 WHERE id=$2`, name, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateKindNotFound
	}
	return nil
}

// DeleteKind removes a kind unless templates still reference it.
func (r *TemplateRepo) DeleteKind(ctx context.Context, id int) error {
	var refs int
	if err := r.db.GetContext(ctx, &refs,
		`SELECT COUNT(*) FROM quick_templates WHERE kind_id=$1`, id); err != nil {
		return err
	}
	if refs > 0 {
		return ErrTemplateKindInUse
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM template_kinds WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateKindNotFound
	}
	return nil
}

// GetTemplate retrieves a single quick template.
func (r *TemplateRepo) GetTemplate(ctx context.Context, id int) (models.QuickTemplate, error) {
	var tpl models.QuickTemplate
	err := r.db.GetContext(ctx, &tpl,
		`SELECT id, kind_id, body, created_at FROM quick_templates WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.QuickTemplate{}, ErrTemplateNotFound
	}
	return tpl, err
}

func (r *TemplateRepo) ListTemplates(ctx context.Context) ([]models.QuickTemplate, error) {
	var tpls []models.QuickTemplate
	err := r.db.SelectContext(ctx, &tpls,
		`SELECT id, kind_id, body, created_at FROM quick_templates ORDER BY id`)
	return tpls, err
}

func (r *TemplateRepo) CreateTemplate(ctx context.Context, kindID int, body string) (models.QuickTemplate, error) {
	var tpl models.QuickTemplate
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO quick_templates (kind_id, body) VALUES ($1, $2) RETURNING id, kind_id, body, created_at`,
		kindID, body).
		Scan(&tpl.ID, &tpl.KindID, &tpl.Body, &tpl.CreatedAt)
	return tpl, err
}

func (r *TemplateRepo) UpdateTemplate(ctx context.Context, id, kindID int, body string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE quick_templates SET kind_id=$1, body=$2 WHERE id=$3`, kindID, body, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepo) DeleteTemplate(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quick_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
