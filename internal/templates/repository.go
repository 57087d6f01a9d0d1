package templates

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvenwooddev-web/designquote/internal/platform/db"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Template, error)
	Get(ctx context.Context, id int64) (Template, error)
	GetDefault(ctx context.Context) (Template, error)
	Create(ctx context.Context, template Template) (Template, error)
	Update(ctx context.Context, id int64, template Template) error
	Delete(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const templateColumns = `id, name, page_size, accent_color, show_logo, logo_url, header_text, footer_text, show_category_breakdown, is_default, created_at, updated_at`

func (r *repository) List(ctx context.Context) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM quote_templates ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := scanTemplate(rows.Scan, &t); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Template, error) {
	var t Template
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM quote_templates WHERE id = $1`, id)
	if err := scanTemplate(row.Scan, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, httpx.ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

func (r *repository) GetDefault(ctx context.Context) (Template, error) {
	var t Template
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM quote_templates WHERE is_default LIMIT 1`)
	if err := scanTemplate(row.Scan, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, httpx.ErrNotFound
		}
		return Template{}, err
	}
	return t, nil
}

func (r *repository) Create(ctx context.Context, template Template) (Template, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO quote_templates (name, page_size, accent_color, show_logo, logo_url, header_text, footer_text, show_category_breakdown, is_default, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		template.Name, template.PageSize, template.AccentColor, template.ShowLogo,
		template.LogoURL, template.HeaderText, template.FooterText, template.ShowCategoryBreakdown,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
	if err != nil {
		return Template{}, err
	}
	return template, nil
}

func (r *repository) Update(ctx context.Context, id int64, template Template) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quote_templates SET name = $1, page_size = $2, accent_color = $3, show_logo = $4,
		        logo_url = $5, header_text = $6, footer_text = $7, show_category_breakdown = $8, updated_at = NOW()
		 WHERE id = $9`,
		template.Name, template.PageSize, template.AccentColor, template.ShowLogo,
		template.LogoURL, template.HeaderText, template.FooterText, template.ShowCategoryBreakdown, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quote_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// SetDefault makes one template the default; at most one row holds the flag.
func (r *repository) SetDefault(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE quote_templates SET is_default = false WHERE is_default`); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `UPDATE quote_templates SET is_default = true, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		return nil
	})
}

func scanTemplate(scan func(...any) error, t *Template) error {
	return scan(&t.ID, &t.Name, &t.PageSize, &t.AccentColor, &t.ShowLogo, &t.LogoURL,
		&t.HeaderText, &t.FooterText, &t.ShowCategoryBreakdown, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
}
