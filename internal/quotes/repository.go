package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvenwooddev-web/designquote/internal/platform/db"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quote, error)
	List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error)
	Create(ctx context.Context, quote Quote) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	InsertLine(ctx context.Context, line LineItem) (int64, error)
	DeleteLines(ctx context.Context, quoteID int64) error
	Delete(ctx context.Context, id int64) error
	UpdateWorkflow(ctx context.Context, quote *Quote) error
	AppendRevision(ctx context.Context, rev Revision) error
	ListRevisions(ctx context.Context, quoteID int64) ([]Revision, error)
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quoteColumns = `id, quote_number, client_id, template_id, status, version, discount_mode,
	overall_discount_percent, tax_rate_percent, subtotal, discount_amount, taxable_amount, tax, grand_total,
	notes, created_by, approved_by, approved_at, rejected_by, rejected_at, created_at, updated_at`

func scanQuote(scan func(...any) error, q *Quote) error {
	return scan(&q.ID, &q.QuoteNumber, &q.ClientID, &q.TemplateID, &q.Status, &q.Version, &q.DiscountMode,
		&q.OverallDiscountPercent, &q.TaxRatePercent, &q.Subtotal, &q.DiscountAmount, &q.TaxableAmount, &q.Tax, &q.GrandTotal,
		&q.Notes, &q.CreatedBy, &q.ApprovedBy, &q.ApprovedAt, &q.RejectedBy, &q.RejectedAt, &q.CreatedAt, &q.UpdatedAt)
}

func (r *repository) Get(ctx context.Context, id int64) (*Quote, error) {
	var q Quote
	row := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	if err := scanQuote(row.Scan, &q); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}

	lines, err := r.getLines(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Lines = lines
	return &q, nil
}

func (r *repository) getLines(ctx context.Context, quoteID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, product_id, name, description, category_id, category_name, unit_code,
		       quantity, rate, discount_percent, line_total, line_order, created_at
		FROM quote_line_items WHERE quote_id = $1 ORDER BY line_order ASC, id ASC`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineItem
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.ID, &l.QuoteID, &l.ProductID, &l.Name, &l.Description, &l.CategoryID,
			&l.CategoryName, &l.UnitCode, &l.Quantity, &l.Rate, &l.DiscountPercent, &l.LineTotal,
			&l.LineOrder, &l.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("q.client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotes q %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT q.id, q.quote_number, q.client_id, q.template_id, q.status, q.version, q.discount_mode,
		       q.overall_discount_percent, q.tax_rate_percent, q.subtotal, q.discount_amount, q.taxable_amount,
		       q.tax, q.grand_total, q.notes, q.created_by, q.approved_by, q.approved_at, q.rejected_by,
		       q.rejected_at, q.created_at, q.updated_at,
		       c.name AS client_name
		FROM quotes q
		JOIN clients c ON q.client_id = c.id
		%s
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []QuoteWithClient
	for rows.Next() {
		var q QuoteWithClient
		if err := rows.Scan(&q.ID, &q.QuoteNumber, &q.ClientID, &q.TemplateID, &q.Status, &q.Version,
			&q.DiscountMode, &q.OverallDiscountPercent, &q.TaxRatePercent, &q.Subtotal, &q.DiscountAmount,
			&q.TaxableAmount, &q.Tax, &q.GrandTotal, &q.Notes, &q.CreatedBy, &q.ApprovedBy, &q.ApprovedAt,
			&q.RejectedBy, &q.RejectedAt, &q.CreatedAt, &q.UpdatedAt, &q.ClientName); err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quote) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotes (quote_number, client_id, template_id, status, version, discount_mode,
			overall_discount_percent, tax_rate_percent, subtotal, discount_amount, taxable_amount, tax, grand_total,
			notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id`,
		q.QuoteNumber, q.ClientID, q.TemplateID, q.Status, q.Version, q.DiscountMode,
		q.OverallDiscountPercent, q.TaxRatePercent, q.Subtotal, q.DiscountAmount, q.TaxableAmount, q.Tax, q.GrandTotal,
		q.Notes, q.CreatedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotes SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	// Only whitelisted columns can be patched.
	for _, col := range []string{
		"template_id", "discount_mode", "overall_discount_percent", "tax_rate_percent",
		"notes", "subtotal", "discount_amount", "taxable_amount", "tax", "grand_total",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) InsertLine(ctx context.Context, line LineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quote_line_items (quote_id, product_id, name, description, category_id, category_name,
			unit_code, quantity, rate, discount_percent, line_total, line_order, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
		RETURNING id`,
		line.QuoteID, line.ProductID, line.Name, line.Description, line.CategoryID, line.CategoryName,
		line.UnitCode, line.Quantity, line.Rate, line.DiscountPercent, line.LineTotal, line.LineOrder,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteLines(ctx context.Context, quoteID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quote_line_items WHERE quote_id = $1`, quoteID)
	return err
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UpdateWorkflow persists the status-machine fields plus the totals snapshot
// frozen at transition time.
func (r *repository) UpdateWorkflow(ctx context.Context, q *Quote) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotes SET status = $1, version = $2, approved_by = $3, approved_at = $4,
			rejected_by = $5, rejected_at = $6,
			subtotal = $7, discount_amount = $8, taxable_amount = $9, tax = $10, grand_total = $11,
			updated_at = NOW()
		WHERE id = $12`,
		q.Status, q.Version, q.ApprovedBy, q.ApprovedAt, q.RejectedBy, q.RejectedAt,
		q.Subtotal, q.DiscountAmount, q.TaxableAmount, q.Tax, q.GrandTotal, q.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) AppendRevision(ctx context.Context, rev Revision) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quote_revisions (id, quote_id, version, status, changed_by, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rev.ID, rev.QuoteID, rev.Version, rev.Status, rev.ChangedBy, rev.Notes, rev.CreatedAt,
	)
	return err
}

func (r *repository) ListRevisions(ctx context.Context, quoteID int64) ([]Revision, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, quote_id, version, status, changed_by, notes, created_at
		FROM quote_revisions WHERE quote_id = $1 ORDER BY created_at ASC, id ASC`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		var rev Revision
		var status string
		if err := rows.Scan(&rev.ID, &rev.QuoteID, &rev.Version, &status, &rev.ChangedBy, &rev.Notes, &rev.CreatedAt); err != nil {
			return nil, err
		}
		rev.Status = workflow.Status(status)
		revisions = append(revisions, rev)
	}
	return revisions, rows.Err()
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	// Q-{YYMM}-{SEQ}
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, "Q", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Q-%s-%04d", date.Format("0601"), seq), nil
}
