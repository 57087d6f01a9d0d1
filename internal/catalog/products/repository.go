package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elvenwooddev-web/designquote/internal/catalog/shared"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]ProductWithDetails, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetWithDetails(ctx context.Context, id int64) (ProductWithDetails, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]ProductWithDetails, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		where += ` AND (p.name ILIKE $` + strconv.Itoa(argCount) + ` OR p.code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.CategoryID != nil {
		argCount++
		where += ` AND p.category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.IsActive != nil {
		argCount++
		where += ` AND p.is_active = $` + strconv.Itoa(argCount)
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT p.id, p.code, p.name, p.description, p.category_id, p.unit_id,
		       p.rate, p.cost, p.image_url, p.is_active, p.created_at, p.updated_at,
		       c.name AS category_name, u.code AS unit_code
		FROM products p
		JOIN categories c ON p.category_id = c.id
		JOIN units u ON p.unit_id = u.id` + where + ` ORDER BY p.name ASC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []ProductWithDetails
	for rows.Next() {
		var p ProductWithDetails
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.UnitID,
			&p.Rate, &p.Cost, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
			&p.CategoryName, &p.UnitCode,
		); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, description, category_id, unit_id, rate, cost, image_url, is_active, created_at, updated_at
		 FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.UnitID,
		&p.Rate, &p.Cost, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, httpx.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) GetWithDetails(ctx context.Context, id int64) (ProductWithDetails, error) {
	var p ProductWithDetails
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.code, p.name, p.description, p.category_id, p.unit_id,
		       p.rate, p.cost, p.image_url, p.is_active, p.created_at, p.updated_at,
		       c.name AS category_name, u.code AS unit_code
		FROM products p
		JOIN categories c ON p.category_id = c.id
		JOIN units u ON p.unit_id = u.id
		WHERE p.id = $1`, id,
	).Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.CategoryID, &p.UnitID,
		&p.Rate, &p.Cost, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryName, &p.UnitCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductWithDetails{}, httpx.ErrNotFound
		}
		return ProductWithDetails{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (code, name, description, category_id, unit_id, rate, cost, image_url, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		product.Code, product.Name, product.Description, product.CategoryID, product.UnitID,
		product.Rate, product.Cost, product.ImageURL, product.IsActive,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, httpx.ErrDuplicate
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET code = $1, name = $2, description = $3, category_id = $4, unit_id = $5,
		        rate = $6, cost = $7, image_url = $8, is_active = $9, updated_at = NOW()
		 WHERE id = $10`,
		product.Code, product.Name, product.Description, product.CategoryID, product.UnitID,
		product.Rate, product.Cost, product.ImageURL, product.IsActive, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return httpx.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
