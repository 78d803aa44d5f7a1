package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/ovenline/pizzabot/internal/logger"
)

// Repository provides Postgres-backed catalog access.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps the shared database handle.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ListByCategory returns products of one category in insertion order.
func (r *Repository) ListByCategory(ctx context.Context, c Category) ([]Product, error) {
	var products []Product
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, price, "desc", photo, category FROM products WHERE category = $1 ORDER BY id`,
		string(c),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog list %s: %w", c, err)
	}
	return products, nil
}

// ByID returns a single product or ErrNotFound.
func (r *Repository) ByID(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.GetContext(ctx, &p,
		`SELECT id, name, price, "desc", photo, category FROM products WHERE id = $1`,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("catalog get %d: %w", id, err)
	}
	return p, nil
}

// Create inserts a product and returns its generated id.
func (r *Repository) Create(ctx context.Context, p NewProduct) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, "desc", photo, category) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		p.Name, p.Price, p.Desc, p.Photo, string(p.Category),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("catalog create: %w", err)
	}
	logger.Info(ctx, "service.catalog", "product.created",
		slog.Int64("product_id", id),
		slog.String("category", string(p.Category)),
	)
	return id, nil
}

// Delete removes a product. It returns ErrNotFound when the id is absent.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("catalog delete %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog delete %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	logger.Info(ctx, "service.catalog", "product.deleted",
		slog.Int64("product_id", id),
	)
	return nil
}

// SetPhoto attaches a photo reference to an existing product.
func (r *Repository) SetPhoto(ctx context.Context, id int64, photo string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET photo = $1 WHERE id = $2`, photo, id)
	if err != nil {
		return fmt.Errorf("catalog set photo %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("catalog set photo %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Unphotographed lists products that have no photo yet, across all
// categories in insertion order.
func (r *Repository) Unphotographed(ctx context.Context) ([]Product, error) {
	var products []Product
	err := r.db.SelectContext(ctx, &products,
		`SELECT id, name, price, "desc", photo, category FROM products WHERE photo = '' ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("catalog unphotographed: %w", err)
	}
	return products, nil
}
