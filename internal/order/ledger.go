package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/ovenline/pizzabot/internal/logger"
)

// Ledger provides Postgres-backed order persistence.
type Ledger struct {
	db *sqlx.DB
}

// NewLedger wraps the shared database handle.
func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Commit inserts the order and upserts the user aggregate in one
// transaction: either both land or neither does. The aggregate increment is
// performed by the database, so concurrent commits for the same telegram_id
// never lose a count.
func (l *Ledger) Commit(ctx context.Context, o NewOrder) (int64, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("order commit begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO orders (user_id, username, name, phone, address, items, total, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		o.UserID, o.Username, o.Name, o.Phone, o.Address, o.Items, o.Total, StatusNew,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("order commit insert: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (telegram_id, username, first_name, order_count)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET order_count = users.order_count + 1,
		     username    = EXCLUDED.username,
		     first_name  = EXCLUDED.first_name`,
		o.UserID, o.Username, o.Name,
	)
	if err != nil {
		return 0, fmt.Errorf("order commit user upsert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("order commit: %w", err)
	}

	logger.Info(ctx, "service.orders", "order.committed",
		slog.Int64("order_id", id),
		slog.Int64("user_id", o.UserID),
		slog.Int("total", o.Total),
	)
	return id, nil
}

// RecentByUser returns the user's latest orders, newest first.
func (l *Ledger) RecentByUser(ctx context.Context, userID int64, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var orders []Order
	err := l.db.SelectContext(ctx, &orders,
		`SELECT id, user_id, username, name, phone, address, items, total, date, status
		 FROM orders WHERE user_id = $1 ORDER BY id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("order recent %d: %w", userID, err)
	}
	return orders, nil
}

// AggregateStats returns shop-wide counters. Sums over zero orders report 0.
func (l *Ledger) AggregateStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := l.db.GetContext(ctx, &s,
		`SELECT
			(SELECT COUNT(*) FROM orders)                  AS orders,
			(SELECT COALESCE(SUM(total), 0) FROM orders)   AS revenue,
			(SELECT COUNT(*) FROM users)                   AS users,
			(SELECT COUNT(*) FROM products)                AS products`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}
