package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ovenline/pizzabot/internal/logger"
)

// starterMenu is inserted once into an empty catalog so a fresh deployment
// has something to sell.
var starterMenu = []NewProduct{
	{Name: "Margherita", Price: 199, Desc: "Tomato, mozzarella, basil", Category: CategoryPizza},
	{Name: "Pepperoni", Price: 229, Desc: "Tomato, mozzarella, pepperoni", Category: CategoryPizza},
	{Name: "Four Cheese", Price: 249, Desc: "Mozzarella, gouda, parmesan, dorblu", Category: CategoryPizza},
	{Name: "Hawaiian", Price: 219, Desc: "Tomato, mozzarella, ham, pineapple", Category: CategoryPizza},
	{Name: "Cola 0.5L", Price: 45, Desc: "Ice-cold Coca-Cola", Category: CategoryDrinks},
	{Name: "Orange Juice", Price: 55, Desc: "Freshly squeezed juice", Category: CategoryDrinks},
	{Name: "Water 0.5L", Price: 25, Desc: "Still mineral water", Category: CategoryDrinks},
	{Name: "Tiramisu", Price: 89, Desc: "Classic Italian dessert", Category: CategoryDesserts},
	{Name: "Cheesecake", Price: 79, Desc: "Creamy cheesecake with berries", Category: CategoryDesserts},
}

// Seed populates the starter menu when the products table is empty. Running
// it again is a no-op, so repeated startups never duplicate products.
func (r *Repository) Seed(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return fmt.Errorf("catalog seed count: %w", err)
	}
	if count > 0 {
		logger.Debug(ctx, "db.seed", "catalog.skip",
			slog.Int("existing", count),
		)
		return nil
	}

	for _, p := range starterMenu {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO products (name, price, "desc", photo, category) VALUES ($1, $2, $3, $4, $5)`,
			p.Name, p.Price, p.Desc, p.Photo, string(p.Category),
		)
		if err != nil {
			return fmt.Errorf("catalog seed insert %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog seed commit: %w", err)
	}
	logger.Info(ctx, "db.seed", "catalog.seeded",
		slog.Int("products", len(starterMenu)),
	)
	return nil
}
