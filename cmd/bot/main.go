package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/ovenline/pizzabot/internal/bot"
	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/config"
	"github.com/ovenline/pizzabot/internal/database"
	"github.com/ovenline/pizzabot/internal/health"
	"github.com/ovenline/pizzabot/internal/logger"
	"github.com/ovenline/pizzabot/internal/order"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	ctx := logger.Background()
	startedAt := time.Now()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database, ""); err != nil {
		return err
	}

	products := catalog.NewRepository(db)
	if err := products.Seed(context.Background()); err != nil {
		return err
	}
	orders := order.NewLedger(db)

	b, err := bot.New(bot.Options{
		Config:  cfg,
		Catalog: products,
		Orders:  orders,
	})
	if err != nil {
		return err
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := health.New(cfg.Health.Port).Run(runCtx); err != nil {
			logger.Warn(ctx, "health", "serve", slog.String("err", err.Error()))
		}
	}()

	logger.Info(ctx, "app", "ready",
		slog.Duration("startup_duration", logger.Took(startedAt)),
	)

	err = b.Run(runCtx)

	logger.Info(ctx, "app", "shutdown")
	return err
}
