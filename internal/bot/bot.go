// Package bot is the Telegram transport: it owns the telebot instance,
// keyboards, middleware, and the outbound dispatcher, and feeds normalized
// events into the dialogue engine.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/ovenline/pizzabot/internal/cart"
	"github.com/ovenline/pizzabot/internal/config"
	"github.com/ovenline/pizzabot/internal/engine"
	"github.com/ovenline/pizzabot/internal/logger"
	"github.com/ovenline/pizzabot/internal/session"
)

// Options wires a Bot.
type Options struct {
	Config  *config.Config
	Catalog engine.CatalogStore
	Orders  engine.OrderLedger
}

// Bot runs the Telegram side of the shop.
type Bot struct {
	cfg    *config.Config
	tele   *tele.Bot
	disp   *Dispatcher
	engine *engine.Engine
}

// New builds the bot: telebot instance, dispatcher, notifier, engine,
// middleware, and routes.
func New(opts Options) (*Bot, error) {
	if opts.Config == nil {
		return nil, errors.New("bot: nil config")
	}
	cfg := opts.Config

	poller := buildPoller(cfg)
	settings := tele.Settings{
		Token:  cfg.Telegram.Token,
		Poller: poller,
		Client: buildHTTPClient(),
	}

	buildStart := time.Now()
	tb, err := tele.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("bot: initialization failed: %w", err)
	}

	disp := NewDispatcher(DispatcherOptions{})
	notif := newNotifier(tb, disp, cfg.Telegram.AdminID)

	eng := engine.New(engine.Options{
		Catalog:  opts.Catalog,
		Orders:   opts.Orders,
		Carts:    cart.NewStore(),
		Sessions: session.NewManager(),
		Notifier: notif,
		AdminID:  cfg.Telegram.AdminID,
		Contacts: engine.Contacts{
			Phone:     cfg.Shop.Phone,
			Address:   cfg.Shop.Address,
			Hours:     cfg.Shop.Hours,
			Instagram: cfg.Shop.Instagram,
		},
	})

	b := &Bot{cfg: cfg, tele: tb, disp: disp, engine: eng}

	tb.Use(recoverMiddleware)
	tb.Use(loggerMiddleware)
	if cfg.RateLimit.IntervalMS > 0 {
		tb.Use(rateLimitMiddleware(rateLimitOptions{
			Interval:         time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
			ExcludeCallbacks: cfg.RateLimit.ExcludeCallbacks,
		}))
	}
	b.registerRoutes()

	ctx := logger.Background()
	switch p := poller.(type) {
	case *tele.Webhook:
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "webhook"),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
			slog.Duration("took", logger.Took(buildStart)),
		)
	default:
		logger.Info(ctx, "tg", "mode",
			slog.String("mode", "longpoll"),
			slog.Duration("took", logger.Took(buildStart)),
		)
		if err := deleteWebhook(cfg.Telegram.Token); err != nil {
			logger.Warn(ctx, "tg", "delete_webhook", slog.String("err", err.Error()))
		}
	}

	if err := b.setCommands(); err != nil {
		logger.Warn(ctx, "tg", "set_commands", slog.String("err", err.Error()))
	}

	return b, nil
}

// Run starts update processing and blocks until ctx is done or the poller
// stops on its own.
func (b *Bot) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.tele.Start()
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		b.tele.Stop()
		<-done
		runErr = ctx.Err()
	case <-done:
	}

	b.disp.Close()

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// setCommands publishes the visible command menu. /admin stays hidden.
func (b *Bot) setCommands() error {
	return b.tele.SetCommands([]tele.Command{
		{Text: "start", Description: "Open the menu"},
	})
}

func buildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	timeoutSec := cfg.Telegram.LongPollTimeoutSeconds
	if timeoutSec <= 0 {
		timeoutSec = 10
	}
	return &tele.LongPoller{Timeout: time.Duration(timeoutSec) * time.Second}
}

// deleteWebhook clears any stale webhook registration before long polling.
func deleteWebhook(token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("empty token")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/deleteWebhook", token)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader("drop_pending_updates=false"))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deleteWebhook status: %s", resp.Status)
	}
	return nil
}
