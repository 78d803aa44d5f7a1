package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/engine"
)

// notifier delivers engine output over the Telegram API. Prompts inside an
// active dialogue go out synchronously so ordering is preserved; receipts
// and admin alerts are fire-and-forget through the dispatcher.
type notifier struct {
	bot     *tele.Bot
	disp    *Dispatcher
	adminID int64
}

var _ engine.Notifier = (*notifier)(nil)

func newNotifier(bot *tele.Bot, disp *Dispatcher, adminID int64) *notifier {
	return &notifier{bot: bot, disp: disp, adminID: adminID}
}

func (n *notifier) send(userID int64, what interface{}, opts ...interface{}) error {
	_, err := n.bot.Send(&tele.User{ID: userID}, what, opts...)
	return err
}

// Prompt sends a dialogue step with the keyboard matching its choices.
func (n *notifier) Prompt(ctx context.Context, userID int64, text string, choices engine.Choices) error {
	opts := []interface{}{tele.ModeMarkdown}
	if markup := markupFor(choices); markup != nil {
		opts = append(opts, markup)
	}
	return n.send(userID, text, opts...)
}

// CatalogEntry sends a product card, as a photo with caption when the
// product has one.
func (n *notifier) CatalogEntry(ctx context.Context, userID int64, p catalog.Product) error {
	keyboard := productCardKeyboard(p.ID)
	if p.HasPhoto() {
		photo := &tele.Photo{
			File:    tele.File{FileID: p.Photo},
			Caption: engine.ProductCardText(p),
		}
		return n.send(userID, photo, tele.ModeMarkdown, keyboard)
	}
	return n.send(userID, engine.ProductCardText(p), tele.ModeMarkdown, keyboard)
}

// Receipt confirms a committed order. Delivery runs through the dispatcher
// so a slow Telegram API cannot hold the user's session lock; the order is
// already durable at this point.
func (n *notifier) Receipt(ctx context.Context, userID int64, text string) error {
	run := func() error {
		return n.send(userID, text, tele.ModeMarkdown, mainMenu())
	}
	if err := n.disp.Enqueue(ctx, "receipt", run); err != nil {
		// Queue saturated or closing; deliver inline rather than drop.
		return run()
	}
	return nil
}

// NotifyAdmin pushes the new-order alert to the configured admin.
func (n *notifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.adminID == 0 {
		return nil
	}
	run := func() error {
		return n.send(n.adminID, text, tele.ModeMarkdown)
	}
	if err := n.disp.Enqueue(ctx, "admin_alert", run); err != nil {
		return run()
	}
	return nil
}
