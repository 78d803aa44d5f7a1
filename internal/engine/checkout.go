package engine

import (
	"context"
	"log/slog"

	"github.com/ovenline/pizzabot/internal/cart"
	"github.com/ovenline/pizzabot/internal/logger"
	"github.com/ovenline/pizzabot/internal/order"
	"github.com/ovenline/pizzabot/internal/session"
)

const (
	promptCheckoutName    = "📝 *Checkout*\n\nStep 1 of 3\n\nEnter your full name:"
	promptCheckoutPhone   = "Step 2 of 3\n\n📞 Enter your phone number:"
	promptCheckoutAddress = "Step 3 of 3\n\n📍 Enter the delivery address:"
)

// startCheckout enters the checkout flow, guarding against an empty cart.
func (e *Engine) startCheckout(ctx context.Context, s *session.Session, ev Event) error {
	if len(e.carts.Lines(ev.UserID)) == 0 {
		return e.notifier.Prompt(ctx, ev.UserID, "Cart is empty!", Choices{})
	}
	s.State = session.StateCheckoutName
	return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutName, Choices{Kind: ChoiceCancel})
}

func (e *Engine) checkoutName(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutName, Choices{})
	}
	s.Checkout.Name = ev.Value
	s.State = session.StateCheckoutPhone
	return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutPhone, Choices{})
}

func (e *Engine) checkoutPhone(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutPhone, Choices{})
	}
	s.Checkout.Phone = ev.Value
	s.State = session.StateCheckoutAddress
	return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutAddress, Choices{})
}

// checkoutAddress consumes the final answer and commits the order. The
// commit (order insert + user aggregate upsert) is a single database
// transaction; the cart is cleared and the session reset only after it
// lands. A persistence failure keeps the session on this step so the user
// may simply resend the address.
func (e *Engine) checkoutAddress(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptCheckoutAddress, Choices{})
	}
	address := ev.Value

	lines := e.carts.Lines(ev.UserID)
	if len(lines) == 0 {
		// Double-submit guard: the cart was emptied since the flow began.
		s.Reset()
		return e.notifier.Prompt(ctx, ev.UserID, "🛒 Your cart is empty!", Choices{Kind: ChoiceMainMenu})
	}

	total := cart.Total(lines)
	items := itemsSummary(lines)

	id, err := e.orders.Commit(ctx, order.NewOrder{
		UserID:   ev.UserID,
		Username: ev.Username,
		Name:     s.Checkout.Name,
		Phone:    s.Checkout.Phone,
		Address:  address,
		Items:    items,
		Total:    total,
	})
	if err != nil {
		logger.Error(ctx, "engine", "checkout.commit",
			slog.Int64("user_id", ev.UserID),
			slog.String("err", err.Error()),
		)
		return e.failPrompt(ctx, ev.UserID, err)
	}

	receipt := receiptText(id, s.Checkout.Name, s.Checkout.Phone, address, items, total)
	alert := adminAlertText(id, s.Checkout.Name, s.Checkout.Phone, address, items, total, ev.UserID)

	e.carts.Clear(ev.UserID)
	s.Reset()

	if err := e.notifier.Receipt(ctx, ev.UserID, receipt); err != nil {
		logger.Warn(ctx, "engine", "checkout.receipt",
			slog.Int64("order_id", id),
			slog.String("err", err.Error()),
		)
	}
	// Best effort: the order is committed whether or not the admin alert
	// goes through.
	if err := e.notifier.NotifyAdmin(ctx, alert); err != nil {
		logger.Warn(ctx, "engine", "checkout.admin_alert",
			slog.Int64("order_id", id),
			slog.String("err", err.Error()),
		)
	}
	return nil
}
