// Package engine drives the ordering dialogue: it routes normalized inbound
// events either to stateless top-level handlers or to the per-user
// finite-state machines for checkout and admin product management. The
// engine is transport-agnostic; everything user-visible goes out through
// the Notifier interface.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ovenline/pizzabot/internal/cart"
	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/logger"
	"github.com/ovenline/pizzabot/internal/order"
	"github.com/ovenline/pizzabot/internal/session"
)

// CatalogStore is the catalog access the engine needs.
type CatalogStore interface {
	ListByCategory(ctx context.Context, c catalog.Category) ([]catalog.Product, error)
	ByID(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, p catalog.NewProduct) (int64, error)
	Delete(ctx context.Context, id int64) error
	SetPhoto(ctx context.Context, id int64, photo string) error
	Unphotographed(ctx context.Context) ([]catalog.Product, error)
}

// OrderLedger is the order persistence the engine needs.
type OrderLedger interface {
	Commit(ctx context.Context, o order.NewOrder) (int64, error)
	RecentByUser(ctx context.Context, userID int64, limit int) ([]order.Order, error)
	AggregateStats(ctx context.Context) (order.Stats, error)
}

// ChoiceKind selects which choice set the transport should render alongside
// a prompt. Rendering itself (keyboards, markup) is the transport's job.
type ChoiceKind int

const (
	ChoiceNone ChoiceKind = iota
	ChoiceMainMenu
	ChoiceAdminMenu
	ChoiceCancel
	ChoiceSkipPhoto
	ChoiceCategories
	ChoiceAdminCategories
	ChoiceProducts
	ChoiceCart
)

// Choices describes the interaction options accompanying a prompt.
type Choices struct {
	Kind     ChoiceKind
	Products []catalog.Product
}

// Notifier presents prompts and documents to users. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Prompt(ctx context.Context, userID int64, text string, choices Choices) error
	CatalogEntry(ctx context.Context, userID int64, p catalog.Product) error
	Receipt(ctx context.Context, userID int64, text string) error
	NotifyAdmin(ctx context.Context, text string) error
}

// Contacts is the shop contact card shown on request.
type Contacts struct {
	Phone     string
	Address   string
	Hours     string
	Instagram string
}

// Options wires an Engine.
type Options struct {
	Catalog  CatalogStore
	Orders   OrderLedger
	Carts    *cart.Store
	Sessions *session.Manager
	Notifier Notifier
	AdminID  int64
	Contacts Contacts
}

// Engine is the dialogue orchestrator.
type Engine struct {
	catalog  CatalogStore
	orders   OrderLedger
	carts    *cart.Store
	sessions *session.Manager
	notifier Notifier
	adminID  int64
	contacts Contacts
}

// New builds an Engine from its collaborators.
func New(opts Options) *Engine {
	return &Engine{
		catalog:  opts.Catalog,
		orders:   opts.Orders,
		carts:    opts.Carts,
		sessions: opts.Sessions,
		notifier: opts.Notifier,
		adminID:  opts.AdminID,
		contacts: opts.Contacts,
	}
}

// Handle processes one inbound event. All processing for a user runs under
// that user's session lock, so same-user events are strictly serialized
// while different users proceed in parallel.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	return e.sessions.With(ev.UserID, func(s *session.Session) error {
		logger.Debug(ctx, "engine", "event",
			slog.Int64("user_id", ev.UserID),
			slog.String("kind", ev.Kind.String()),
			slog.String("state", string(s.State)),
			slog.String("payload", logger.SanitizeLimit(ev.Value, 128)),
		)
		if s.State != session.StateIdle {
			return e.handleState(ctx, s, ev)
		}
		return e.handleIdle(ctx, s, ev)
	})
}

func (e *Engine) isAdmin(ev Event) bool {
	return e.adminID != 0 && ev.UserID == e.adminID
}

func (e *Engine) handleIdle(ctx context.Context, s *session.Session, ev Event) error {
	switch ev.Kind {
	case KindCommand:
		return e.handleCommand(ctx, s, ev)
	case KindText:
		return e.handleMenuLabel(ctx, s, ev)
	case KindCallback:
		return e.handleCallback(ctx, s, ev)
	case KindImage:
		// A stray photo outside any flow carries no intent.
		return nil
	}
	return nil
}

func (e *Engine) handleCommand(ctx context.Context, s *session.Session, ev Event) error {
	switch ev.Value {
	case CmdStart:
		s.Reset()
		return e.notifier.Prompt(ctx, ev.UserID, greetingText(ev.FirstName), Choices{Kind: ChoiceMainMenu})
	case CmdAdmin:
		if !e.isAdmin(ev) {
			return e.notifier.Prompt(ctx, ev.UserID, "⛔️ You don't have access!", Choices{})
		}
		s.Reset()
		return e.notifier.Prompt(ctx, ev.UserID, "👨‍💼 *Admin panel*\n\nChoose an action:", Choices{Kind: ChoiceAdminMenu})
	}
	logger.Debug(ctx, "engine", "command.unknown",
		slog.Int64("user_id", ev.UserID),
		slog.String("payload", logger.SanitizeLimit(ev.Value, 64)),
	)
	return nil
}

func (e *Engine) handleMenuLabel(ctx context.Context, s *session.Session, ev Event) error {
	switch ev.Value {
	case LabelCatalog:
		return e.notifier.Prompt(ctx, ev.UserID, "Choose a category:", Choices{Kind: ChoiceCategories})
	case LabelCart:
		return e.showCart(ctx, ev)
	case LabelOrders:
		return e.showOrders(ctx, ev)
	case LabelContacts:
		return e.notifier.Prompt(ctx, ev.UserID, contactsText(e.contacts), Choices{})
	case LabelCancel:
		// Cancel outside a flow just restores the main menu.
		return e.notifier.Prompt(ctx, ev.UserID, "❌ Cancelled.", Choices{Kind: ChoiceMainMenu})
	}

	if e.isAdmin(ev) {
		return e.handleAdminLabel(ctx, s, ev)
	}

	// Unknown text, or an admin-only label from a regular user: no state
	// change, no reply.
	return nil
}

func (e *Engine) handleCallback(ctx context.Context, s *session.Session, ev Event) error {
	key, payload := SplitCallback(ev.Value)
	switch key {
	case CallbackCategory:
		c, ok := catalog.ParseCategory(payload)
		if !ok {
			return nil
		}
		products, err := e.catalog.ListByCategory(ctx, c)
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		return e.notifier.Prompt(ctx, ev.UserID, c.Title()+":", Choices{Kind: ChoiceProducts, Products: products})

	case CallbackBackCatalog, CallbackContinueShopping:
		return e.notifier.Prompt(ctx, ev.UserID, "Choose a category:", Choices{Kind: ChoiceCategories})

	case CallbackProduct:
		id, ok := parseID(payload)
		if !ok {
			return nil
		}
		p, err := e.catalog.ByID(ctx, id)
		if errors.Is(err, catalog.ErrNotFound) {
			return e.notifier.Prompt(ctx, ev.UserID, "⚠️ Product not found!", Choices{})
		}
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		return e.notifier.CatalogEntry(ctx, ev.UserID, p)

	case CallbackAdd:
		return e.addToCart(ctx, ev, payload)

	case CallbackClearCart:
		e.carts.Clear(ev.UserID)
		return e.notifier.Prompt(ctx, ev.UserID, "🗑 Cart cleared!", Choices{})

	case CallbackCheckout:
		return e.startCheckout(ctx, s, ev)
	}

	logger.Debug(ctx, "engine", "callback.unknown",
		slog.Int64("user_id", ev.UserID),
		slog.String("cb_key", logger.SanitizeLimit(key, 64)),
	)
	return nil
}

func (e *Engine) addToCart(ctx context.Context, ev Event, payload string) error {
	id, ok := parseID(payload)
	if !ok {
		return nil
	}
	p, err := e.catalog.ByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return e.notifier.Prompt(ctx, ev.UserID, "⚠️ Product not found!", Choices{})
	}
	if err != nil {
		return e.failPrompt(ctx, ev.UserID, err)
	}

	if again := e.carts.Add(ev.UserID, p); again {
		return e.notifier.Prompt(ctx, ev.UserID, "✅ "+p.Name+" added again!", Choices{})
	}
	return e.notifier.Prompt(ctx, ev.UserID, "✅ "+p.Name+" added to cart!", Choices{})
}

func (e *Engine) showCart(ctx context.Context, ev Event) error {
	lines := e.carts.Lines(ev.UserID)
	if len(lines) == 0 {
		return e.notifier.Prompt(ctx, ev.UserID, "🛒 Your cart is empty!", Choices{Kind: ChoiceMainMenu})
	}
	return e.notifier.Prompt(ctx, ev.UserID, cartViewText(lines), Choices{Kind: ChoiceCart})
}

func (e *Engine) showOrders(ctx context.Context, ev Event) error {
	orders, err := e.orders.RecentByUser(ctx, ev.UserID, 5)
	if err != nil {
		return e.failPrompt(ctx, ev.UserID, err)
	}
	if len(orders) == 0 {
		return e.notifier.Prompt(ctx, ev.UserID, "📦 You have no orders yet!", Choices{Kind: ChoiceMainMenu})
	}
	return e.notifier.Prompt(ctx, ev.UserID, ordersListText(orders), Choices{})
}

// handleState dispatches a non-idle event to its state handler. The cancel
// label aborts any flow from any step.
func (e *Engine) handleState(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind == KindText && ev.Value == LabelCancel {
		wasAdmin := s.State.IsAdmin()
		s.Reset()
		if wasAdmin {
			return e.notifier.Prompt(ctx, ev.UserID, "Cancelled.", Choices{Kind: ChoiceAdminMenu})
		}
		return e.notifier.Prompt(ctx, ev.UserID, "❌ Cancelled.", Choices{Kind: ChoiceMainMenu})
	}

	switch s.State {
	case session.StateCheckoutName:
		return e.checkoutName(ctx, s, ev)
	case session.StateCheckoutPhone:
		return e.checkoutPhone(ctx, s, ev)
	case session.StateCheckoutAddress:
		return e.checkoutAddress(ctx, s, ev)
	case session.StateAdminAddCategory:
		return e.adminAddCategory(ctx, s, ev)
	case session.StateAdminAddName:
		return e.adminAddName(ctx, s, ev)
	case session.StateAdminAddPrice:
		return e.adminAddPrice(ctx, s, ev)
	case session.StateAdminAddDesc:
		return e.adminAddDesc(ctx, s, ev)
	case session.StateAdminAddPhoto:
		return e.adminAddPhoto(ctx, s, ev)
	case session.StateAdminDeleteID:
		return e.adminDeleteID(ctx, s, ev)
	case session.StateAdminPhotoID:
		return e.adminPhotoID(ctx, s, ev)
	case session.StateAdminPhotoImage:
		return e.adminPhotoImage(ctx, s, ev)
	}

	// Unreachable with the closed state set; recover to idle anyway.
	logger.Warn(ctx, "engine", "state.unknown",
		slog.Int64("user_id", ev.UserID),
		slog.String("state", string(s.State)),
	)
	s.Reset()
	return nil
}

// failPrompt reports a persistence failure to the user and surfaces the
// error to the caller for logging. Session state is left untouched so the
// user can retry the same step.
func (e *Engine) failPrompt(ctx context.Context, userID int64, err error) error {
	_ = e.notifier.Prompt(ctx, userID, "⚠️ Something went wrong, please try again.", Choices{})
	return err
}

// parseID accepts strictly non-negative decimal digits, mirroring the
// "digits only" contract of the id and price steps.
func parseID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func greetingText(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}
	return "👋 Hi, " + name + "!\n\n" +
		"Welcome to our pizzeria! 🍕\n" +
		"Pick what you are interested in 👇"
}
