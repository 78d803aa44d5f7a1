package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/ovenline/pizzabot/internal/cart"
	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/order"
	"github.com/ovenline/pizzabot/internal/session"
)

const (
	adminID    = int64(100)
	customerID = int64(200)
)

// fakeCatalog is an in-memory CatalogStore.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
	nextID   int64
	failAll  bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[int64]catalog.Product), nextID: 1}
}

func (f *fakeCatalog) put(p catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
	f.products[p.ID] = p
}

func (f *fakeCatalog) ListByCategory(_ context.Context, c catalog.Category) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errors.New("catalog down")
	}
	var out []catalog.Product
	for _, p := range f.products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ByID(_ context.Context, id int64) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return catalog.Product{}, errors.New("catalog down")
	}
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Create(_ context.Context, p catalog.NewProduct) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errors.New("catalog down")
	}
	id := f.nextID
	f.nextID++
	f.products[id] = catalog.Product{
		ID: id, Name: p.Name, Price: p.Price, Desc: p.Desc, Photo: p.Photo, Category: p.Category,
	}
	return id, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) SetPhoto(_ context.Context, id int64, photo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalog.ErrNotFound
	}
	p.Photo = photo
	f.products[id] = p
	return nil
}

func (f *fakeCatalog) Unphotographed(_ context.Context) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []catalog.Product
	for _, p := range f.products {
		if !p.HasPhoto() {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeLedger is an in-memory OrderLedger mirroring the atomic commit
// contract: each successful commit also increments the user aggregate.
type fakeLedger struct {
	mu         sync.Mutex
	orders     []order.Order
	orderCount map[int64]int
	failCommit bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{orderCount: make(map[int64]int)}
}

func (f *fakeLedger) Commit(_ context.Context, o order.NewOrder) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCommit {
		return 0, errors.New("db down")
	}
	id := int64(len(f.orders) + 1)
	f.orders = append(f.orders, order.Order{
		ID: id, UserID: o.UserID, Username: o.Username, Name: o.Name,
		Phone: o.Phone, Address: o.Address, Items: o.Items, Total: o.Total,
		Status: order.StatusNew,
	})
	f.orderCount[o.UserID]++
	return id, nil
}

func (f *fakeLedger) RecentByUser(_ context.Context, userID int64, limit int) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []order.Order
	for i := len(f.orders) - 1; i >= 0 && len(out) < limit; i-- {
		if f.orders[i].UserID == userID {
			out = append(out, f.orders[i])
		}
	}
	return out, nil
}

func (f *fakeLedger) AggregateStats(_ context.Context) (order.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	revenue := 0
	for _, o := range f.orders {
		revenue += o.Total
	}
	return order.Stats{Orders: len(f.orders), Revenue: revenue, Users: len(f.orderCount)}, nil
}

type sentPrompt struct {
	userID  int64
	text    string
	choices Choices
}

// recordingNotifier captures everything the engine tries to send.
type recordingNotifier struct {
	mu       sync.Mutex
	prompts  []sentPrompt
	cards    []catalog.Product
	receipts []sentPrompt
	alerts   []string
}

func (n *recordingNotifier) Prompt(_ context.Context, userID int64, text string, choices Choices) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.prompts = append(n.prompts, sentPrompt{userID, text, choices})
	return nil
}

func (n *recordingNotifier) CatalogEntry(_ context.Context, _ int64, p catalog.Product) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cards = append(n.cards, p)
	return nil
}

func (n *recordingNotifier) Receipt(_ context.Context, userID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, sentPrompt{userID: userID, text: text})
	return nil
}

func (n *recordingNotifier) NotifyAdmin(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, text)
	return nil
}

func (n *recordingNotifier) lastPrompt(t *testing.T) sentPrompt {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.prompts) == 0 {
		t.Fatal("no prompts sent")
	}
	return n.prompts[len(n.prompts)-1]
}

type fixture struct {
	engine   *Engine
	catalog  *fakeCatalog
	ledger   *fakeLedger
	notifier *recordingNotifier
	carts    *cart.Store
	sessions *session.Manager
}

func newFixture() *fixture {
	cat := newFakeCatalog()
	led := newFakeLedger()
	not := &recordingNotifier{}
	carts := cart.NewStore()
	sessions := session.NewManager()
	eng := New(Options{
		Catalog:  cat,
		Orders:   led,
		Carts:    carts,
		Sessions: sessions,
		Notifier: not,
		AdminID:  adminID,
		Contacts: Contacts{Phone: "+1 555", Address: "1 Main St", Hours: "10-22", Instagram: "@shop"},
	})
	return &fixture{engine: eng, catalog: cat, ledger: led, notifier: not, carts: carts, sessions: sessions}
}

func (f *fixture) seedProduct(id int64, name string, price int) {
	f.catalog.put(catalog.Product{ID: id, Name: name, Price: price, Category: catalog.CategoryPizza})
}

func (f *fixture) handle(t *testing.T, ev Event) {
	t.Helper()
	if err := f.engine.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle(%+v): %v", ev, err)
	}
}

func cmdEvent(userID int64, value string) Event {
	return Event{UserID: userID, Username: "user", FirstName: "User", Kind: KindCommand, Value: value}
}

func textEvent(userID int64, value string) Event {
	return Event{UserID: userID, Username: "user", FirstName: "User", Kind: KindText, Value: value}
}

func cbEvent(userID int64, key, payload string) Event {
	return Event{UserID: userID, Username: "user", Kind: KindCallback, Value: JoinCallback(key, payload)}
}

func imgEvent(userID int64, fileID string) Event {
	return Event{UserID: userID, Kind: KindImage, Value: fileID}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)

	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))

	if got := f.sessions.State(customerID); got != session.StateCheckoutName {
		t.Fatalf("state after checkout start = %q", got)
	}

	f.handle(t, textEvent(customerID, "Jane Doe"))
	f.handle(t, textEvent(customerID, "555-0100"))
	f.handle(t, textEvent(customerID, "1 Main St"))

	if len(f.ledger.orders) != 1 {
		t.Fatalf("orders committed = %d, want 1", len(f.ledger.orders))
	}
	o := f.ledger.orders[0]
	if o.Name != "Jane Doe" || o.Phone != "555-0100" || o.Address != "1 Main St" {
		t.Errorf("order form = %+v", o)
	}
	if o.Total != 398 {
		t.Errorf("order total = %d, want 398", o.Total)
	}
	if !strings.Contains(o.Items, "Margherita x2") {
		t.Errorf("order items = %q", o.Items)
	}
	if got := f.ledger.orderCount[customerID]; got != 1 {
		t.Errorf("order count = %d, want 1", got)
	}
	if got := f.carts.Lines(customerID); len(got) != 0 {
		t.Errorf("cart not cleared: %d lines", len(got))
	}
	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Errorf("state after commit = %q, want idle", got)
	}
	if len(f.notifier.receipts) != 1 {
		t.Fatalf("receipts = %d, want 1", len(f.notifier.receipts))
	}
	if !strings.Contains(f.notifier.receipts[0].text, "Order #1") {
		t.Errorf("receipt = %q", f.notifier.receipts[0].text)
	}
	if len(f.notifier.alerts) != 1 || !strings.Contains(f.notifier.alerts[0], "NEW ORDER #1") {
		t.Errorf("admin alerts = %v", f.notifier.alerts)
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	f := newFixture()

	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))

	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if len(f.ledger.orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(f.ledger.orders))
	}
	if got := f.notifier.lastPrompt(t).text; got != "Cart is empty!" {
		t.Errorf("prompt = %q", got)
	}
}

func TestCheckoutNonTextReprompts(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))

	f.handle(t, imgEvent(customerID, "photo123"))

	if got := f.sessions.State(customerID); got != session.StateCheckoutName {
		t.Fatalf("state after stray photo = %q, want checkout_name", got)
	}
	if len(f.ledger.orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(f.ledger.orders))
	}
}

func TestCheckoutCommitFailureKeepsState(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))
	f.handle(t, textEvent(customerID, "Jane"))
	f.handle(t, textEvent(customerID, "555"))

	f.ledger.failCommit = true
	err := f.engine.Handle(context.Background(), textEvent(customerID, "1 Main St"))
	if err == nil {
		t.Fatal("Handle returned nil, want commit error")
	}
	if got := f.sessions.State(customerID); got != session.StateCheckoutAddress {
		t.Fatalf("state after failure = %q, want checkout_address", got)
	}
	if got := f.carts.Lines(customerID); len(got) != 1 {
		t.Fatalf("cart after failure = %d lines, want 1", len(got))
	}

	// Resending the address after recovery commits exactly once.
	f.ledger.failCommit = false
	f.handle(t, textEvent(customerID, "1 Main St"))
	if len(f.ledger.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(f.ledger.orders))
	}
	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Fatalf("state after recovery = %q, want idle", got)
	}
}

func TestCheckoutDoubleSubmitGuard(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))
	f.handle(t, textEvent(customerID, "Jane"))
	f.handle(t, textEvent(customerID, "555"))

	// Cart emptied out-of-band after the flow began.
	f.carts.Clear(customerID)
	f.handle(t, textEvent(customerID, "1 Main St"))

	if len(f.ledger.orders) != 0 {
		t.Fatalf("orders = %d, want 0", len(f.ledger.orders))
	}
	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
}

func TestCancelAbortsCheckout(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))
	f.handle(t, textEvent(customerID, "Jane"))

	f.handle(t, textEvent(customerID, LabelCancel))

	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Fatalf("state after cancel = %q, want idle", got)
	}
	last := f.notifier.lastPrompt(t)
	if last.text != "❌ Cancelled." || last.choices.Kind != ChoiceMainMenu {
		t.Errorf("cancel prompt = %+v", last)
	}
	// Cart survives a cancelled checkout.
	if got := f.carts.Lines(customerID); len(got) != 1 {
		t.Errorf("cart after cancel = %d lines, want 1", len(got))
	}
}

func TestAddToCartAgainVariant(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)

	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	if got := f.notifier.lastPrompt(t).text; got != "✅ Margherita added to cart!" {
		t.Errorf("first add prompt = %q", got)
	}
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	if got := f.notifier.lastPrompt(t).text; got != "✅ Margherita added again!" {
		t.Errorf("second add prompt = %q", got)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	f := newFixture()

	f.handle(t, cbEvent(customerID, CallbackAdd, "42"))

	if got := f.notifier.lastPrompt(t).text; got != "⚠️ Product not found!" {
		t.Errorf("prompt = %q", got)
	}
	if got := f.carts.Lines(customerID); len(got) != 0 {
		t.Errorf("cart = %d lines, want 0", len(got))
	}
}

func TestStartResetsFlow(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))

	f.handle(t, cmdEvent(customerID, CmdStart))

	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Fatalf("state after /start = %q, want idle", got)
	}
	last := f.notifier.lastPrompt(t)
	if !strings.Contains(last.text, "Hi, User") || last.choices.Kind != ChoiceMainMenu {
		t.Errorf("greeting = %+v", last)
	}
}

func TestAdminAccessDenied(t *testing.T) {
	f := newFixture()

	f.handle(t, cmdEvent(customerID, CmdAdmin))
	if got := f.notifier.lastPrompt(t).text; got != "⛔️ You don't have access!" {
		t.Errorf("prompt = %q", got)
	}

	// Admin menu labels from a regular user are silently ignored.
	before := len(f.notifier.prompts)
	f.handle(t, textEvent(customerID, LabelAddProduct))
	if len(f.notifier.prompts) != before {
		t.Errorf("admin label from customer produced a reply")
	}
	if got := f.sessions.State(customerID); got != session.StateIdle {
		t.Errorf("state = %q, want idle", got)
	}
}

func TestAdminAddProductFlow(t *testing.T) {
	f := newFixture()

	f.handle(t, cmdEvent(adminID, CmdAdmin))
	f.handle(t, textEvent(adminID, LabelAddProduct))

	if got := f.sessions.State(adminID); got != session.StateAdminAddCategory {
		t.Fatalf("state = %q, want admin_add_category", got)
	}

	f.handle(t, cbEvent(adminID, CallbackAdminCategory, "drinks"))
	f.handle(t, textEvent(adminID, "Juice"))

	// Non-numeric price is rejected without losing the step.
	f.handle(t, textEvent(adminID, "abc"))
	if got := f.sessions.State(adminID); got != session.StateAdminAddPrice {
		t.Fatalf("state after bad price = %q, want admin_add_price", got)
	}
	if got := f.notifier.lastPrompt(t).text; got != "⚠️ Digits only!" {
		t.Errorf("bad price prompt = %q", got)
	}

	f.handle(t, textEvent(adminID, "55"))
	f.handle(t, textEvent(adminID, "Freshly squeezed"))
	f.handle(t, textEvent(adminID, LabelSkipPhoto))

	if got := f.sessions.State(adminID); got != session.StateIdle {
		t.Fatalf("state after insert = %q, want idle", got)
	}
	products, err := f.catalog.ListByCategory(context.Background(), catalog.CategoryDrinks)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 {
		t.Fatalf("drinks = %d, want 1", len(products))
	}
	p := products[0]
	if p.Name != "Juice" || p.Price != 55 || p.Desc != "Freshly squeezed" || p.Photo != "" {
		t.Errorf("created product = %+v", p)
	}
	last := f.notifier.lastPrompt(t)
	if !strings.Contains(last.text, "Product added!") || last.choices.Kind != ChoiceAdminMenu {
		t.Errorf("confirmation = %+v", last)
	}
}

func TestAdminAddProductWithPhoto(t *testing.T) {
	f := newFixture()

	f.handle(t, textEvent(adminID, LabelAddProduct))
	f.handle(t, cbEvent(adminID, CallbackAdminCategory, "pizza"))
	f.handle(t, textEvent(adminID, "Diavola"))
	f.handle(t, textEvent(adminID, "239"))
	f.handle(t, textEvent(adminID, "Spicy salami"))
	f.handle(t, imgEvent(adminID, "file_abc"))

	products, _ := f.catalog.ListByCategory(context.Background(), catalog.CategoryPizza)
	if len(products) != 1 || products[0].Photo != "file_abc" {
		t.Fatalf("products = %+v", products)
	}
}

func TestAdminDeleteFlow(t *testing.T) {
	f := newFixture()
	f.seedProduct(3, "Hawaiian", 219)

	f.handle(t, textEvent(adminID, LabelDeleteProduct))
	if got := f.sessions.State(adminID); got != session.StateAdminDeleteID {
		t.Fatalf("state = %q", got)
	}

	// Unknown id re-prompts without leaving the flow.
	f.handle(t, textEvent(adminID, "99"))
	if got := f.notifier.lastPrompt(t).text; got != "⚠️ Product not found!" {
		t.Errorf("prompt = %q", got)
	}
	if got := f.sessions.State(adminID); got != session.StateAdminDeleteID {
		t.Fatalf("state after miss = %q, want admin_delete_id", got)
	}

	// Non-numeric input re-prompts too.
	f.handle(t, textEvent(adminID, "three"))
	if got := f.notifier.lastPrompt(t).text; got != "⚠️ Enter the ID only!" {
		t.Errorf("prompt = %q", got)
	}

	f.handle(t, textEvent(adminID, "3"))
	if got := f.sessions.State(adminID); got != session.StateIdle {
		t.Fatalf("state after delete = %q, want idle", got)
	}
	if _, err := f.catalog.ByID(context.Background(), 3); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("product still present: %v", err)
	}
	if got := f.notifier.lastPrompt(t).text; !strings.Contains(got, "Hawaiian") {
		t.Errorf("confirmation = %q", got)
	}
}

func TestAdminPhotoFlow(t *testing.T) {
	f := newFixture()
	f.seedProduct(4, "Tiramisu", 89)

	f.handle(t, textEvent(adminID, LabelAddPhoto))
	f.handle(t, textEvent(adminID, "4"))
	if got := f.sessions.State(adminID); got != session.StateAdminPhotoImage {
		t.Fatalf("state = %q, want admin_photo_image", got)
	}

	f.handle(t, imgEvent(adminID, "file_photo"))
	if got := f.sessions.State(adminID); got != session.StateIdle {
		t.Fatalf("state after photo = %q, want idle", got)
	}
	p, err := f.catalog.ByID(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if p.Photo != "file_photo" {
		t.Errorf("photo = %q, want file_photo", p.Photo)
	}
}

func TestAdminPhotoProductVanished(t *testing.T) {
	f := newFixture()
	f.seedProduct(4, "Tiramisu", 89)

	f.handle(t, textEvent(adminID, LabelAddPhoto))
	f.handle(t, textEvent(adminID, "4"))

	// Product deleted mid-flow.
	if err := f.catalog.Delete(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	f.handle(t, imgEvent(adminID, "file_photo"))

	if got := f.sessions.State(adminID); got != session.StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	last := f.notifier.lastPrompt(t)
	if last.text != "⚠️ Product not found!" || last.choices.Kind != ChoiceAdminMenu {
		t.Errorf("prompt = %+v", last)
	}
}

func TestAdminCancelReturnsToAdminMenu(t *testing.T) {
	f := newFixture()

	f.handle(t, textEvent(adminID, LabelAddProduct))
	f.handle(t, textEvent(adminID, LabelCancel))

	if got := f.sessions.State(adminID); got != session.StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	last := f.notifier.lastPrompt(t)
	if last.text != "Cancelled." || last.choices.Kind != ChoiceAdminMenu {
		t.Errorf("prompt = %+v", last)
	}
}

func TestStats(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, cbEvent(customerID, CallbackCheckout, ""))
	f.handle(t, textEvent(customerID, "Jane"))
	f.handle(t, textEvent(customerID, "555"))
	f.handle(t, textEvent(customerID, "1 Main St"))

	f.handle(t, textEvent(adminID, LabelStats))

	got := f.notifier.lastPrompt(t).text
	if !strings.Contains(got, "Total orders: 1") || !strings.Contains(got, "199 UAH") {
		t.Errorf("stats = %q", got)
	}
}

func TestOrdersListEmpty(t *testing.T) {
	f := newFixture()

	f.handle(t, textEvent(customerID, LabelOrders))

	if got := f.notifier.lastPrompt(t).text; got != "📦 You have no orders yet!" {
		t.Errorf("prompt = %q", got)
	}
}

func TestCartView(t *testing.T) {
	f := newFixture()

	f.handle(t, textEvent(customerID, LabelCart))
	if got := f.notifier.lastPrompt(t).text; got != "🛒 Your cart is empty!" {
		t.Errorf("empty cart prompt = %q", got)
	}

	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
	f.handle(t, textEvent(customerID, LabelCart))

	last := f.notifier.lastPrompt(t)
	if !strings.Contains(last.text, "Margherita x1") || !strings.Contains(last.text, "Total: 199 UAH") {
		t.Errorf("cart view = %q", last.text)
	}
	if last.choices.Kind != ChoiceCart {
		t.Errorf("cart choices = %v", last.choices.Kind)
	}
}

func TestClearCart(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)
	f.handle(t, cbEvent(customerID, CallbackAdd, "1"))

	f.handle(t, cbEvent(customerID, CallbackClearCart, ""))

	if got := f.carts.Lines(customerID); len(got) != 0 {
		t.Fatalf("cart = %d lines, want 0", len(got))
	}
	if got := f.notifier.lastPrompt(t).text; got != "🗑 Cart cleared!" {
		t.Errorf("prompt = %q", got)
	}
}

func TestProductCard(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)

	f.handle(t, cbEvent(customerID, CallbackProduct, "1"))

	if len(f.notifier.cards) != 1 || f.notifier.cards[0].ID != 1 {
		t.Fatalf("cards = %+v", f.notifier.cards)
	}
}

func TestOrderCountAccumulates(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)

	const orders = 3
	for i := 0; i < orders; i++ {
		f.handle(t, cbEvent(customerID, CallbackAdd, "1"))
		f.handle(t, cbEvent(customerID, CallbackCheckout, ""))
		f.handle(t, textEvent(customerID, "Jane"))
		f.handle(t, textEvent(customerID, "555"))
		f.handle(t, textEvent(customerID, "1 Main St"))
	}

	if got := f.ledger.orderCount[customerID]; got != orders {
		t.Fatalf("order count = %d, want %d", got, orders)
	}
}

func TestConcurrentUsersIsolated(t *testing.T) {
	f := newFixture()
	f.seedProduct(1, "Margherita", 199)

	const users = 8
	var wg sync.WaitGroup
	wg.Add(users)
	for u := 0; u < users; u++ {
		userID := int64(1000 + u)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			_ = f.engine.Handle(ctx, cbEvent(userID, CallbackAdd, "1"))
			_ = f.engine.Handle(ctx, cbEvent(userID, CallbackCheckout, ""))
			_ = f.engine.Handle(ctx, textEvent(userID, "User "+strconv.FormatInt(userID, 10)))
			_ = f.engine.Handle(ctx, textEvent(userID, "555"))
			_ = f.engine.Handle(ctx, textEvent(userID, "1 Main St"))
		}()
	}
	wg.Wait()

	if got := len(f.ledger.orders); got != users {
		t.Fatalf("orders = %d, want %d", got, users)
	}
	for u := 0; u < users; u++ {
		if got := f.ledger.orderCount[int64(1000+u)]; got != 1 {
			t.Errorf("user %d order count = %d, want 1", 1000+u, got)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"0", 0, true},
		{"42", 42, true},
		{" 7 ", 7, true},
		{"", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{"abc", 0, false},
		{"12a", 0, false},
	}
	for _, c := range cases {
		got, ok := parseID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("parseID(%q) = %d, %v; want %d, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSplitJoinCallback(t *testing.T) {
	key, payload := SplitCallback("product|7")
	if key != "product" || payload != "7" {
		t.Errorf("SplitCallback = %q, %q", key, payload)
	}
	key, payload = SplitCallback("checkout")
	if key != "checkout" || payload != "" {
		t.Errorf("SplitCallback = %q, %q", key, payload)
	}
	if got := JoinCallback("add", "3"); got != "add|3" {
		t.Errorf("JoinCallback = %q", got)
	}
	if got := JoinCallback("checkout", ""); got != "checkout" {
		t.Errorf("JoinCallback = %q", got)
	}
}
