// Package session tracks per-user conversation state for multi-step flows.
// Sessions live in memory only; an in-flight form is lost on restart, which
// is an accepted design point.
package session

import (
	"strings"
	"sync"

	"github.com/ovenline/pizzabot/internal/catalog"
)

// State identifies a step of an in-progress dialogue.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"

	StateCheckoutName    State = "checkout_name"
	StateCheckoutPhone   State = "checkout_phone"
	StateCheckoutAddress State = "checkout_address"

	StateAdminAddCategory State = "admin_add_category"
	StateAdminAddName     State = "admin_add_name"
	StateAdminAddPrice    State = "admin_add_price"
	StateAdminAddDesc     State = "admin_add_desc"
	StateAdminAddPhoto    State = "admin_add_photo"

	StateAdminDeleteID State = "admin_delete_id"

	StateAdminPhotoID    State = "admin_photo_id"
	StateAdminPhotoImage State = "admin_photo_image"
)

// IsAdmin reports whether the state belongs to an admin flow.
func (s State) IsAdmin() bool {
	return strings.HasPrefix(string(s), "admin_")
}

// CheckoutForm accumulates checkout answers. Each field is set exactly by
// the state that collects it, so a later state can rely on earlier fields.
type CheckoutForm struct {
	Name  string
	Phone string
}

// AdminAddForm accumulates the add-product answers.
type AdminAddForm struct {
	Category catalog.Category
	Name     string
	Price    int
	Desc     string
}

// AdminPhotoForm holds the product chosen for a photo update.
type AdminPhotoForm struct {
	ProductID int64
}

// Session is one user's dialogue state plus the form data collected so far.
type Session struct {
	State      State
	Checkout   CheckoutForm
	AdminAdd   AdminAddForm
	AdminPhoto AdminPhotoForm
}

// Reset returns the session to idle and drops all form data.
func (s *Session) Reset() {
	*s = Session{State: StateIdle}
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// Manager owns all sessions, keyed by Telegram user id. Access to one
// user's session is serialized through a per-user lock, so two events from
// the same user never interleave; events from different users proceed in
// parallel.
type Manager struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{entries: make(map[int64]*entry)}
}

func (m *Manager) entryFor(userID int64) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		e = &entry{sess: Session{State: StateIdle}}
		m.entries[userID] = e
	}
	return e
}

// With runs fn while holding the user's session lock. The session is created
// lazily on first interaction. Mutations made by fn are kept.
func (m *Manager) With(userID int64, fn func(s *Session) error) error {
	e := m.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.sess)
}

// State peeks at the user's current state without locking it for a whole
// event. Unknown users are idle.
func (m *Manager) State(userID int64) State {
	m.mu.Lock()
	e, ok := m.entries[userID]
	m.mu.Unlock()
	if !ok {
		return StateIdle
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.State
}
