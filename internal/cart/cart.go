// Package cart keeps per-user shopping carts in memory for the lifetime of
// the process. Carts are intentionally not persisted: an abandoned cart is
// cheap to rebuild.
package cart

import (
	"sync"

	"github.com/ovenline/pizzabot/internal/catalog"
)

// Line is one cart position. Name and UnitPrice are snapshots taken when
// the product was added, so later catalog edits do not change carts that
// already hold the item.
type Line struct {
	ProductID int64
	Name      string
	UnitPrice int
	Qty       int
}

// Subtotal returns the line price.
func (l Line) Subtotal() int {
	return l.UnitPrice * l.Qty
}

// Store holds every user's cart, keyed by Telegram user id.
type Store struct {
	mu    sync.Mutex
	lines map[int64][]Line
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{lines: make(map[int64][]Line)}
}

// Add puts one unit of the product into the user's cart. Adding a product
// that is already present increments its quantity instead of creating a
// duplicate line. It reports whether the product was already in the cart.
func (s *Store) Add(userID int64, p catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines[userID] {
		if line.ProductID == p.ID {
			s.lines[userID][i].Qty++
			return true
		}
	}
	s.lines[userID] = append(s.lines[userID], Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Qty:       1,
	})
	return false
}

// Lines returns a copy of the user's cart. An unknown user gets an empty
// cart, never an error.
func (s *Store) Lines(userID int64) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.lines[userID]
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// Clear empties the user's cart. Clearing an already empty cart is a no-op.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lines, userID)
}

// Total sums line subtotals.
func Total(lines []Line) int {
	total := 0
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}
