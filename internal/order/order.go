// Package order persists completed checkouts and the per-user order
// aggregate that is maintained atomically with every commit.
package order

import "time"

// StatusNew is the initial status of every committed order. Further status
// transitions belong to a future admin workflow and are not mutated here.
const StatusNew = "New"

// Order is a durable record of a completed checkout. Immutable once
// committed, except Status.
type Order struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	Username string    `db:"username"`
	Name     string    `db:"name"`
	Phone    string    `db:"phone"`
	Address  string    `db:"address"`
	Items    string    `db:"items"`
	Total    int       `db:"total"`
	Date     time.Time `db:"date"`
	Status   string    `db:"status"`
}

// NewOrder carries the fields required to commit an order.
type NewOrder struct {
	UserID   int64
	Username string
	Name     string
	Phone    string
	Address  string
	Items    string
	Total    int
}

// Stats is the shop-wide aggregate shown to the admin.
type Stats struct {
	Orders   int `db:"orders"`
	Revenue  int `db:"revenue"`
	Users    int `db:"users"`
	Products int `db:"products"`
}
