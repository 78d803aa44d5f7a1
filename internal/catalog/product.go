package catalog

import "errors"

// ErrNotFound is returned when a product id does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// Product is a purchasable catalog item. Price is stored in whole currency
// units.
type Product struct {
	ID       int64    `db:"id"`
	Name     string   `db:"name"`
	Price    int      `db:"price"`
	Desc     string   `db:"desc"`
	Photo    string   `db:"photo"`
	Category Category `db:"category"`
}

// HasPhoto reports whether a photo reference is attached.
func (p Product) HasPhoto() bool {
	return p.Photo != ""
}

// NewProduct carries the fields required to create a product.
type NewProduct struct {
	Name     string
	Price    int
	Desc     string
	Photo    string
	Category Category
}
