// Package catalog owns the durable product catalog grouped by category.
package catalog

// Category is the closed set of menu sections.
type Category string

const (
	CategoryPizza    Category = "pizza"
	CategoryDrinks   Category = "drinks"
	CategoryDesserts Category = "desserts"
)

// Categories returns every category in menu display order.
func Categories() []Category {
	return []Category{CategoryPizza, CategoryDrinks, CategoryDesserts}
}

// ParseCategory maps a raw label to a Category.
func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryPizza:
		return CategoryPizza, true
	case CategoryDrinks:
		return CategoryDrinks, true
	case CategoryDesserts:
		return CategoryDesserts, true
	}
	return "", false
}

// Title returns the customer-facing name of the category.
func (c Category) Title() string {
	switch c {
	case CategoryPizza:
		return "🍕 Pizza"
	case CategoryDrinks:
		return "🥤 Drinks"
	case CategoryDesserts:
		return "🍰 Desserts"
	}
	return string(c)
}
