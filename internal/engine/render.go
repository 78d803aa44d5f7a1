package engine

import (
	"fmt"
	"strings"

	"github.com/ovenline/pizzabot/internal/cart"
	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/order"
)

// FormatPrice renders a whole-unit price for display.
func FormatPrice(n int) string {
	return fmt.Sprintf("%d UAH", n)
}

// ProductCardText renders a single product for the catalog card shown to
// customers.
func ProductCardText(p catalog.Product) string {
	return fmt.Sprintf("🍕 *%s*\n\n📝 %s\n\n💰 Price: *%s*", p.Name, p.Desc, FormatPrice(p.Price))
}

// itemsSummary is the rendered order line snapshot stored with each order.
func itemsSummary(lines []cart.Line) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "• %s x%d — %s\n", l.Name, l.Qty, FormatPrice(l.Subtotal()))
	}
	return b.String()
}

func cartViewText(lines []cart.Line) string {
	var b strings.Builder
	b.WriteString("🛒 *Your cart:*\n\n")
	b.WriteString(itemsSummary(lines))
	fmt.Fprintf(&b, "\n💰 *Total: %s*", FormatPrice(cart.Total(lines)))
	return b.String()
}

func receiptText(orderID int64, name, phone, address, items string, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ *Order #%d accepted!*\n\n", orderID)
	fmt.Fprintf(&b, "👤 Name: %s\n📞 Phone: %s\n📍 Address: %s\n\n", name, phone, address)
	fmt.Fprintf(&b, "🛒 *Your order:*\n%s\n", items)
	fmt.Fprintf(&b, "💰 *Total: %s*\n\n", FormatPrice(total))
	b.WriteString("🕐 Delivery time: 40-60 minutes\nThank you for your order! 🍕")
	return b.String()
}

func adminAlertText(orderID int64, name, phone, address, items string, total int, userID int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *NEW ORDER #%d!*\n\n", orderID)
	fmt.Fprintf(&b, "👤 Name: %s\n📞 Phone: %s\n📍 Address: %s\n\n", name, phone, address)
	fmt.Fprintf(&b, "🛒 *Order contents:*\n%s\n", items)
	fmt.Fprintf(&b, "💰 *Total: %s*\n\n", FormatPrice(total))
	fmt.Fprintf(&b, "👤 Telegram ID: %d", userID)
	return b.String()
}

func ordersListText(orders []order.Order) string {
	var b strings.Builder
	b.WriteString("📦 *Your recent orders:*\n\n")
	for _, o := range orders {
		fmt.Fprintf(&b, "🔸 *Order #%d*\n📅 %s\n💰 Total: %s\n📊 Status: %s\n\n",
			o.ID, o.Date.Format("02.01.2006 15:04"), FormatPrice(o.Total), o.Status)
	}
	return b.String()
}

func statsText(s order.Stats) string {
	return fmt.Sprintf(
		"📊 *Shop statistics:*\n\n📦 Total orders: %d\n💰 Total revenue: %s\n👤 Users: %d\n🍕 Products on the menu: %d",
		s.Orders, FormatPrice(s.Revenue), s.Users, s.Products,
	)
}

func contactsText(c Contacts) string {
	return fmt.Sprintf(
		"📞 *Contacts:*\n\n📱 Phone: %s\n📍 Address: %s\n🕐 Opening hours: %s\n📸 Instagram: %s",
		c.Phone, c.Address, c.Hours, c.Instagram,
	)
}

func productAddedText(id int64, p catalog.NewProduct) string {
	photo := "🚫 none"
	if p.Photo != "" {
		photo = "✅"
	}
	return fmt.Sprintf(
		"✅ *Product added!*\n\nID: %d\n📦 %s\n💰 %s\n📝 %s\n📂 %s\n📸 Photo: %s",
		id, p.Name, FormatPrice(p.Price), p.Desc, p.Category.Title(), photo,
	)
}

func deleteListText(groups []categoryGroup) string {
	var b strings.Builder
	b.WriteString("📋 Enter the product ID to delete:\n\n")
	for _, g := range groups {
		if len(g.products) == 0 {
			continue
		}
		fmt.Fprintf(&b, "*%s:*\n", g.category.Title())
		for _, p := range g.products {
			fmt.Fprintf(&b, "  ID:%d | %s\n", p.ID, p.Name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func allProductsText(groups []categoryGroup) string {
	var b strings.Builder
	b.WriteString("📋 *All products:*\n\n")
	for _, g := range groups {
		if len(g.products) == 0 {
			continue
		}
		fmt.Fprintf(&b, "*%s:*\n", g.category.Title())
		for _, p := range g.products {
			marker := "🚫"
			if p.HasPhoto() {
				marker = "📸"
			}
			fmt.Fprintf(&b, "  %s ID:%d | %s — %s\n", marker, p.ID, p.Name, FormatPrice(p.Price))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func unphotographedText(products []catalog.Product) string {
	var b strings.Builder
	b.WriteString("📋 *Products without a photo:*\n\n")
	for _, p := range products {
		fmt.Fprintf(&b, "ID:%d | %s\n", p.ID, p.Name)
	}
	b.WriteString("\nEnter the product ID:")
	return b.String()
}
