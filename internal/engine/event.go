package engine

import "strings"

// Kind is the closed set of inbound event kinds. Every update coming from
// the transport is normalized to one of these before it reaches the engine.
type Kind int

const (
	// KindCommand is a slash command such as /start.
	KindCommand Kind = iota
	// KindText is free text, including reply-keyboard labels.
	KindText
	// KindImage carries an opaque photo reference in Value.
	KindImage
	// KindCallback carries inline button data in Value as "key" or
	// "key|payload".
	KindCallback
)

// String names the kind for logs.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindCallback:
		return "callback"
	}
	return "unknown"
}

// Event is a normalized inbound update.
type Event struct {
	UserID    int64
	Username  string
	FirstName string
	Kind      Kind
	Value     string
}

// Commands understood at the top level.
const (
	CmdStart = "/start"
	CmdAdmin = "/admin"
)

// Reply-keyboard labels. The keyboards the transport renders must use these
// exact strings: they double as the routing protocol for text events.
const (
	LabelCatalog  = "🛍 Catalog"
	LabelCart     = "🛒 Cart"
	LabelOrders   = "📦 My orders"
	LabelContacts = "📞 Contacts"

	LabelAddProduct    = "➕ Add product"
	LabelDeleteProduct = "🗑 Delete product"
	LabelAddPhoto      = "📸 Add photo"
	LabelAllProducts   = "📋 All products"
	LabelStats         = "📊 Stats"
	LabelExitAdmin     = "◀️ Exit admin panel"

	LabelCancel    = "❌ Cancel"
	LabelSkipPhoto = "⏭ Skip photo"
)

// Inline callback keys.
const (
	CallbackCategory         = "cat"
	CallbackAdminCategory    = "admin_cat"
	CallbackProduct          = "product"
	CallbackAdd              = "add"
	CallbackCheckout         = "checkout"
	CallbackClearCart        = "clear_cart"
	CallbackBackCatalog      = "back_catalog"
	CallbackContinueShopping = "continue_shopping"
)

// SplitCallback separates a callback value into key and payload.
func SplitCallback(value string) (string, string) {
	parts := strings.SplitN(value, "|", 2)
	key := strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		return key, parts[1]
	}
	return key, ""
}

// JoinCallback builds a callback value from key and payload.
func JoinCallback(key, payload string) string {
	if payload == "" {
		return key
	}
	return key + "|" + payload
}
