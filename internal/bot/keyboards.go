package bot

import (
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/engine"
)

// inlineBtn is a convenience wrapper for inline button properties.
type inlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// replyButtons builds a reply keyboard from rows of text.
func replyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

// inlineRows builds an inline keyboard from rows of inlineBtn.
func inlineRows(rows ...[]inlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline[i] = r
	}
	markup.InlineKeyboard = inline
	return markup
}

func mainMenu() *tele.ReplyMarkup {
	return replyButtons(
		[]string{engine.LabelCatalog},
		[]string{engine.LabelCart, engine.LabelOrders},
		[]string{engine.LabelContacts},
	)
}

func adminMenu() *tele.ReplyMarkup {
	return replyButtons(
		[]string{engine.LabelAddProduct, engine.LabelDeleteProduct},
		[]string{engine.LabelAddPhoto, engine.LabelAllProducts},
		[]string{engine.LabelStats},
		[]string{engine.LabelExitAdmin},
	)
}

func cancelKeyboard() *tele.ReplyMarkup {
	return replyButtons([]string{engine.LabelCancel})
}

func skipKeyboard() *tele.ReplyMarkup {
	return replyButtons(
		[]string{engine.LabelSkipPhoto},
		[]string{engine.LabelCancel},
	)
}

func categoriesKeyboard(unique string) *tele.ReplyMarkup {
	rows := make([][]inlineBtn, 0, len(catalog.Categories()))
	for _, c := range catalog.Categories() {
		rows = append(rows, []inlineBtn{{Text: c.Title(), Unique: unique, Data: string(c)}})
	}
	return inlineRows(rows...)
}

func productsKeyboard(products []catalog.Product) *tele.ReplyMarkup {
	rows := make([][]inlineBtn, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, []inlineBtn{{
			Text:   p.Name + " — " + engine.FormatPrice(p.Price),
			Unique: engine.CallbackProduct,
			Data:   strconv.FormatInt(p.ID, 10),
		}})
	}
	rows = append(rows, []inlineBtn{{Text: "◀️ Back", Unique: engine.CallbackBackCatalog}})
	return inlineRows(rows...)
}

func productCardKeyboard(productID int64) *tele.ReplyMarkup {
	return inlineRows(
		[]inlineBtn{{Text: "🛒 Add to cart", Unique: engine.CallbackAdd, Data: strconv.FormatInt(productID, 10)}},
		[]inlineBtn{{Text: "◀️ Back", Unique: engine.CallbackBackCatalog}},
	)
}

func cartKeyboard() *tele.ReplyMarkup {
	return inlineRows(
		[]inlineBtn{{Text: "✅ Checkout", Unique: engine.CallbackCheckout}},
		[]inlineBtn{{Text: "🗑 Clear cart", Unique: engine.CallbackClearCart}},
		[]inlineBtn{{Text: "🛍 Continue shopping", Unique: engine.CallbackContinueShopping}},
	)
}

// markupFor translates an engine choice set into a concrete keyboard.
func markupFor(choices engine.Choices) *tele.ReplyMarkup {
	switch choices.Kind {
	case engine.ChoiceMainMenu:
		return mainMenu()
	case engine.ChoiceAdminMenu:
		return adminMenu()
	case engine.ChoiceCancel:
		return cancelKeyboard()
	case engine.ChoiceSkipPhoto:
		return skipKeyboard()
	case engine.ChoiceCategories:
		return categoriesKeyboard(engine.CallbackCategory)
	case engine.ChoiceAdminCategories:
		return categoriesKeyboard(engine.CallbackAdminCategory)
	case engine.ChoiceProducts:
		return productsKeyboard(choices.Products)
	case engine.ChoiceCart:
		return cartKeyboard()
	}
	return nil
}
