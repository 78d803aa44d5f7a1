package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ovenline/pizzabot/internal/catalog"
	"github.com/ovenline/pizzabot/internal/logger"
	"github.com/ovenline/pizzabot/internal/session"
)

const (
	promptAdminCategory = "Choose a category:"
	promptAdminName     = "Enter the product name:"
	promptAdminPrice    = "Enter the price (digits only):"
	promptAdminDesc     = "Enter the product description:"
	promptAdminPhoto    = "Send a photo or skip:"
	promptDigitsOnly    = "⚠️ Enter the ID only!"
	promptNotFound      = "⚠️ Product not found!"
)

// handleAdminLabel routes admin menu buttons pressed while idle. Callers
// have already verified the sender is the configured admin.
func (e *Engine) handleAdminLabel(ctx context.Context, s *session.Session, ev Event) error {
	switch ev.Value {
	case LabelAddProduct:
		s.State = session.StateAdminAddCategory
		return e.notifier.Prompt(ctx, ev.UserID, promptAdminCategory, Choices{Kind: ChoiceAdminCategories})

	case LabelDeleteProduct:
		text, err := e.deletePromptText(ctx)
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		s.State = session.StateAdminDeleteID
		return e.notifier.Prompt(ctx, ev.UserID, text, Choices{Kind: ChoiceCancel})

	case LabelAddPhoto:
		products, err := e.catalog.Unphotographed(ctx)
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		s.State = session.StateAdminPhotoID
		return e.notifier.Prompt(ctx, ev.UserID, unphotographedText(products), Choices{Kind: ChoiceCancel})

	case LabelAllProducts:
		text, err := e.allProductsText(ctx)
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		return e.notifier.Prompt(ctx, ev.UserID, text, Choices{})

	case LabelStats:
		stats, err := e.orders.AggregateStats(ctx)
		if err != nil {
			return e.failPrompt(ctx, ev.UserID, err)
		}
		return e.notifier.Prompt(ctx, ev.UserID, statsText(stats), Choices{})

	case LabelExitAdmin:
		return e.notifier.Prompt(ctx, ev.UserID, "Back to the main menu 👇", Choices{Kind: ChoiceMainMenu})
	}
	return nil
}

// Add-product flow.

func (e *Engine) adminAddCategory(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind == KindCallback {
		key, payload := SplitCallback(ev.Value)
		if key == CallbackAdminCategory {
			if c, ok := catalog.ParseCategory(payload); ok {
				s.AdminAdd.Category = c
				s.State = session.StateAdminAddName
				return e.notifier.Prompt(ctx, ev.UserID, promptAdminName, Choices{Kind: ChoiceCancel})
			}
		}
	}
	return e.notifier.Prompt(ctx, ev.UserID, promptAdminCategory, Choices{Kind: ChoiceAdminCategories})
}

func (e *Engine) adminAddName(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptAdminName, Choices{})
	}
	s.AdminAdd.Name = ev.Value
	s.State = session.StateAdminAddPrice
	return e.notifier.Prompt(ctx, ev.UserID, promptAdminPrice, Choices{})
}

func (e *Engine) adminAddPrice(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptAdminPrice, Choices{})
	}
	price, ok := parseID(ev.Value)
	if !ok {
		return e.notifier.Prompt(ctx, ev.UserID, "⚠️ Digits only!", Choices{})
	}
	s.AdminAdd.Price = int(price)
	s.State = session.StateAdminAddDesc
	return e.notifier.Prompt(ctx, ev.UserID, promptAdminDesc, Choices{})
}

func (e *Engine) adminAddDesc(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptAdminDesc, Choices{})
	}
	s.AdminAdd.Desc = ev.Value
	s.State = session.StateAdminAddPhoto
	return e.notifier.Prompt(ctx, ev.UserID, promptAdminPhoto, Choices{Kind: ChoiceSkipPhoto})
}

func (e *Engine) adminAddPhoto(ctx context.Context, s *session.Session, ev Event) error {
	switch {
	case ev.Kind == KindImage:
		return e.insertProduct(ctx, s, ev, ev.Value)
	case ev.Kind == KindText && ev.Value == LabelSkipPhoto:
		return e.insertProduct(ctx, s, ev, "")
	}
	return e.notifier.Prompt(ctx, ev.UserID, promptAdminPhoto, Choices{Kind: ChoiceSkipPhoto})
}

func (e *Engine) insertProduct(ctx context.Context, s *session.Session, ev Event, photo string) error {
	p := catalog.NewProduct{
		Name:     s.AdminAdd.Name,
		Price:    s.AdminAdd.Price,
		Desc:     s.AdminAdd.Desc,
		Photo:    photo,
		Category: s.AdminAdd.Category,
	}
	id, err := e.catalog.Create(ctx, p)
	if err != nil {
		logger.Error(ctx, "engine", "admin.add",
			slog.Int64("user_id", ev.UserID),
			slog.String("err", err.Error()),
		)
		return e.failPrompt(ctx, ev.UserID, err)
	}
	s.Reset()
	return e.notifier.Prompt(ctx, ev.UserID, productAddedText(id, p), Choices{Kind: ChoiceAdminMenu})
}

// Delete flow.

func (e *Engine) adminDeleteID(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptDigitsOnly, Choices{})
	}
	id, ok := parseID(ev.Value)
	if !ok {
		return e.notifier.Prompt(ctx, ev.UserID, promptDigitsOnly, Choices{})
	}
	p, err := e.catalog.ByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return e.notifier.Prompt(ctx, ev.UserID, promptNotFound, Choices{})
	}
	if err != nil {
		return e.failPrompt(ctx, ev.UserID, err)
	}
	if err := e.catalog.Delete(ctx, id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return e.notifier.Prompt(ctx, ev.UserID, promptNotFound, Choices{})
		}
		return e.failPrompt(ctx, ev.UserID, err)
	}
	s.Reset()
	return e.notifier.Prompt(ctx, ev.UserID, "✅ *"+p.Name+"* deleted!", Choices{Kind: ChoiceAdminMenu})
}

// Set-photo flow.

func (e *Engine) adminPhotoID(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindText {
		return e.notifier.Prompt(ctx, ev.UserID, promptDigitsOnly, Choices{})
	}
	id, ok := parseID(ev.Value)
	if !ok {
		return e.notifier.Prompt(ctx, ev.UserID, promptDigitsOnly, Choices{})
	}
	p, err := e.catalog.ByID(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return e.notifier.Prompt(ctx, ev.UserID, promptNotFound, Choices{})
	}
	if err != nil {
		return e.failPrompt(ctx, ev.UserID, err)
	}
	s.AdminPhoto.ProductID = p.ID
	s.State = session.StateAdminPhotoImage
	return e.notifier.Prompt(ctx, ev.UserID, "Send a photo for *"+p.Name+"*:", Choices{Kind: ChoiceCancel})
}

func (e *Engine) adminPhotoImage(ctx context.Context, s *session.Session, ev Event) error {
	if ev.Kind != KindImage {
		return e.notifier.Prompt(ctx, ev.UserID, "Send a photo:", Choices{})
	}
	p, err := e.catalog.ByID(ctx, s.AdminPhoto.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		// Product vanished mid-flow; nothing left to attach to.
		s.Reset()
		return e.notifier.Prompt(ctx, ev.UserID, promptNotFound, Choices{Kind: ChoiceAdminMenu})
	}
	if err != nil {
		return e.failPrompt(ctx, ev.UserID, err)
	}
	if err := e.catalog.SetPhoto(ctx, p.ID, ev.Value); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.Reset()
			return e.notifier.Prompt(ctx, ev.UserID, promptNotFound, Choices{Kind: ChoiceAdminMenu})
		}
		return e.failPrompt(ctx, ev.UserID, err)
	}
	s.Reset()
	return e.notifier.Prompt(ctx, ev.UserID, "✅ Photo saved for *"+p.Name+"*!", Choices{Kind: ChoiceAdminMenu})
}

// deletePromptText lists every product grouped by category so the admin can
// pick an id.
func (e *Engine) deletePromptText(ctx context.Context) (string, error) {
	groups, err := e.productsByCategory(ctx)
	if err != nil {
		return "", err
	}
	return deleteListText(groups), nil
}

func (e *Engine) allProductsText(ctx context.Context) (string, error) {
	groups, err := e.productsByCategory(ctx)
	if err != nil {
		return "", err
	}
	return allProductsText(groups), nil
}

// categoryGroup pairs a category with its products for rendering.
type categoryGroup struct {
	category catalog.Category
	products []catalog.Product
}

func (e *Engine) productsByCategory(ctx context.Context) ([]categoryGroup, error) {
	groups := make([]categoryGroup, 0, len(catalog.Categories()))
	for _, c := range catalog.Categories() {
		products, err := e.catalog.ListByCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		groups = append(groups, categoryGroup{category: c, products: products})
	}
	return groups, nil
}
