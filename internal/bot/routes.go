package bot

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/ovenline/pizzabot/internal/engine"
	"github.com/ovenline/pizzabot/internal/logger"
)

// registerRoutes binds telebot endpoints to engine event handling.
func (b *Bot) registerRoutes() {
	b.tele.Handle(engine.CmdStart, b.handleEvent(func(c tele.Context) engine.Event {
		return eventFrom(c, engine.KindCommand, engine.CmdStart)
	}))
	b.tele.Handle(engine.CmdAdmin, b.handleEvent(func(c tele.Context) engine.Event {
		return eventFrom(c, engine.KindCommand, engine.CmdAdmin)
	}))
	b.tele.Handle(tele.OnText, b.handleEvent(func(c tele.Context) engine.Event {
		return eventFrom(c, engine.KindText, c.Text())
	}))
	b.tele.Handle(tele.OnPhoto, b.handleEvent(func(c tele.Context) engine.Event {
		value := ""
		if photo := c.Message().Photo; photo != nil {
			value = photo.FileID
		}
		return eventFrom(c, engine.KindImage, value)
	}))
	b.tele.Handle(tele.OnCallback, b.handleEvent(func(c tele.Context) engine.Event {
		key, payload := parseCallback(c.Callback())
		return eventFrom(c, engine.KindCallback, engine.JoinCallback(key, payload))
	}))
}

// eventFrom builds a normalized engine event from the telebot context.
func eventFrom(c tele.Context, kind engine.Kind, value string) engine.Event {
	ev := engine.Event{Kind: kind, Value: value}
	if user := c.Sender(); user != nil {
		ev.UserID = user.ID
		ev.Username = user.Username
		ev.FirstName = user.FirstName
	}
	return ev
}

// handleEvent adapts an event extractor into a telebot handler: it
// acknowledges callbacks, runs the engine, and logs the outcome.
func (b *Bot) handleEvent(extract func(c tele.Context) engine.Event) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := eventContext(c)
		ev := extract(c)
		if ev.UserID == 0 {
			return nil
		}

		if c.Callback() != nil {
			// Stop the client-side spinner before any processing.
			if err := c.Respond(); err != nil {
				logger.Warn(ctx, "tg", "callback.ack",
					slog.Int64("user_id", ev.UserID),
					slog.String("err", err.Error()),
				)
			}
		}

		start := time.Now()
		err := b.engine.Handle(ctx, ev)
		if err != nil {
			logger.Error(ctx, "tg", "handler",
				slog.Int64("user_id", ev.UserID),
				slog.String("kind", ev.Kind.String()),
				slog.String("err", sanitizeErrorMessage(err)),
				slog.Duration("took", logger.Took(start)),
			)
			return nil
		}
		logger.Debug(ctx, "tg", "handler",
			slog.Int64("user_id", ev.UserID),
			slog.String("kind", ev.Kind.String()),
			slog.Duration("took", logger.Took(start)),
		)
		return nil
	}
}
