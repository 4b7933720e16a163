package router

import (
	"log/slog"

	tg "github.com/m3rciful/tripbot/core/telegram"
	"github.com/m3rciful/tripbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound answers buttons whose unique is no longer registered, usually
	// keyboards left over from a previous deployment. When nil such presses
	// are only acknowledged.
	NotFound tele.HandlerFunc
}

// CallbackRoute returns the single OnCallback route. Buttons are dispatched
// by their unique; the payload stays on the callback for the handler.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	return route(tele.OnCallback, func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		unique, _ := callbacks.Parse(c.Callback())
		// Stop the client spinner right away; replies arrive as new messages.
		_ = c.Respond()

		name := "callback." + handlerName(unique)
		if h, ok := reg.GetCallback(unique); ok && h != nil {
			return serve(c, opCallback, name, h, slog.String("cb_key", unique))
		}
		return serve(c, opCallback, name, opts.NotFound,
			slog.String("cb_key", unique),
			slog.String("reason", "not_found"),
		)
	})
}
