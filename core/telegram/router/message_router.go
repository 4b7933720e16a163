package router

import (
	"strings"

	tg "github.com/m3rciful/tripbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// mediaEndpoints are the non-text messages a customer is likely to send
// while a prompt expects typed input.
var mediaEndpoints = []string{tele.OnPhoto, tele.OnDocument, tele.OnSticker, tele.OnVoice, tele.OnContact}

// TextOptions controls fallback behaviour for non-command updates.
type TextOptions struct {
	// UnknownMedia answers messages that carry no text, such as photos or stickers.
	UnknownMedia tele.HandlerFunc
}

// TextRoutes routes plain text. Text naming a registered command or alias
// runs that command; anything else goes to the registry text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	routes := []tg.Route{route(tele.OnText, func(c tele.Context) error {
		if reg == nil {
			return serve(c, opText, "text", nil)
		}
		if text := strings.TrimSpace(c.Text()); strings.HasPrefix(text, "/") {
			if key, cmd, ok := reg.LookupCommand(strings.Fields(text)[0]); ok && cmd.Handler != nil {
				return serve(c, opCommand, handlerName(key), cmd.Handler)
			}
		}
		return serve(c, opText, "text", reg.TextFallback())
	})}

	if opts.UnknownMedia == nil {
		return routes
	}
	for _, ep := range mediaEndpoints {
		routes = append(routes, route(ep, func(c tele.Context) error {
			return serve(c, opMedia, "unknown_media", opts.UnknownMedia)
		}))
	}
	return routes
}
