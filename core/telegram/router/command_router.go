package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/tripbot/core/logger"
	tg "github.com/m3rciful/tripbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// CommandRoutes returns one route per registered command. Aliases are
// served by TextRoutes.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for endpoint, def := range cmds {
		name, h := handlerName(endpoint), def.Handler
		routes = append(routes, route(endpoint, func(c tele.Context) error {
			return serve(c, opCommand, name, h)
		}))
	}

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "routes.ready",
		slog.Int("commands", len(cmds)),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
