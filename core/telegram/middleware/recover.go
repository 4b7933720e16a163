// Package middleware holds the telebot middlewares every route runs under.
package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/tripbot/core/logger"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into a handler.panic log line. The
// update is dropped and the poller keeps running.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = nil
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "handler.panic",
				slog.String("err", logger.SanitizeLimit(fmt.Sprint(r), 512)),
				slog.String("stack", string(debug.Stack())),
			)
		}()
		return next(c)
	}
}
