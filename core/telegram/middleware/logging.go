package middleware

import (
	"log/slog"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const receivedKey = "update_received"

// LoggerMiddleware attaches the logging context to c and writes a sampled
// update.received line. It may wrap a handler more than once (globally and
// per route); the context and the line are produced only on the first pass.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if seen, _ := c.Get(receivedKey).(bool); seen {
			return next(c)
		}
		c.Set(receivedKey, true)
		ctx := tghelpers.NewContext(c)
		if logger.ShouldSampleDebug() {
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", receivedAttrs(c)...)
		}
		return next(c)
	}
}

func receivedAttrs(c tele.Context) []slog.Attr {
	attrs := []slog.Attr{slog.String("status", "ok")}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if u := c.Sender(); u != nil {
		if u.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
		}
		if u.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", u.LanguageCode))
		}
	}
	if cb := c.Callback(); cb != nil {
		unique, payload := callbacks.Parse(cb)
		return append(attrs,
			slog.String("cb_key", logger.SanitizeLimit(unique, 128)),
			slog.String("payload", logger.SanitizeLimit(payload, 256)),
		)
	}
	if text := c.Text(); text != "" {
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(text, 256)))
	}
	return attrs
}
