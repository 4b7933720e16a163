package router

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/tripbot/core/logger"
	tg "github.com/m3rciful/tripbot/core/telegram"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"
	"github.com/m3rciful/tripbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Update kinds reported in the "op" attribute of handler.handled.
const (
	opCommand  = "command"
	opText     = "text"
	opCallback = "callback"
	opMedia    = "media"
)

// coder is implemented by errors that carry a stable machine-readable code.
type coder interface{ Code() string }

// route wraps h with recovery and the update logger.
func route(endpoint any, h tele.HandlerFunc) tg.Route {
	return tg.Route{
		Endpoint: endpoint,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}

// serve runs fn under handler name and logs one handler.handled line for it.
func serve(c tele.Context, op, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	ctx := tghelpers.WithHandler(c, name)
	start, ok := tghelpers.UpdateStart(c)
	if !ok {
		start = time.Now()
	}

	outcome := "ok"
	var err error
	if fn == nil {
		outcome = "skip"
	} else if err = fn(c); err != nil {
		outcome = "fail"
	}

	attrs := make([]slog.Attr, 0, 6+len(extras))
	attrs = append(attrs,
		slog.String("op", op),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Duration("duration", logger.Took(start)),
	)
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
	return err
}

// handlerName turns a command or callback unique into a log-friendly name.
func handlerName(raw string) string {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(raw), "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func errorCode(err error) string {
	var c coder
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	return "HANDLER_ERROR"
}
