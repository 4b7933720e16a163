package middleware

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/tripbot/core/logger"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// RateLimitMiddleware drops updates that arrive from the same user faster
// than opts.Interval. Dropped updates never reach the conversation. Slash
// commands always pass and do not count towards the interval.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		lastSeen = make(map[int64]time.Time)
		mu       sync.Mutex
	)
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}
			if isCommand(c.Update()) {
				return next(c)
			}

			t := now()
			mu.Lock()
			last, seen := lastSeen[user.ID]
			limited := seen && t.Sub(last) < opts.Interval
			if !limited {
				lastSeen[user.ID] = t
			}
			mu.Unlock()

			if !limited {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "update.rate_limited",
				slog.Int64("user_id", user.ID),
				slog.String("op", updateKind(c.Update())),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func isCommand(upd tele.Update) bool {
	return upd.Message != nil && strings.HasPrefix(upd.Message.Text, "/")
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
