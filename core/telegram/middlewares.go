package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global chain in order: panic recovery, the
// per-user rate limit when rate_limit.interval_ms is set, receipt logging.
// onLimited answers a throttled update; nil drops it silently.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		// Normalize already lowercased and validated the exclusions.
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		chain = append(chain, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Exclude:   exclude,
				OnLimited: onLimited,
			}),
		})
	}

	return append(chain, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
}
