// Package helpers bridges tele.Context and the context.Context used by the
// rest of the bot for logging.
package helpers

import (
	"context"
	"time"

	"github.com/m3rciful/tripbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	ctxStoreKey    = "tripbot.ctx"
	updateStartKey = "update_start"
)

// Identity returns the update, user and chat ids of c. Missing parts are 0.
func Identity(c tele.Context) (updateID int, userID, chatID int64) {
	updateID = c.Update().ID
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	return updateID, userID, chatID
}

// NewContext builds a fresh logging context for c, stores it on c and
// records when handling started.
func NewContext(c tele.Context) context.Context {
	updateID, userID, chatID := Identity(c)
	ctx := logger.WithRID(context.Background(), logger.BuildRID(updateID, chatID, userID))
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	c.Set(ctxStoreKey, ctx)
	c.Set(updateStartKey, time.Now())
	return ctx
}

// BuildContext returns the context stored on c, creating it on first use.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := c.Get(ctxStoreKey).(context.Context); ok {
		return ctx
	}
	return NewContext(c)
}

// UpdateStart reports when NewContext ran for c.
func UpdateStart(c tele.Context) (time.Time, bool) {
	t, ok := c.Get(updateStartKey).(time.Time)
	return t, ok
}

// WithHandler tags the stored context with the serving handler's name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := logger.WithHandler(BuildContext(c), handler)
	c.Set(ctxStoreKey, ctx)
	return ctx
}
