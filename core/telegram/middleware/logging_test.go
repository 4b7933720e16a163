package middleware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tripbot/core/logger"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"
)

func TestLoggerMiddlewareBuildsContextOnce(t *testing.T) {
	b := offlineBot(t)
	c := messageFrom(b, 1001, 77)

	var rids []string
	inner := func(c tele.Context) error {
		rids = append(rids, logger.RIDFrom(tghelpers.BuildContext(c)))
		return nil
	}
	// Global and per-route copies wrap the same handler.
	h := LoggerMiddleware(LoggerMiddleware(inner))
	require.NoError(t, h(c))

	require.Len(t, rids, 1)
	assert.NotEmpty(t, rids[0])
	assert.Equal(t, int64(1001), logger.UserIDFrom(tghelpers.BuildContext(c)))
	assert.Equal(t, 77, logger.UpdateIDFrom(tghelpers.BuildContext(c)))
}

func TestRecoverMiddlewareSwallowsPanic(t *testing.T) {
	b := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("nil catalog") })
	assert.NoError(t, h(callbackFrom(b, 1001, 5)))

	boom := errors.New("boom")
	h = RecoverMiddleware(func(tele.Context) error { return boom })
	assert.ErrorIs(t, h(callbackFrom(b, 1001, 6)), boom)
}
