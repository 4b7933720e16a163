package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	coreconfig "github.com/m3rciful/tripbot/core/config"
)

func chainNames(mws []Middleware) []string {
	names := make([]string, 0, len(mws))
	for _, mw := range mws {
		names = append(names, mw.Name)
	}
	return names
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	assert.Equal(t, []string{"recover", "logger"}, chainNames(DefaultMiddlewares(nil, nil)))

	cfg := &coreconfig.Config{RateLimit: coreconfig.RateLimitConfig{
		IntervalMS:     700,
		ExcludeUpdates: []string{coreconfig.UpdateCallback},
	}}
	assert.Equal(t, []string{"recover", "rate_limit", "logger"}, chainNames(DefaultMiddlewares(cfg, nil)))
}
