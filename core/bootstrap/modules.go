package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/tripbot/core/logger"
)

// Seeder loads reference data and reports how many rows it added. Seeding
// twice must add nothing the second time.
type Seeder interface {
	Seed(ctx context.Context) (int, error)
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context) (int, error)

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context) (int, error) {
	return f(ctx)
}

// RunSeeders runs seeders in order and stops at the first failure.
func RunSeeders(ctx context.Context, seeders ...Seeder) (int, error) {
	start := time.Now()
	total := 0
	for i, s := range seeders {
		if s == nil {
			continue
		}
		n, err := s.Seed(ctx)
		total += n
		if err != nil {
			logger.LogEvent(ctx, logger.SEED, slog.LevelError, "seed.summary",
				slog.String("status", "fail"),
				slog.Int("seeder", i),
				slog.String("err", err.Error()),
			)
			return total, fmt.Errorf("bootstrap: seeder %d: %w", i, err)
		}
	}
	logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "seed.summary",
		slog.String("status", "ok"),
		slog.Int("count", total),
		slog.Duration("duration", logger.Took(start)),
	)
	return total, nil
}
