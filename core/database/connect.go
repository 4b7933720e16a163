package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/m3rciful/tripbot/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	readyTimeout   = 30 * time.Second
	readyInterval  = 2 * time.Second
)

// Connect opens and pings the database and sizes the pool.
func Connect(cfg Config) (*sqlx.DB, error) {
	if cfg.Driver == DriverMemory {
		return nil, fmt.Errorf("db connect: driver %q has no SQL connection", cfg.Driver)
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.SQLDriver(), cfg.DSN())
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect", target(cfg,
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect", target(cfg,
		slog.String("status", "ok"),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.Took(start)),
	)...)
	return db, nil
}

// target prefixes attrs with what cfg points at. Credentials never appear.
func target(cfg Config, attrs ...slog.Attr) []slog.Attr {
	out := []slog.Attr{slog.String("db_driver", cfg.Driver)}
	if cfg.Driver == DriverSQLite {
		out = append(out, slog.String("db", cfg.Path))
	} else {
		out = append(out,
			slog.String("host", cfg.Host),
			slog.String("port", cfg.Port),
			slog.String("db", cfg.Name),
		)
	}
	return append(out, attrs...)
}

// WaitReady pings the database every couple of seconds until it answers or
// ctx ends. Containers often start the bot before postgres accepts
// connections.
func WaitReady(ctx context.Context, cfg Config) error {
	db, err := sqlx.Open(cfg.SQLDriver(), cfg.DSN())
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	tick := time.NewTicker(readyInterval)
	defer tick.Stop()
	for {
		err = db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready: %w", errors.Join(ctx.Err(), err))
		case <-tick.C:
		}
	}
}
