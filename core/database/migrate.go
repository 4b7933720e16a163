package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/tripbot/core/logger"
)

// RunMigrations applies all up migrations found in fsys under the directory
// named after cfg.Driver ("postgres" or "sqlite").
func RunMigrations(cfg Config, fsys fs.FS) error {
	ctx := context.Background()
	if cfg.Driver == DriverMemory {
		logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
			slog.String("status", "skip"),
			slog.String("db_driver", cfg.Driver),
		)
		return nil
	}
	if cfg.Driver == DriverPostgres {
		waitCtx, cancel := context.WithTimeout(ctx, readyTimeout)
		err := WaitReady(waitCtx, cfg)
		cancel()
		if err != nil {
			return migrateFailed(ctx, "wait", err)
		}
	}

	files := upFiles(fsys, cfg.Driver)
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "resolve",
		fileAttrs(files, slog.String("path", cfg.Driver))...)

	src, err := iofs.New(fsys, cfg.Driver)
	if err != nil {
		return migrateFailed(ctx, "source", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
	if err != nil {
		return migrateFailed(ctx, "init", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.LogEvent(ctx, logger.MIG, slog.LevelWarn, "close",
				slog.String("err", errors.Join(srcErr, dbErr).Error()))
		}
	}()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return migrateFailed(ctx, "apply", err)
	}
	to, _, _ := m.Version()

	applied := appliedBetween(files, uint64(from), uint64(to))
	if len(applied) > 0 {
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "apply", fileAttrs(applied)...)
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "summary",
		slog.String("status", "ok"),
		slog.String("db_driver", cfg.Driver),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

func migrateFailed(ctx context.Context, step string, err error) error {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, step,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	return fmt.Errorf("migrate %s: %w", step, err)
}

// fileAttrs summarizes a list of migration files for a log line.
func fileAttrs(files []string, attrs ...slog.Attr) []slog.Attr {
	attrs = append(attrs, slog.Int("files_total", len(files)))
	preview, truncated := logger.SummarizeStrings(files, 6)
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

// upFiles lists dir's *.up.sql files in version order.
func upFiles(fsys fs.FS, dir string) []string {
	names, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil
	}
	for i, n := range names {
		names[i] = path.Base(n)
	}
	sort.Strings(names)
	return names
}

// appliedBetween returns the files whose version is in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		prefix, _, _ := strings.Cut(f, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err == nil && v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
