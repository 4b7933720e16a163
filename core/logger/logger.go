// Package logger provides the bot's structured slog setup: a flat JSON or
// key=value line per event, fed through an asynchronous writer, with
// per-update and per-session fields pulled from the context.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/tripbot/core/buildinfo"
	coreconfig "github.com/m3rciful/tripbot/core/config"
)

const (
	writerQueue       = 64 * 1024
	defaultSampleNum  = 1
	defaultSampleDen  = 50
	traceEnv          = "LOG_TRACE"
	defaultProfile    = "prod"
	defaultComponent  = "app"
	logFilePermission = 0o644
)

var (
	initOnce sync.Once

	closeMu sync.Mutex
	closed  bool
	sink    *asyncWriter
	files   []io.Closer

	levelVar     slog.LevelVar
	debugSampler = newRatioSampler(defaultSampleNum, defaultSampleDen)
	traceAll     bool

	// L is the base logger; component loggers below are derived from it.
	L *slog.Logger

	// DB logs database connection events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// SEED logs catalog seeding.
	SEED *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// Flow logs the order conversation.
	Flow *slog.Logger
	// Admin logs the operator conversation.
	Admin *slog.Logger
	// Session logs session dispatch and snapshot persistence.
	Session *slog.Logger
	// Store logs catalog/record store activity.
	Store *slog.Logger
)

func init() {
	// Until InitLogger runs (tests, CLI subcommands) everything goes to the
	// slog default.
	setBase(slog.Default())
}

func setBase(base *slog.Logger) {
	L = base
	DB = base.With("component", "db")
	MIG = base.With("component", "db.migrate")
	SEED = base.With("component", "db.seed")
	TG = base.With("component", "tg")
	TWire = base.With("component", "tg.wire")
	Flow = base.With("component", "flow")
	Admin = base.With("component", "flow.admin")
	Session = base.With("component", "session")
	Store = base.With("component", "store")
}

// settings is the logging section of the config resolved to concrete values.
type settings struct {
	level    slog.Level
	format   logFormat
	order    []string
	num, den int
	dir      string
	file     string
	profile  string
}

func resolve(cfg *coreconfig.Config) settings {
	s := settings{
		level:   slog.LevelInfo,
		format:  formatJSON,
		order:   append([]string(nil), defaultKeyOrder...),
		num:     defaultSampleNum,
		den:     defaultSampleDen,
		profile: defaultProfile,
	}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		s.level = slog.LevelDebug
	case "warn", "warning":
		s.level = slog.LevelWarn
	case "error":
		s.level = slog.LevelError
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		s.format = formatKV
	case "json":
	default:
		// Debug and dev profiles read logs in a terminal.
		if s.profile == "debug" || s.profile == "dev" {
			s.format = formatKV
		}
	}
	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		var order []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				order = append(order, k)
			}
		}
		if len(order) > 0 {
			s.order = order
		}
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		// "0" turns sampling off; anything unparsable keeps the default.
		if num, den := parseRatioSpec(spec); num == 0 && den == 0 {
			s.num, s.den = 0, 0
		} else if num > 0 && den > 0 {
			s.num, s.den = num, den
		}
	}
	s.dir = strings.TrimSpace(lc.Dir)
	s.file = strings.TrimSpace(lc.BotFile)
	return s
}

// InitLogger configures the global structured logger. Only the first call
// has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		s := resolve(cfg)
		levelVar.Set(s.level)
		debugSampler.Set(s.num, s.den)
		traceAll = truthy(os.Getenv(traceEnv))

		outputs := []io.Writer{os.Stdout}
		if s.dir != "" && s.file != "" {
			f, openErr := openLogFile(s.dir, s.file)
			if openErr != nil {
				err = openErr
				return
			}
			outputs = append(outputs, f)
			files = append(files, f)
		}
		sink = newAsyncWriter(outputs, writerQueue)

		base := slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   sink,
			format:   s.format,
			keyOrder: s.order,
		}))
		slog.SetDefault(base)
		setBase(base)

		base.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", defaultComponent),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", s.profile),
		)
	})
	return err
}

func openLogFile(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

// Shutdown flushes buffered log output and closes opened sinks. Calls after
// the first are no-ops.
func Shutdown() error {
	closeMu.Lock()
	defer closeMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	if sink != nil {
		errs = append(errs, sink.Flush(), sink.Close())
	}
	for _, f := range files {
		errs = append(errs, f.Close())
	}
	return errors.Join(errs...)
}

// LogEvent writes attrs with a leading event attribute using logg, the context logger, or L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		logg = L
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug-level event under component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, L.With("component", component), slog.LevelDebug, event, attrs...)
}

// Error logs an error-level event under component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	LogEvent(ctx, L.With("component", component), slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug line should be
// written. LOG_TRACE=1 lets every line through.
func ShouldSampleDebug() bool {
	return traceAll || debugSampler.Allow()
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
