package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tripbot/core/bootstrap"
	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/logger"
	coretelegram "github.com/m3rciful/tripbot/core/telegram"
	"github.com/m3rciful/tripbot/core/telegram/router"
	tgsender "github.com/m3rciful/tripbot/core/telegram/sender"
	"github.com/m3rciful/tripbot/internal/flow"
	"github.com/m3rciful/tripbot/internal/session"
	"github.com/m3rciful/tripbot/internal/storage"
	"github.com/m3rciful/tripbot/internal/transport"
	"github.com/m3rciful/tripbot/migrations"
)

// Options replaces process-level collaborators, mostly in tests.
type Options struct {
	LoggerInit func(*coreconfig.Config) error
	NewBot     func(*coreconfig.Config) (*tele.Bot, error)
}

// App owns the long-lived resources of the bot process.
type App struct {
	cfg    *Config
	newBot func(*coreconfig.Config) (*tele.Bot, error)

	db     *sqlx.DB
	badger *badger.DB

	Store    storage.Store
	Sessions session.Store[flow.Session]
	Catalog  *flow.Catalog

	dispatcher *flow.Dispatcher
}

// Bootstrap prepares the app for `tripbot run`: storage, sessions and the
// default catalog.
func Bootstrap(cfg *Config) (*App, error) {
	a, err := New(cfg, Options{})
	if err != nil {
		return nil, err
	}
	if _, err := a.Seed(context.Background()); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// New runs the shared bootstrap pipeline and opens the stores named by cfg.
func New(cfg *Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config provided")
	}
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
		LoggerInit: opts.LoggerInit,
	})
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, newBot: opts.NewBot, db: res.DB}
	if a.newBot == nil {
		a.newBot = coretelegram.NewBot
	}
	if res.DB != nil {
		a.Store = storage.NewSQLStore(res.DB)
	} else {
		a.Store = storage.NewMemoryStore()
	}

	if dir := cfg.Sessions.BadgerDir; dir != "" {
		bdb, err := session.OpenBadger(dir)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app: open sessions: %w", err)
		}
		a.badger = bdb
		a.Sessions = session.NewBadgerStore[flow.Session](bdb)
	} else {
		a.Sessions = session.NewMemoryStore[flow.Session]()
	}

	a.Catalog = flow.NewCatalog(a.Store, cfg.Catalog.DefaultRoutes, cfg.Catalog.DefaultVehicles)

	logger.LogEvent(context.Background(), logger.TWire, slog.LevelInfo, "app.bootstrap",
		slog.String("status", "ok"),
		slog.String("db_driver", cfg.Database.Driver),
		slog.Bool("durable_sessions", a.badger != nil),
	)
	return a, nil
}

// Seed fills an empty route or vehicle catalog with the configured defaults.
func (a *App) Seed(ctx context.Context) (int, error) {
	return bootstrap.RunSeeders(ctx, a.Catalog)
}

// TelegramRunOptions builds the bot, the conversation core and the routes
// that feed it.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := &a.cfg.Config
	bot, err := a.newBot(core)
	if err != nil {
		return coretelegram.RunOptions{}, err
	}

	queue := tgsender.NewDispatcher(tgsender.Options{
		QueueSize: a.cfg.Sender.QueueSize,
		Workers:   a.cfg.Sender.Workers,
		Timeout:   time.Duration(a.cfg.Sender.TimeoutSeconds) * time.Second,
	})

	machine := flow.NewMachine(flow.Options{
		Store:      a.Store,
		Messenger:  transport.NewMessenger(bot),
		Notifier:   transport.NewNotifier(bot, queue, core.Telegram.AdminID),
		OperatorID: core.Telegram.AdminID,
		Catalog:    a.Catalog,
	})
	a.dispatcher = flow.NewDispatcher(machine, a.Sessions)

	reg := coretelegram.NewRegistry()
	if err := transport.Register(reg, a.dispatcher); err != nil {
		queue.Close()
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownMedia: func(c tele.Context) error {
			return c.Send(flow.MsgTypeText)
		},
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Bot:         bot,
		Dispatcher:  queue,
		Middlewares: coretelegram.DefaultMiddlewares(core, func(c tele.Context) error {
			return c.Send(flow.MsgTooFast)
		}),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close drains the conversation lanes and then releases the stores. It is
// safe to call more than once.
func (a *App) Close() error {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	var errs []error
	if a.badger != nil {
		if err := a.badger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close sessions: %w", err))
		}
		a.badger = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("app: close database: %w", err))
		}
		a.db = nil
	}
	return errors.Join(errs...)
}
