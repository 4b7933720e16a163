package telegram

import (
	"context"
	"errors"
	"log/slog"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/logger"
	tgsender "github.com/m3rciful/tripbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware describes a global bot middleware to be registered via bot.Use.
type Middleware struct {
	Name string
	Use  func(next tele.HandlerFunc) tele.HandlerFunc
}

// Route declares a single bot handler bound to an arbitrary endpoint.
// Endpoint values are passed directly to tele.Bot.Handle.
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls the behaviour of RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry
	// Bot is built with NewBot when nil.
	Bot *tele.Bot

	DispatcherOptions tgsender.Options
	// Dispatcher is owned by RunTelegram and closed after OnStop.
	Dispatcher *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// KeepWebhook skips removing a stale webhook before long polling.
	KeepWebhook bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes runtime components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram wires opts into the bot and runs it until ctx is done or the
// poller stops on its own. OnStop runs before the sender queue closes so
// pending notifications still go out.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if opts.Config == nil {
		return errors.New("telegram: nil config provided")
	}
	rt, err := opts.runtime()
	if err != nil {
		return err
	}
	defer rt.Dispatcher.Close()

	cfg := opts.Config
	if !opts.KeepWebhook && cfg.Telegram.RunMode == coreconfig.RunModeLongpoll {
		removeWebhook(ctx, rt.Bot)
	}
	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			rt.Bot.Use(mw.Use)
		}
	}
	for _, r := range opts.Routes {
		if r.Endpoint != nil && r.Handler != nil {
			rt.Bot.Handle(r.Endpoint, r.Handler)
		}
	}
	InitBotCommands(rt.Bot, rt.Registry, cfg.Telegram.AdminID)

	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		rt.Bot.Start()
	}()
	select {
	case <-ctx.Done():
		rt.Bot.Stop()
		<-done
	case <-done:
	}

	if opts.OnStop != nil {
		return opts.OnStop(context.WithoutCancel(ctx), rt)
	}
	return nil
}

func (o RunOptions) runtime() (Runtime, error) {
	rt := Runtime{Bot: o.Bot, Dispatcher: o.Dispatcher, Registry: o.Registry}
	if rt.Bot == nil {
		bot, err := NewBot(o.Config)
		if err != nil {
			if o.Dispatcher != nil {
				o.Dispatcher.Close()
			}
			return Runtime{}, err
		}
		rt.Bot = bot
	}
	if rt.Registry == nil {
		rt.Registry = NewRegistry()
	}
	if rt.Dispatcher == nil {
		rt.Dispatcher = tgsender.NewDispatcher(o.DispatcherOptions)
	}
	return rt, nil
}

// removeWebhook clears a webhook left by a previous webhook deployment;
// Telegram refuses getUpdates while one is set. Failure is logged only.
func removeWebhook(ctx context.Context, bot *tele.Bot) {
	if err := bot.RemoveWebhook(false); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "webhook.remove",
			slog.String("status", "fail"),
			slog.String("err", tgsender.SanitizeError(err)),
		)
		return
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "webhook.remove", slog.String("status", "ok"))
}
