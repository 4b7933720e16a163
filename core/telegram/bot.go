package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/core/logger"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/tripbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

const (
	defaultPollTimeout = 10 * time.Second
	// Long polling holds the request open for the poll timeout, so the
	// client deadline must be longer than any configured timeout.
	pollGrace = 15 * time.Second
)

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// PollTimeout is the long polling timeout, 10s unless configured.
func (o PollerOptions) PollTimeout() time.Duration {
	if o.LongPollTimeoutSeconds > 0 {
		return time.Duration(o.LongPollTimeoutSeconds) * time.Second
	}
	return defaultPollTimeout
}

func (o PollerOptions) webhook() bool {
	return strings.EqualFold(strings.TrimSpace(o.RunMode), coreconfig.RunModeWebhook)
}

// BuildPoller returns the webhook listener or the long poller o asks for.
func BuildPoller(o PollerOptions) tele.Poller {
	if !o.webhook() {
		return &tele.LongPoller{Timeout: o.PollTimeout()}
	}
	return &tele.Webhook{
		Listen:   net.JoinHostPort(o.Webhook.Listen, strconv.Itoa(o.Webhook.Port)),
		Endpoint: &tele.WebhookEndpoint{PublicURL: o.Webhook.URL},
	}
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
// Failed calls are not retried; a failed send surfaces to the conversation.
func BuildHTTPClient(pollTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: pollTimeout + pollGrace,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       30 * time.Second,
			TLSHandshakeTimeout:   5 * time.Second,
			ExpectContinueTimeout: time.Second,
		},
	}
}

// NewBot creates the bot for cfg. Updates are handled synchronously in
// arrival order; handlers must only hand work off and return.
func NewBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	if cfg == nil {
		return nil, errors.New("telegram: nil config provided")
	}
	po := PollerOptions{
		RunMode:                cfg.Telegram.RunMode,
		LongPollTimeoutSeconds: cfg.Telegram.LongPollTimeoutSeconds,
		Webhook: WebhookOptions{
			Listen: cfg.Webhook.Listen,
			Port:   cfg.Webhook.Port,
			URL:    cfg.Webhook.URL,
		},
	}

	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:       cfg.Telegram.Token,
		Poller:      BuildPoller(po),
		Client:      BuildHTTPClient(po.PollTimeout()),
		Synchronous: true,
		OnError:     logBotError,
	})
	if err != nil {
		return nil, errors.New("telegram: bot initialization failed: " + tgsender.SanitizeError(err))
	}

	attrs := []slog.Attr{slog.Duration("duration", logger.Took(start))}
	if po.webhook() {
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", bot.Poller.(*tele.Webhook).Listen),
			slog.String("public_url", po.Webhook.URL),
		)
	} else {
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Int("timeout_seconds", int(po.PollTimeout()/time.Second)),
		)
	}
	logger.LogEvent(context.Background(), logger.TG, slog.LevelInfo, "bot.ready", attrs...)
	return bot, nil
}

func logBotError(err error, c tele.Context) {
	if err == nil {
		return
	}
	ctx := context.Background()
	if c != nil {
		ctx = tghelpers.BuildContext(c)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelError, "bot.error",
		slog.String("status", "fail"),
		slog.String("err", tgsender.SanitizeError(err)),
	)
}
