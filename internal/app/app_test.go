package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	coredatabase "github.com/m3rciful/tripbot/core/database"
	coretelegram "github.com/m3rciful/tripbot/core/telegram"
	"github.com/m3rciful/tripbot/internal/flow"
)

type sentMessage struct {
	ChatID string
	Text   string
}

// fakeTelegram answers Bot API calls and records every sendMessage.
type fakeTelegram struct {
	srv *httptest.Server

	mu   sync.Mutex
	sent []sentMessage
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()
	f := &fakeTelegram{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
			return
		}
		var params map[string]any
		_ = json.NewDecoder(r.Body).Decode(&params)
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{
			ChatID: toString(params["chat_id"]),
			Text:   toString(params["text"]),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1001,"type":"private"}}}`))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		b, _ := json.Marshal(x)
		return string(b)
	}
	return ""
}

func (f *fakeTelegram) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTelegram) newBot(cfg *coreconfig.Config) (*tele.Bot, error) {
	return tele.NewBot(tele.Settings{
		URL:         f.srv.URL,
		Token:       cfg.Telegram.Token,
		Offline:     true,
		Synchronous: true,
	})
}

func noLogger(*coreconfig.Config) error { return nil }

func memoryConfig() *Config {
	return &Config{
		Config: coreconfig.Config{
			Telegram: coreconfig.TelegramConfig{Token: "1:test", AdminID: 9},
		},
		Database: coredatabase.Config{Driver: coredatabase.DriverMemory},
	}
}

func findRoute(t *testing.T, routes []coretelegram.Route, endpoint string) tele.HandlerFunc {
	t.Helper()
	for _, r := range routes {
		if r.Endpoint == endpoint {
			return r.Handler
		}
	}
	t.Fatalf("no route for %v", endpoint)
	return nil
}

func TestNewSeedsDefaultCatalogOnce(t *testing.T) {
	cfg := memoryConfig()
	cfg.Catalog.DefaultRoutes = []string{"Xiva - Toshkent"}
	a, err := New(cfg, Options{LoggerInit: noLogger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	ctx := context.Background()
	n, err := a.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1+len(flow.DefaultVehicles), n)

	n, err = a.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	routes, err := a.Store.ListRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Xiva - Toshkent"}, routes)
}

func TestRestartKeepsRemovedCatalogEntries(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database = coredatabase.Config{
		Driver: coredatabase.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "tripbot.db"),
	}
	ctx := context.Background()

	a, err := New(cfg, Options{LoggerInit: noLogger})
	require.NoError(t, err)
	_, err = a.Seed(ctx)
	require.NoError(t, err)
	removed, err := a.Store.RemoveVehicle(ctx, "Kaptiva")
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, a.Close())

	a, err = New(cfg, Options{LoggerInit: noLogger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	n, err := a.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	vehicles, err := a.Store.ListVehicles(ctx)
	require.NoError(t, err)
	assert.NotContains(t, vehicles, "Kaptiva")
	assert.Len(t, vehicles, len(flow.DefaultVehicles)-1)
}

func TestNewOpensBadgerSessions(t *testing.T) {
	cfg := memoryConfig()
	cfg.Sessions.BadgerDir = filepath.Join(t.TempDir(), "sessions")
	a, err := New(cfg, Options{LoggerInit: noLogger})
	require.NoError(t, err)

	ctx := context.Background()
	s := flow.IdleSession(1001)
	require.NoError(t, a.Sessions.Put(ctx, 1001, s))
	got, ok, err := a.Sessions.Get(ctx, 1001)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, s, got)

	require.NoError(t, a.Close())
	require.NoError(t, a.Close())
}

func TestStartCommandReachesTelegram(t *testing.T) {
	tg := newFakeTelegram(t)
	a, err := New(memoryConfig(), Options{LoggerInit: noLogger, NewBot: tg.newBot})
	require.NoError(t, err)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.Bot)
	require.NotNil(t, opts.Dispatcher)
	assert.NotEmpty(t, opts.Middlewares)

	start := findRoute(t, opts.Routes, "/start")
	c := opts.Bot.NewContext(tele.Update{
		ID: 1,
		Message: &tele.Message{
			Sender: &tele.User{ID: 1001, FirstName: "Dilshod"},
			Chat:   &tele.Chat{ID: 1001, Type: tele.ChatPrivate},
			Text:   "/start",
		},
	})
	require.NoError(t, start(c))

	// OnStop drains the conversation lanes before the sender closes.
	require.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
	opts.Dispatcher.Close()

	sent := tg.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "1001", sent[0].ChatID)
	assert.Equal(t, flow.MsgWelcome, sent[0].Text)

	u, ok, err := a.Store.GetUser(context.Background(), 1001)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Dilshod", u.DisplayName)
}

func TestRateLimitKeepsCommandsAndAnswersBursts(t *testing.T) {
	tg := newFakeTelegram(t)
	cfg := memoryConfig()
	cfg.RateLimit.IntervalMS = 60_000
	a, err := New(cfg, Options{LoggerInit: noLogger, NewBot: tg.newBot})
	require.NoError(t, err)
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)

	for _, mw := range opts.Middlewares {
		opts.Bot.Use(mw.Use)
	}
	for _, r := range opts.Routes {
		opts.Bot.Handle(r.Endpoint, r.Handler)
	}
	for i, text := range []string{"/start", "/cancel", "salom", "salom"} {
		opts.Bot.ProcessUpdate(tele.Update{
			ID: i + 1,
			Message: &tele.Message{
				Sender: &tele.User{ID: 1001},
				Chat:   &tele.Chat{ID: 1001, Type: tele.ChatPrivate},
				Text:   text,
			},
		})
	}
	require.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
	opts.Dispatcher.Close()

	var texts []string
	for _, m := range tg.messages() {
		texts = append(texts, m.Text)
	}
	require.Len(t, texts, 4)
	assert.Contains(t, texts, flow.MsgWelcome)
	assert.Contains(t, texts, flow.MsgCancelled)
	assert.Contains(t, texts, flow.MsgTooFast)
}

func TestUnknownMediaAsksForText(t *testing.T) {
	tg := newFakeTelegram(t)
	a, err := New(memoryConfig(), Options{LoggerInit: noLogger, NewBot: tg.newBot})
	require.NoError(t, err)
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = opts.OnStop(context.Background(), coretelegram.Runtime{})
		opts.Dispatcher.Close()
	})

	photo := findRoute(t, opts.Routes, tele.OnPhoto)
	c := opts.Bot.NewContext(tele.Update{
		ID: 2,
		Message: &tele.Message{
			Sender: &tele.User{ID: 1001},
			Chat:   &tele.Chat{ID: 1001, Type: tele.ChatPrivate},
			Photo:  &tele.Photo{},
		},
	})
	require.NoError(t, photo(c))

	sent := tg.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, flow.MsgTypeText, sent[0].Text)
}

func TestLoadReadsEveryBotSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := strings.Join([]string{
		"telegram:",
		"  token: 1:file",
		"  admin_id: 9",
		"database:",
		"  driver: sqlite",
		"sessions:",
		"  badger_dir: ' ./sessions '",
		"catalog:",
		"  default_routes: [Xorazmdan Buxoroga]",
		"  default_vehicles: [Cobalt, Malibu]",
		"sender:",
		"  workers: 2",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, coredatabase.DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "./sessions", cfg.Sessions.BadgerDir)
	assert.Equal(t, []string{"Xorazmdan Buxoroga"}, cfg.Catalog.DefaultRoutes)
	assert.Equal(t, []string{"Cobalt", "Malibu"}, cfg.Catalog.DefaultVehicles)
	assert.Equal(t, 2, cfg.Sender.Workers)
	assert.Equal(t, coreconfig.RunModeLongpoll, cfg.CoreConfig().Telegram.RunMode)
}

func TestLoadRejectsNegativeSender(t *testing.T) {
	cfg := memoryConfig()
	cfg.Sender.Workers = -1
	assert.Error(t, cfg.Normalize())
}
