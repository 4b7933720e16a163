package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	metaKey ctxKey = iota
	loggerKey
)

// meta is the correlation data carried by one update through every layer.
// Zero fields are omitted from log lines.
type meta struct {
	rid      string
	updateID int
	userID   int64
	chatID   int64
	handler  string
	state    string
	mode     string
}

func metaFrom(ctx context.Context) meta {
	if ctx == nil {
		return meta{}
	}
	m, _ := ctx.Value(metaKey).(meta)
	return m
}

func withMeta(ctx context.Context, edit func(*meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, metaKey, m)
}

// WithLogger stores log in ctx; LogEvent falls back to it when no logger is passed.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, log)
}

// FromContext returns the logger stored by WithLogger, or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *meta) { m.rid = rid })
}

// RIDFrom returns the correlation id or "".
func RIDFrom(ctx context.Context) string { return metaFrom(ctx).rid }

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *meta) {
		m.updateID = updateID
		m.userID = userID
		m.chatID = chatID
	})
}

// UpdateIDFrom returns the update id or 0.
func UpdateIDFrom(ctx context.Context) int { return metaFrom(ctx).updateID }

// UserIDFrom returns the user id or 0.
func UserIDFrom(ctx context.Context) int64 { return metaFrom(ctx).userID }

// ChatIDFrom returns the chat id or 0.
func ChatIDFrom(ctx context.Context) int64 { return metaFrom(ctx).chatID }

// WithHandler names the Telegram handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.handler = handler })
}

// WithSession records the conversation state and mode an event is applied
// to, so machine logs carry them without repeating the attrs.
func WithSession(ctx context.Context, state, mode string) context.Context {
	return withMeta(ctx, func(m *meta) {
		m.state = state
		m.mode = mode
	})
}

// addContextFields copies meta into fields without overriding explicit attrs.
func addContextFields(ctx context.Context, fields map[string]any) {
	m := metaFrom(ctx)
	setDefault := func(key string, val any, present bool) {
		if !present {
			return
		}
		if _, ok := fields[key]; !ok {
			fields[key] = val
		}
	}
	setDefault("rid", m.rid, m.rid != "")
	setDefault("update_id", m.updateID, m.updateID != 0)
	setDefault("user_id", m.userID, m.userID != 0)
	setDefault("chat_id", m.chatID, m.chatID != 0)
	setDefault("handler", m.handler, m.handler != "")
	setDefault("state", m.state, m.state != "")
	setDefault("mode", m.mode, m.mode != "")
}
