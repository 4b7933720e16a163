package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// Registry maps commands, callback uniques and free text to handlers.
// Registration happens before the bot starts; lookups may run concurrently.
type Registry struct {
	mu        sync.RWMutex
	commands  map[string]commands.Command
	callbacks map[string]tele.HandlerFunc

	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands:  make(map[string]commands.Command),
		callbacks: make(map[string]tele.HandlerFunc),
	}
}

// RegisterCommand adds cmd under name, which must start with a slash.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) error {
	switch {
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		return r.rejected("command", name, "bad_name")
	case cmd.Handler == nil || cmd.Description == "":
		return r.rejected("command", name, "incomplete")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		return r.rejected("command", name, "duplicate")
	}
	r.commands[name] = cmd
	return nil
}

// RegisterCallback routes callbacks whose unique equals key to handler.
func (r *Registry) RegisterCallback(key string, handler tele.HandlerFunc) error {
	if key == "" || handler == nil {
		return r.rejected("callback", key, "incomplete")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.callbacks[key]; exists {
		return r.rejected("callback", key, "duplicate")
	}
	r.callbacks[key] = handler
	return nil
}

func (r *Registry) rejected(kind, name, reason string) error {
	logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register."+kind+".rejected",
		slog.String("name", name),
		slog.String("cause", reason),
	)
	return fmt.Errorf("telegram: %s %q rejected: %s", kind, name, reason)
}

// ListCommands returns the menu entries sorted by name: the public menu,
// or the operator menu when operator is set.
func (r *Registry) ListCommands(operator bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for name, cmd := range r.commands {
		if cmd.InMenu(operator) {
			list = append(list, tele.Command{Text: name, Description: cmd.Description})
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves a name or alias, with or without the slash, to the
// registered command and its canonical name.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	name = "/" + strings.TrimPrefix(name, "/")
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if "/"+strings.TrimPrefix(alias, "/") == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of the registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// GetCallback returns the handler registered for key.
func (r *Registry) GetCallback(key string) (tele.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.callbacks[key]
	return h, ok
}

// ListCallbacks returns the registered keys, sorted.
func (r *Registry) ListCallbacks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.callbacks))
	for k := range r.callbacks {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetTextFallback sets the handler for text that names no command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.textFallback = h
}

// TextFallback returns the handler set by SetTextFallback.
func (r *Registry) TextFallback() tele.HandlerFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.textFallback
}

// InitBotCommands publishes the public command menu. When operatorID is set
// the operator's private chat gets the operator menu instead.
func InitBotCommands(bot *tele.Bot, reg *Registry, operatorID int64) {
	setCommands(bot, "public", reg.ListCommands(false))
	if operatorID == 0 {
		return
	}
	setCommands(bot, "operator", reg.ListCommands(true),
		tele.CommandScope{Type: tele.CommandScopeChat, ChatID: operatorID})
}

func setCommands(bot *tele.Bot, scope string, list []tele.Command, opts ...any) {
	args := append([]any{list}, opts...)
	if err := bot.SetCommands(args...); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("scope", scope),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.String("scope", scope),
		slog.Int("count", len(list)),
	)
}
