// Package transport connects the conversation core to Telegram.
package transport

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/m3rciful/tripbot/core/logger"
	"github.com/m3rciful/tripbot/core/telegram/keyboard"
	tgsender "github.com/m3rciful/tripbot/core/telegram/sender"
	"github.com/m3rciful/tripbot/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// OptionUnique is the callback unique shared by every choice button.
const OptionUnique = "opt"

// Labels up to this many runes are laid out two per row.
const shortLabelRunes = 16

// API is the part of *tele.Bot the adapter needs.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Messenger implements flow.Messenger on top of the Bot API.
type Messenger struct {
	api API

	mu   sync.Mutex
	last map[int64]tele.StoredMessage
}

var _ flow.Messenger = (*Messenger)(nil)

// NewMessenger wraps api.
func NewMessenger(api API) *Messenger {
	return &Messenger{api: api, last: make(map[int64]tele.StoredMessage)}
}

// SendText sends plain text to the user's private chat.
func (m *Messenger) SendText(ctx context.Context, userID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.api.Send(tele.ChatID(userID), text)
	return err
}

// SendOptions sends text with an inline keyboard and remembers the message
// so the next EditLastMessage can replace it.
func (m *Messenger) SendOptions(ctx context.Context, userID int64, text string, opts []flow.Option) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.api.Send(tele.ChatID(userID), text, OptionsMarkup(opts))
	if err != nil {
		return err
	}
	if msg != nil {
		chatID := userID
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		m.mu.Lock()
		m.last[userID] = tele.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: chatID}
		m.mu.Unlock()
	}
	return nil
}

// EditLastMessage replaces the last keyboard message of the user with text,
// dropping its buttons. Without such a message, or when the edit fails, the
// text is sent as a new message.
func (m *Messenger) EditLastMessage(ctx context.Context, userID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	stored, ok := m.last[userID]
	delete(m.last, userID)
	m.mu.Unlock()

	if ok {
		_, err := m.api.Edit(stored, text)
		if err == nil {
			return nil
		}
		logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "message.edit",
			slog.Int64("user_id", userID),
			slog.String("status", "fallback"),
			slog.String("err", tgsender.SanitizeError(err)),
		)
	}
	return m.SendText(ctx, userID, text)
}

// OptionsMarkup lays opts out as an inline keyboard: short labels two per
// row, longer ones on a row of their own.
func OptionsMarkup(opts []flow.Option) *tele.ReplyMarkup {
	btns := make([]keyboard.Button, 0, len(opts))
	for _, o := range opts {
		btns = append(btns, keyboard.Button{Text: o.Label, Unique: OptionUnique, Data: o.Value})
	}
	return keyboard.Grid(btns, 2, shortLabelRunes)
}
