package transport

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/m3rciful/tripbot/core/logger"
	tg "github.com/m3rciful/tripbot/core/telegram"
	"github.com/m3rciful/tripbot/core/telegram/callbacks"
	"github.com/m3rciful/tripbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/tripbot/core/telegram/helpers"
	"github.com/m3rciful/tripbot/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// Submitter accepts events for asynchronous processing. *flow.Dispatcher
// implements it.
type Submitter interface {
	Submit(ctx context.Context, ev flow.Event) error
}

type commandDef struct {
	name        string
	description string
	operator    bool
}

var botCommands = []commandDef{
	{flow.CommandStart, "Buyurtma berishni boshlash", false},
	{flow.CommandHelp, "Yordam", false},
	{flow.CommandCancel, "Jarayonni bekor qilish", false},
	{flow.CommandAdmin, "Admin panel", true},
	{flow.CommandAdminHelp, "Admin uchun yordam", true},
	{flow.CommandStats, "Buyurtmalar statistikasi", true},
	{flow.CommandUsers, "Foydalanuvchilar soni", true},
}

// Register binds every inbound path to sub: commands become command events,
// presses on option buttons become option events and any other text becomes
// a text event. Handlers only enqueue, so they return at once.
func Register(reg *tg.Registry, sub Submitter) error {
	for _, def := range botCommands {
		name := def.name
		scope := commands.ScopePublic
		if def.operator {
			scope = commands.ScopeOperator
		}
		err := reg.RegisterCommand("/"+name, commands.Command{
			Description: def.description,
			Scope:       scope,
			Handler: func(c tele.Context) error {
				return submit(c, sub, flow.EventCommand, name)
			},
		})
		if err != nil {
			return err
		}
	}
	if err := reg.RegisterCallback(OptionUnique, func(c tele.Context) error {
		return submit(c, sub, flow.EventOption, callbacks.CallbackPayload(c))
	}); err != nil {
		return err
	}
	reg.SetTextFallback(func(c tele.Context) error {
		return submit(c, sub, flow.EventText, c.Text())
	})
	return nil
}

func submit(c tele.Context, sub Submitter, kind flow.EventKind, payload string) error {
	user := c.Sender()
	if user == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	ev := flow.Event{
		UserID:      user.ID,
		DisplayName: DisplayName(user),
		Kind:        kind,
		Payload:     payload,
	}
	if err := sub.Submit(ctx, ev); err != nil {
		logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "update.dropped",
			slog.Int64("user_id", user.ID),
			slog.String("op", string(kind)),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return nil
}

// DisplayName is the name shown to the operator for user.
func DisplayName(user *tele.User) string {
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	switch {
	case name != "":
		return name
	case user.Username != "":
		return "@" + user.Username
	}
	return strconv.FormatInt(user.ID, 10)
}
