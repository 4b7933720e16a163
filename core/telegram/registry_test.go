package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tripbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Buyurtma berish"}))
	require.NoError(t, reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "Statistika", Scope: commands.ScopeOperator}))
	require.NoError(t, reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Bekor qilish", Aliases: []string{"stop"}}))
	require.NoError(t, reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Debug", Scope: commands.ScopeHidden}))
	assert.Error(t, reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "no slash"}))
	assert.Error(t, reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "duplicate"}))
	assert.Error(t, reg.RegisterCommand("/users", commands.Command{Description: "no handler"}))

	assert.Len(t, reg.Commands(), 4)
	assert.Equal(t, []tele.Command{
		{Text: "/cancel", Description: "Bekor qilish"},
		{Text: "/start", Description: "Buyurtma berish"},
	}, reg.ListCommands(false))
	assert.Equal(t, []tele.Command{
		{Text: "/cancel", Description: "Bekor qilish"},
		{Text: "/start", Description: "Buyurtma berish"},
		{Text: "/stats", Description: "Statistika"},
	}, reg.ListCommands(true))

	key, cmd, ok := reg.LookupCommand("stop")
	require.True(t, ok)
	assert.Equal(t, "/cancel", key)
	assert.Equal(t, "Bekor qilish", cmd.Description)

	key, _, ok = reg.LookupCommand("debug")
	require.True(t, ok)
	assert.Equal(t, "/debug", key)

	_, _, ok = reg.LookupCommand("/unknown")
	assert.False(t, ok)
}

func TestRegistryCallbacks(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("opt", noop))
	assert.Error(t, reg.RegisterCallback("opt", noop))
	assert.Error(t, reg.RegisterCallback("", noop))

	_, ok := reg.GetCallback("opt")
	assert.True(t, ok)
	assert.Equal(t, []string{"opt"}, reg.ListCallbacks())
}
