package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/tripbot/core/buildinfo"
	coreconfig "github.com/m3rciful/tripbot/core/config"
	"github.com/m3rciful/tripbot/internal/app"
	"github.com/m3rciful/tripbot/internal/storage"
)

func testOptions() *RootOptions {
	return &RootOptions{
		loggerInit:     func(*coreconfig.Config) error { return nil },
		shutdownLogger: func() error { return nil },
	}
}

func writeConfig(t *testing.T, database ...string) string {
	t.Helper()
	lines := append([]string{
		"telegram:",
		"  token: 1:test",
		"  admin_id: 9",
		"database:",
	}, database...)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(testOptions())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tripbot", cmd.Use)
	assert.Equal(t, buildinfo.String(), cmd.Version)

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "migrate", "orders", "seed"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestOrdersLimitFlag(t *testing.T) {
	cmd := NewRootCommand()
	orders, _, err := cmd.Find([]string{"orders"})
	require.NoError(t, err)
	flag := orders.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, buildinfo.Version)
}

func TestMemoryDriverCommands(t *testing.T) {
	path := writeConfig(t, "  driver: memory")

	out, err := execute(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to migrate")

	out, err = execute(t, "--config", path, "orders")
	require.NoError(t, err)
	assert.Equal(t, "no orders yet\n", out)
}

func TestConfigPathFromEnvironment(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "  driver: memory"))
	out, err := execute(t, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 8 catalog entries\n", out)
}

func TestMissingConfigFails(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "orders")
	assert.Error(t, err)
}

func TestOrdersRejectsNonPositiveLimit(t *testing.T) {
	path := writeConfig(t, "  driver: memory")
	_, err := execute(t, "--config", path, "orders", "--limit", "0")
	assert.ErrorContains(t, err, "--limit")
}

func TestSQLiteLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tripbot.db")
	path := writeConfig(t, "  driver: sqlite", "  path: "+dbPath)

	out, err := execute(t, "--config", path, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema is up to date\n", out)

	out, err = execute(t, "--config", path, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 8 catalog entries\n", out)

	out, err = execute(t, "--config", path, "seed")
	require.NoError(t, err)
	assert.Equal(t, "seeded 0 catalog entries\n", out)

	cfg, err := app.Load(path)
	require.NoError(t, err)
	a, err := app.New(cfg, app.Options{LoggerInit: func(*coreconfig.Config) error { return nil }})
	require.NoError(t, err)
	for _, addr := range []string{"Uy 1", "Uy 2"} {
		_, err = a.Store.AppendOrder(context.Background(), storage.Order{
			Ref:       "ref-" + addr,
			UserID:    1001,
			Direction: "Xorazmdan Buxoroga",
			Date:      "2025-06-15",
			Phone:     "+998901234567",
			TripType:  "person",
			Car:       "Cobalt",
			Address:   addr,
			Comment:   "-",
			CreatedAt: time.Date(2025, 6, 14, 8, 30, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	require.NoError(t, a.Close())

	out, err = execute(t, "--config", path, "orders", "--limit", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "#2 2025-06-14 08:30 ref-Uy 2")
	assert.Contains(t, lines[0], "| Uy 2")
}
