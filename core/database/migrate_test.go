package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMigrations = fstest.MapFS{
	"sqlite/0002_orders.up.sql":   {Data: []byte("CREATE TABLE orders (id INTEGER PRIMARY KEY);")},
	"sqlite/0002_orders.down.sql": {Data: []byte("DROP TABLE orders;")},
	"sqlite/0001_routes.up.sql":   {Data: []byte("CREATE TABLE routes (id INTEGER PRIMARY KEY);")},
	"sqlite/0001_routes.down.sql": {Data: []byte("DROP TABLE routes;")},
}

func TestUpFilesInVersionOrder(t *testing.T) {
	assert.Equal(t, []string{"0001_routes.up.sql", "0002_orders.up.sql"}, upFiles(testMigrations, "sqlite"))
	assert.Empty(t, upFiles(testMigrations, "postgres"))
}

func TestAppliedBetween(t *testing.T) {
	files := []string{"0001_routes.up.sql", "0002_orders.up.sql", "notes.up.sql"}
	assert.Equal(t, []string{"0002_orders.up.sql"}, appliedBetween(files, 1, 2))
	assert.Empty(t, appliedBetween(files, 2, 2))
}

func TestRunMigrationsSQLite(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	require.NoError(t, cfg.Normalize())

	require.NoError(t, RunMigrations(cfg, testMigrations))
	// A second run is a no-op.
	require.NoError(t, RunMigrations(cfg, testMigrations))

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer db.Close()
	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('routes', 'orders') ORDER BY name`))
	assert.Equal(t, []string{"orders", "routes"}, tables)
}

func TestRunMigrationsMemoryIsNoop(t *testing.T) {
	assert.NoError(t, RunMigrations(Config{Driver: DriverMemory}, nil))
}
