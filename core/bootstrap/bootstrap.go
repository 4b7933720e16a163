// Package bootstrap brings up the process infrastructure in a fixed order:
// logger, schema migrations, database connection, then reference data.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	coredatabase "github.com/m3rciful/tripbot/core/database"
	"github.com/m3rciful/tripbot/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots. Nil
// hooks fall back to the logger and database packages.
type Options struct {
	Config     *coreconfig.Config
	Database   coredatabase.Config
	Migrations fs.FS

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, fs.FS) error
}

func (o *Options) fillDefaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
// DB is nil for the memory driver.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, applies migrations and connects to the
// database. The memory driver skips both database steps.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts.fillDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger: %w", err)
	}
	if opts.Database.Driver == coredatabase.DriverMemory {
		return &Result{}, nil
	}
	if opts.Migrations != nil {
		if err := opts.Migrate(opts.Database, opts.Migrations); err != nil {
			return nil, fmt.Errorf("bootstrap: migrations: %w", err)
		}
	}
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	return &Result{DB: db}, nil
}
