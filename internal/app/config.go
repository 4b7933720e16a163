// Package app wires the order bot together: storage, sessions, the
// conversation machine and the Telegram transport.
package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/tripbot/core/config"
	coredatabase "github.com/m3rciful/tripbot/core/database"
)

// SessionsConfig selects where in-progress conversations live.
type SessionsConfig struct {
	// BadgerDir keeps session snapshots on disk; empty keeps them in memory.
	BadgerDir string `yaml:"badger_dir" envconfig:"SESSIONS_BADGER_DIR"`
}

// CatalogConfig lists the names inserted by seeding.
type CatalogConfig struct {
	DefaultRoutes   []string `yaml:"default_routes"`
	DefaultVehicles []string `yaml:"default_vehicles"`
}

// SenderConfig sizes the outbound notification queue.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers        int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	TimeoutSeconds int `yaml:"timeout_seconds" envconfig:"SENDER_TIMEOUT_SECONDS"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Catalog  CatalogConfig       `yaml:"catalog"`
	Sender   SenderConfig        `yaml:"sender"`
}

// CoreConfig satisfies cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	c.Sessions.BadgerDir = strings.TrimSpace(c.Sessions.BadgerDir)
	if c.Sender.QueueSize < 0 || c.Sender.Workers < 0 || c.Sender.TimeoutSeconds < 0 {
		return fmt.Errorf("sender.queue_size, sender.workers and sender.timeout_seconds must be >= 0")
	}
	return nil
}
