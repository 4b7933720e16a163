package database

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Supported values for Config.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds database connection settings.
type Config struct {
	Driver         string `yaml:"driver" envconfig:"DB_DRIVER"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// Path is the database file used by the sqlite driver.
	Path string `yaml:"path" envconfig:"DB_PATH"`
}

// Normalize validates the driver specific fields and fills defaults.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	switch c.Driver {
	case "", "sqlite3":
		c.Driver = DriverSQLite
	case "postgresql":
		c.Driver = DriverPostgres
	}
	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			c.Path = "tripbot.db"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 1
		}
	case DriverPostgres:
		if strings.TrimSpace(c.Host) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres driver")
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 5
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid database.driver %q; allowed: postgres, sqlite, memory", c.Driver)
	}
	return nil
}

// SQLDriver returns the database/sql driver name for c.Driver.
func (c Config) SQLDriver() string {
	if c.Driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// DSN returns the connection string passed to sql.Open.
func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		return "file:" + c.Path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	}
	return c.postgresURL()
}

// MigrateURL returns the database URL understood by golang-migrate.
func (c Config) MigrateURL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.Path + "?_foreign_keys=on"
	}
	return c.postgresURL()
}

// postgresURL is accepted by both lib/pq and golang-migrate; credentials
// are escaped.
func (c Config) postgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}
