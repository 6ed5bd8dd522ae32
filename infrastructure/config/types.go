package config

import (
	"fmt"
	"net/url"
	"time"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// DatabaseConfig describes a sqlx connection for either Postgres or SQLite.
type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER"            yaml:"driver"`
	Host            string        `env:"POSTGRES_HOST"        yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"        yaml:"port"`
	User            string        `env:"POSTGRES_USER"        yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD"    yaml:"password"`
	Name            string        `env:"POSTGRES_DB"          yaml:"name"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"     yaml:"sslmode"`
	Path            string        `env:"SQLITE_PATH"          yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectAttempts int           `yaml:"connect_attempts"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE"      yaml:"auto_migrate"`
}

// SetDefaults fills unset values; SQLite is the default driver.
func (c *DatabaseConfig) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 5432
	}
	if c.Name == "" {
		c.Name = "triage"
	}
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}
	if c.Path == "" {
		c.Path = "triage.db"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 25
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = 5
	}
}

// DSN returns the driver-specific data source name.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return "file:" + c.Path + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// URL returns the URL form used by the migration tool.
func (c *DatabaseConfig) URL() string {
	if c.Driver == DriverSQLite {
		return "sqlite3://" + c.Path
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// Validate checks the driver and the fields it needs.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		return ValidateRequired("database.path", c.Path)
	case DriverPostgres:
		if err := ValidateRequired("database.host", c.Host); err != nil {
			return err
		}
		if err := ValidatePort("database.port", c.Port); err != nil {
			return err
		}
		return ValidateRequired("database.name", c.Name)
	default:
		return ValidateOneOf("database.driver", c.Driver, DriverPostgres, DriverSQLite)
	}
}

// RedisConfig describes an optional Redis connection.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
}

// SetDefaults fills unset values.
func (c *RedisConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = "localhost:6379"
	}
}
