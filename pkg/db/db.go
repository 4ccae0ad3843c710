package db

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Config holds database connection configuration.
type Config struct {
	Host     string `yaml:"host" validate:"nonzero"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user" validate:"nonzero"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name" validate:"nonzero"`
	SSLMode  string `yaml:"sslmode"`

	// URL takes precedence over the discrete fields when set.
	URL string `yaml:"url"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// DSN returns the connection string for the configured database.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + strconv.Itoa(c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(sslMode)),
	}
	return u.String()
}
