package pg

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	// Registers the New Relic instrumented pgx driver as "nrpgx"
	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

const (
	driverName = "nrpgx"

	defaultConnMaxLifetime = time.Hour
)

type Config struct {
	User     string
	Host     string
	Password string
	Port     int
	DbName   string

	// SSLMode is passed through as the sslmode connection parameter. Empty
	// disables TLS, which is only suitable for local databases.
	SSLMode string

	MaxOpenConnections int
	MaxIdleConnections int
}

// DSN returns the connection URL for the config
func (c *Config) DSN() string {
	sslMode := c.SSLMode
	if len(sslMode) == 0 {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DbName,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}

// Open returns a verified connection pool to the configured database, using
// the instrumented pgx driver.
func Open(c *Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, c.DSN())
	if err != nil {
		return nil, errors.Wrap(err, "error opening db")
	}

	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}
	db.SetConnMaxIdleTime(defaultConnMaxLifetime)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error pinging db")
	}
	return db, nil
}
