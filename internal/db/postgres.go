package db

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"winterops/stationboard/internal/logging"
)

var DB *sqlx.DB

const (
	connectAttempts = 10
	connectBackoff  = 500 * time.Millisecond
)

// PostgresDSN assembles the connection string from the PG_* env vars.
// Shared by the sqlx and GORM connectors so both sides always talk to
// the same database.
func PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("PG_USER"),
		os.Getenv("PG_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DB"),
	)
}

// InitPostgres opens the sqlx read-path connection, retrying while the
// database comes up
func InitPostgres() error {
	dsn := PostgresDSN()

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		DB, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			return nil
		}
		logging.Warn("Postgres not ready, retrying",
			"attempt", attempt,
			"error", err.Error(),
		)
		time.Sleep(connectBackoff)
	}
	return fmt.Errorf("connecting to postgres after %d attempts: %w", connectAttempts, err)
}
