// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/nexus-dash/nexus/internal/config"
)

// Create builds the Data Source Name for the configured driver.
// sqlite gets the database file path, mysql the go-sql-driver form and
// postgres a connection URL accepted by pgx and lib/pq alike.
func Create(cfg *config.Config) string {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		return cfg.DB.Path
	case config.DriverPostgres:
		return postgresURL(cfg.DB)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.Name,
			cfg.DB.Extras,
		)
	}
}

func postgresURL(db config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}
