package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // database/sql driver "postgres"

	"github.com/nexus-dash/nexus/internal/logger/adapter/stdlogger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	selectDocument = `SELECT document FROM dashboard_settings WHERE name = $1`
	upsertDocument = `INSERT INTO dashboard_settings (name, document, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
)

// Postgres keeps the document in a JSONB column through database/sql and lib/pq.
type Postgres struct {
	db  *sql.DB
	key string
}

var _ Backend = (*Postgres)(nil)

// NewPostgres uses an open connection. The schema must be migrated.
func NewPostgres(db *sql.DB, key string) *Postgres {
	return &Postgres{db: db, key: key}
}

// OpenPostgres connects to databaseURL, configures the pool and applies pending migrations.
func OpenPostgres(ctx context.Context, databaseURL, key string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)                 //nolint:mnd
	db.SetMaxIdleConns(2)                  //nolint:mnd
	db.SetConnMaxLifetime(5 * time.Minute) //nolint:mnd

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err = runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewPostgres(db, key), nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	m.Log = stdlogger.NewComponent("migrate")

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Read implements Backend.
func (p *Postgres) Read(ctx context.Context) ([]byte, error) {
	var doc []byte

	err := p.db.QueryRowContext(ctx, selectDocument, p.key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("postgres store: read %s: %w", p.key, err)
	}

	return doc, nil
}

// Write implements Backend.
func (p *Postgres) Write(ctx context.Context, data []byte) error {
	if _, err := p.db.ExecContext(ctx, upsertDocument, p.key, string(data)); err != nil {
		return fmt.Errorf("postgres store: write %s: %w", p.key, err)
	}

	return nil
}

// Close implements Backend.
func (p *Postgres) Close() error {
	return p.db.Close() //nolint:wrapcheck
}
