package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/db/controller/setting"
	"github.com/nexus-dash/nexus/internal/db/dsn"
	"github.com/nexus-dash/nexus/internal/db/models"
	gormlog "github.com/nexus-dash/nexus/internal/logger/adapter/gorm"
)

// Gorm keeps the document as one row of the settings table.
type Gorm struct {
	db  *gorm.DB
	key string
}

var _ Backend = (*Gorm)(nil)

// NewGorm uses an open gorm connection. The settings table must exist.
func NewGorm(db *gorm.DB, key string) *Gorm {
	return &Gorm{db: db, key: key}
}

// OpenGorm connects to the configured database and migrates the settings table.
func OpenGorm(cfg *config.Config) (*Gorm, error) {
	var dialector gorm.Dialector

	switch cfg.DB.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), dirMode); err != nil {
			return nil, fmt.Errorf("gorm store: create directory: %w", err)
		}

		dialector = sqlite.Open(dsn.Create(cfg))
	case config.DriverPostgres:
		dialector = postgres.Open(dsn.Create(cfg))
	case config.DriverMySQL:
		dialector = mysql.Open(dsn.Create(cfg))
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownDBDriver, cfg.DB.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlog.New()})
	if err != nil {
		return nil, fmt.Errorf("gorm store: connect: %w", err)
	}

	if err = db.AutoMigrate(&models.Setting{}); err != nil {
		return nil, fmt.Errorf("gorm store: migrate: %w", err)
	}

	return NewGorm(db, cfg.Store.Key), nil
}

// Read implements Backend.
func (g *Gorm) Read(ctx context.Context) ([]byte, error) {
	s, err := setting.Get(g.db.WithContext(ctx), g.key)
	if errors.Is(err, setting.ErrSettingNotFound) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("gorm store: read %s: %w", g.key, err)
	}

	return s.Value, nil
}

// Write implements Backend.
func (g *Gorm) Write(ctx context.Context, data []byte) error {
	if _, err := setting.Set(g.db.WithContext(ctx), g.key, data); err != nil {
		return fmt.Errorf("gorm store: write %s: %w", g.key, err)
	}

	return nil
}

// Close implements Backend.
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}
