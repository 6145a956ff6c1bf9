package store

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	storagepostgres "github.com/gofiber/storage/postgres/v3"

	"github.com/nexus-dash/nexus/internal/config"
	"github.com/nexus-dash/nexus/internal/db/dsn"
)

// KV keeps the document under one key of a fiber storage.
type KV struct {
	storage fiber.Storage
	key     string
}

var _ Backend = (*KV)(nil)

// NewKV wraps any fiber storage.
func NewKV(storage fiber.Storage, key string) *KV {
	return &KV{storage: storage, key: key}
}

// OpenKV connects the gofiber storage selected by [Store.KV] Driver.
// The storages panic when they cannot reach the database, the panic is returned as error.
func OpenKV(cfg *config.Config) (kv *KV, err error) {
	defer func() {
		if r := recover(); r != nil {
			kv, err = nil, fmt.Errorf("kv store: connect %s: %v", cfg.Store.KV.Driver, r) //nolint:goerr113
		}
	}()

	var storage fiber.Storage

	switch cfg.Store.KV.Driver {
	case config.DriverPostgres:
		storage = storagepostgres.New(storagepostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         cfg.Store.KV.Table,
		})
	case config.DriverMySQL:
		storage = storagemysql.New(storagemysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         cfg.Store.KV.Table,
		})
	default:
		return nil, fmt.Errorf("%w: kv %q", config.ErrUnknownDBDriver, cfg.Store.KV.Driver)
	}

	return NewKV(storage, cfg.Store.Key), nil
}

// Read implements Backend. Fiber storages report a missing key as empty value.
func (k *KV) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := k.storage.Get(k.key)
	if err != nil {
		return nil, fmt.Errorf("kv store: read %s: %w", k.key, err)
	}

	if len(data) == 0 {
		return nil, ErrNotFound
	}

	return data, nil
}

// Write implements Backend. The document never expires.
func (k *KV) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := k.storage.Set(k.key, data, 0); err != nil {
		return fmt.Errorf("kv store: write %s: %w", k.key, err)
	}

	return nil
}

// Close implements Backend.
func (k *KV) Close() error {
	return k.storage.Close() //nolint:wrapcheck
}
