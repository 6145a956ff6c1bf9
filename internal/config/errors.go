package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")
	// ErrUnknownStoreBackend error if config store.backend is not supported.
	ErrUnknownStoreBackend = errors.New("toml config store.backend must be one of file, gorm, postgres, kv")
	// ErrUnknownDBDriver error if config db.driver is not supported by the selected backend.
	ErrUnknownDBDriver = errors.New("toml config db.driver is not supported by the selected store backend")
	// ErrEmptyDBPath error if the sqlite driver has no database file.
	ErrEmptyDBPath = errors.New("toml config db.path can not be empty for sqlite")
)
