package config

import (
	"github.com/nexus-dash/nexus/internal/logger"
)

const (
	// BackendFile stores the dashboard in a JSON file.
	BackendFile = "file"
	// BackendGorm stores the dashboard in the settings table through gorm.
	BackendGorm = "gorm"
	// BackendPostgres stores the dashboard in a JSONB row through database/sql.
	BackendPostgres = "postgres"
	// BackendKV stores the dashboard in a fiber storage key.
	BackendKV = "kv"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Store     Store
	Events    Events
	Backup    Backup
	Providers Providers
}

// Webserver implement webserver settings.
type Webserver struct {
	BrowseStatic   bool   // enable static file browsing (for development purposes only)
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
	AllowOrigins   string // CORS allow origins, comma separated
	BodyLimit      int    // max request body size in bytes
	CheckAliveURI  string // health check path, excluded from the access log
}

// Store selects where the dashboard document lives.
type Store struct {
	Backend string // file, gorm, postgres or kv
	Key     string // row name or storage key of the document
	File    FileStore
	KV      KVStore
}

// FileStore configures the JSON file backend.
type FileStore struct {
	Path string
}

// KVStore configures the fiber storage backend. Connection details come from DB.
type KVStore struct {
	Driver string // postgres or mysql
	Table  string
}

// Events configures change notifications.
type Events struct {
	NATSURL       string // empty disables publishing
	SubjectPrefix string
}

// Backup configures document exports.
type Backup struct {
	Dir string // local export directory
	S3  S3
}

// S3 configures an S3 compatible export target.
type S3 struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // non-empty enables path-style addressing (MinIO and similar)
}

// Providers configures the upstream data providers behind /api/providers.
type Providers struct {
	TimeoutSeconds int
	GeocodeURL     string
	WeatherURL     string
	StocksURL      string
	SuggestURL     string
	FaviconURL     string
}
