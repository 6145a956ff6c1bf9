package config

const (
	// DriverSQLite selects the embedded SQLite database.
	DriverSQLite = "sqlite"
	// DriverPostgres selects PostgreSQL.
	DriverPostgres = "postgres"
	// DriverMySQL selects MySQL or MariaDB.
	DriverMySQL = "mysql"
)

// DB holds the database configuration settings.
type DB struct {
	Driver   string // sqlite, postgres or mysql
	Path     string // database file for sqlite
	Extras   string // appended to the DSN as query string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
