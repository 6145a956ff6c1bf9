package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled"`
	UseConsoleWriter bool
}

// LogFile implements a file based logger.
// Every level group rotates on its own through lumberjack.
type LogFile struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	AccessLog        string `toml:"access"`
	AccessMaxSize    int    `toml:"accessMaxSize"`
	AccessMaxBackups int    `toml:"accessMaxBackups"`
	AccessMaxAge     int    `toml:"accessMaxAge"`

	ErrorLog        string `toml:"error"`
	ErrorMaxSize    int    `toml:"errorMaxSize"`
	ErrorMaxBackups int    `toml:"errorMaxBackups"`
	ErrorMaxAge     int    `toml:"errorMaxAge"`

	InfoLog        string `toml:"info"`
	InfoMaxSize    int    `toml:"infoMaxSize"`
	InfoMaxBackups int    `toml:"infoMaxBackups"`
	InfoMaxAge     int    `toml:"infoMaxAge"`

	TraceLog        string `toml:"trace"`
	TraceMaxSize    int    `toml:"traceMaxSize"`
	TraceMaxBackups int    `toml:"traceMaxBackups"`
	TraceMaxAge     int    `toml:"traceMaxAge"`

	WarnLog        string `toml:"warn"`
	WarnMaxSize    int    `toml:"warnMaxSize"`
	WarnMaxBackups int    `toml:"warnMaxBackups"`
	WarnMaxAge     int    `toml:"warnMaxAge"`
}

// Log implements the logger config.
type Log struct {
	LogLevel string // trace, debug, info, warn, error.
	LogEnv   string

	// EnableAccessLogToConsole writes the http access log to stdout.
	// Does not overrule flag Console.Enabled!
	EnableAccessLogToConsole bool
	ReportCaller             bool
	DisableCheckAlive        bool // do not log /checkalive calls

	AppName     string
	ServiceName string

	// Console used mainly for docker and dev.
	Console Console

	// File based logging with rotation.
	File LogFile `toml:"file"`
}
