// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvConfigJSON names the environment variable holding a JSON config override.
const EnvConfigJSON = "NEXUS_CONFIG_JSON"

const (
	defaultShutDownTime    = 5
	defaultStoreKey        = "dashboard"
	defaultFilePath        = "./data/db.json"
	defaultKVTable         = "nexus_storage"
	defaultCheckAliveURI   = "/checkalive"
	defaultBodyLimit       = 1 << 20
	defaultProviderTimeout = 10
	defaultSubjectPrefix   = "nexus"

	defaultGeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultWeatherURL = "https://api.open-meteo.com/v1/forecast"
	defaultStocksURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	defaultSuggestURL = "https://duckduckgo.com/ac/"
	defaultFaviconURL = "https://www.google.com/s2/favicons"
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)
	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	t := toml.NewEncoder(&buffer)
	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings the service cannot start without and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	applyDefaults(c)

	switch c.Store.Backend {
	case BackendFile:
	case BackendGorm:
		switch c.DB.Driver {
		case DriverSQLite:
			if c.DB.Path == "" {
				return errors.Wrap(ErrEmptyDBPath, invalidErrMessage)
			}
		case DriverPostgres, DriverMySQL:
		default:
			return errors.Wrapf(ErrUnknownDBDriver, "%s: %q", invalidErrMessage, c.DB.Driver)
		}
	case BackendPostgres:
		if c.DB.Driver != DriverPostgres {
			return errors.Wrapf(ErrUnknownDBDriver, "%s: %q", invalidErrMessage, c.DB.Driver)
		}
	case BackendKV:
		switch c.Store.KV.Driver {
		case DriverPostgres, DriverMySQL:
		default:
			return errors.Wrapf(ErrUnknownDBDriver, "%s: kv %q", invalidErrMessage, c.Store.KV.Driver)
		}
	default:
		return errors.Wrapf(ErrUnknownStoreBackend, "%s: %q", invalidErrMessage, c.Store.Backend)
	}

	return nil
}

func applyDefaults(c *Config) {
	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.CheckAliveURI == "" {
		c.Webserver.CheckAliveURI = defaultCheckAliveURI
	}

	if c.Webserver.BodyLimit == 0 {
		c.Webserver.BodyLimit = defaultBodyLimit
	}

	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}

	if c.Store.Key == "" {
		c.Store.Key = defaultStoreKey
	}

	if c.Store.File.Path == "" {
		c.Store.File.Path = defaultFilePath
	}

	if c.Store.KV.Table == "" {
		c.Store.KV.Table = defaultKVTable
	}

	if c.Events.SubjectPrefix == "" {
		c.Events.SubjectPrefix = defaultSubjectPrefix
	}

	p := &c.Providers
	if p.TimeoutSeconds == 0 {
		p.TimeoutSeconds = defaultProviderTimeout
	}

	for _, d := range []struct {
		target *string
		value  string
	}{
		{&p.GeocodeURL, defaultGeocodeURL},
		{&p.WeatherURL, defaultWeatherURL},
		{&p.StocksURL, defaultStocksURL},
		{&p.SuggestURL, defaultSuggestURL},
		{&p.FaviconURL, defaultFaviconURL},
	} {
		if *d.target == "" {
			*d.target = d.value
		}
	}
}
