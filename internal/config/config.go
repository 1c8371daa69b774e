// Package config loads the settings of the xsdtypes command.
package config // import "github.com/CognitoIQ/xsdtypes/internal/config"

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Cache drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverNone   = "none"
)

// Config is the root configuration structure.
type Config struct {
	IncludeElements bool        `yaml:"include_elements"`
	Cache           CacheConfig `yaml:"cache"`
	HTTP            HTTPConfig  `yaml:"http"`
	Log             LogConfig   `yaml:"log"`
	// Schemas are loaded before any schema named on the command line.
	Schemas []string `yaml:"schemas"`
}

// CacheConfig selects where snapshots are kept. Path is a directory
// for the file driver and a database file for sqlite.
type CacheConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

// Load reads the YAML file at path. An empty path yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = DriverFile
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = defaultCachePath(cfg.Cache.Driver)
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

func defaultCachePath(driver string) string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "xsdtypes")
	if driver == DriverSQLite {
		return filepath.Join(dir, "snapshots.db")
	}
	return dir
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("XSDTYPES_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}
	if v := os.Getenv("XSDTYPES_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Cache.Driver {
	case DriverFile, DriverSQLite, DriverNone:
	default:
		return fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	if cfg.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative")
	}
	return nil
}
