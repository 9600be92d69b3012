// Package config loads server settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Cache backends
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

// Environment overrides
const (
	EnvDataDir        = "NEXTDOCS_DATA_DIR"
	EnvCacheBackend   = "NEXTDOCS_CACHE_BACKEND"
	EnvCachePath      = "NEXTDOCS_CACHE_PATH"
	EnvCacheTTL       = "NEXTDOCS_CACHE_TTL"
	EnvProjectDir     = "NEXTDOCS_PROJECT_DIR"
	EnvDefaultVersion = "NEXTDOCS_DEFAULT_VERSION"
)

// Config holds the server settings
type Config struct {
	DataDir        string      `toml:"data_dir"`        // Directory holding docs-metadata*.json
	ProjectDir     string      `toml:"project_dir"`     // Project whose package.json selects the version
	DefaultVersion string      `toml:"default_version"` // Label used when nothing is detected
	SynonymsFile   string      `toml:"synonyms_file"`   // Optional replacement synonym table
	Cache          CacheConfig `toml:"cache"`
}

// CacheConfig selects the result cache backend
type CacheConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"` // SQLite database file
	TTL     int    `toml:"ttl"`  // Seconds
}

// Default returns the settings used when nothing is configured.
// Caching is off unless a backend is chosen.
func Default() Config {
	return Config{
		DataDir:        "data",
		ProjectDir:     ".",
		DefaultVersion: "latest",
		Cache: CacheConfig{
			Backend: CacheNone,
			TTL:     3600,
		},
	}
}

// Load reads the TOML file at path on top of the defaults and applies the
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	overrides := map[string]*string{
		EnvDataDir:        &c.DataDir,
		EnvCacheBackend:   &c.Cache.Backend,
		EnvCachePath:      &c.Cache.Path,
		EnvProjectDir:     &c.ProjectDir,
		EnvDefaultVersion: &c.DefaultVersion,
	}
	for name, field := range overrides {
		if v, ok := lookup(name); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup(EnvCacheTTL); ok && v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCacheTTL, err)
		}
		c.Cache.TTL = ttl
	}
	return nil
}

// Validate checks the settings for consistency
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir must not be empty")
	}

	switch c.Cache.Backend {
	case "", CacheNone, CacheMemory:
	case CacheSQLite:
		if c.Cache.Path == "" {
			return errors.New("cache.path is required for the sqlite cache")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %d", c.Cache.TTL)
	}
	return nil
}

// CacheTTL returns the cache ttl as a duration
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}
