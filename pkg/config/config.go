// Package config loads osmtree settings.
//
// Settings are resolved in this order, later sources winning:
//
//  1. Built-in defaults ([Default])
//  2. A config file: config.toml, config.yaml or config.yml in the osmtree
//     config directory ($XDG_CONFIG_HOME/osmtree), or an explicit path
//  3. A .env file in the working directory
//  4. OSMTREE_* environment variables
//
// Command-line flags are applied by the caller on top of the result.
//
// # File format
//
//	nominatim_url = "https://nominatim.openstreetmap.org"
//	overpass_url  = "https://overpass-api.de/api/interpreter"
//	query_timeout = "90s"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/osmtree/osmtree/pkg/buildinfo"
	"github.com/osmtree/osmtree/pkg/cache"
	apperrors "github.com/osmtree/osmtree/pkg/errors"
	"github.com/osmtree/osmtree/pkg/integrations/overpass"
	"github.com/osmtree/osmtree/pkg/tree"
)

const appName = "osmtree"

// DefaultNominatimURL is the public Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds all settings.
type Config struct {
	NominatimURL string        `toml:"nominatim_url" yaml:"nominatim_url"`
	OverpassURL  string        `toml:"overpass_url" yaml:"overpass_url"`
	UserAgent    string        `toml:"user_agent" yaml:"user_agent"`
	Prefix       string        `toml:"prefix" yaml:"prefix"`
	QueryTimeout time.Duration `toml:"query_timeout" yaml:"query_timeout"`

	Cache  CacheConfig  `toml:"cache" yaml:"cache"`
	Server ServerConfig `toml:"server" yaml:"server"`

	// File is the config file that was read, if any.
	File string `toml:"-" yaml:"-"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend       string        `toml:"backend" yaml:"backend"`
	Dir           string        `toml:"dir" yaml:"dir"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db"`
}

// ServerConfig configures `osmtree serve`.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		NominatimURL: DefaultNominatimURL,
		OverpassURL:  overpass.DefaultEndpoint,
		UserAgent:    buildinfo.UserAgent(),
		Prefix:       tree.DefaultPrefix,
		QueryTimeout: overpass.DefaultQueryTimeout,
		Cache: CacheConfig{
			Backend:   BackendFile,
			TTL:       cache.TTLRelation,
			RedisAddr: "localhost:6379",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load resolves settings from all sources. An empty path searches the config
// directory and tolerates a missing file; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := findFile()
		if err != nil {
			return cfg, err
		}
		path = found
	}
	if path != "" {
		if err := cfg.ReadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "load .env")
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func findFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", nil
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// ReadFile merges the TOML or YAML file at path into c. The format follows
// the extension; anything other than .yaml and .yml is read as TOML.
func (c *Config) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = toml.Unmarshal(data, c)
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	c.File = path
	return nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if err := apperrors.ValidateURL(c.NominatimURL); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "nominatim_url")
	}
	if err := apperrors.ValidateURL(c.OverpassURL); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "overpass_url")
	}
	if c.QueryTimeout <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "query_timeout must be positive")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown cache backend %q (must be file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cache ttl must not be negative")
	}
	return nil
}

// Dir returns the osmtree config directory.
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// CacheDir returns the configured cache directory, or the XDG default.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Open creates the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	default:
		dir, err := c.CacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	}
}
