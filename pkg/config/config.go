// Package config loads the matelas configuration file.
//
// Configuration is TOML. Every field has a default, so an empty or missing
// file yields a working setup:
//
//	[server]
//	addr = ":8000"
//	service_name = "matelas-calc"
//
//	[layout]
//	min_dist_x = 30.0
//	min_dist_y = 40.0
//	edge_distance = 15.0
//
//	[cache]
//	backend = "memory"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/tufting"
)

// EnvPath names the environment variable consulted when no --config flag
// is given.
const EnvPath = "MATELAS_CONFIG"

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the root of the configuration file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ServiceName     string        `toml:"service_name"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// LayoutConfig holds the spacing used when a request omits it, and the
// density limit passed to the engine.
type LayoutConfig struct {
	MinDistX     float64 `toml:"min_dist_x"`
	MinDistY     float64 `toml:"min_dist_y"`
	EdgeDistance float64 `toml:"edge_distance"`
	MaxPoints    int     `toml:"max_points"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	MaxEntries    int           `toml:"max_entries"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	KeyPrefix     string        `toml:"key_prefix"`
	TTL           time.Duration `toml:"ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	s := tufting.DefaultSpacing()
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ServiceName:     "matelas-calc",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    64 << 10,
		},
		Layout: LayoutConfig{
			MinDistX:     s.MinDistX,
			MinDistY:     s.MinDistY,
			EdgeDistance: s.EdgeDistance,
			MaxPoints:    tufting.DefaultMaxPoints,
		},
		Cache: CacheConfig{
			Backend:    CacheMemory,
			MaxEntries: 4096,
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "matelas:",
			TTL:        24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Spacing returns the default spacing for requests that omit it.
func (c LayoutConfig) Spacing() tufting.Spacing {
	return tufting.Spacing{
		MinDistX:     c.MinDistX,
		MinDistY:     c.MinDistY,
		EdgeDistance: c.EdgeDistance,
	}
}

// Load reads path on top of Default. An empty path returns the defaults;
// a path that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks field ranges. The default spacing must itself be
// acceptable to the engine for some rectangle, so only sign checks apply.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if c.Layout.MinDistX <= 0 || c.Layout.MinDistY <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.min_dist_x and layout.min_dist_y must be positive")
	}
	if c.Layout.EdgeDistance < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.edge_distance must not be negative")
	}
	if c.Layout.MaxPoints <= 0 || c.Layout.MaxPoints > tufting.MaxPointsCeiling {
		return errors.New(errors.ErrCodeInvalidConfig,
			"layout.max_points must be between 1 and %d", tufting.MaxPointsCeiling)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache.backend: %q (must be one of: none, memory, file, redis)", c.Cache.Backend)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "invalid log.level: %q", c.Log.Level)
	}
	return nil
}
