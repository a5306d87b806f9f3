// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Layer them over sane defaults for every block.
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix WEBBRAYNS_. The prefix is removed,
	the key lowercased and a double underscore marks nesting:

	  WEBBRAYNS_SERVER__PORT        -> server.port        -> Config.Server.Port
	  WEBBRAYNS_FS__MAX_READ_SIZE   -> fs.max_read_size   -> Config.FS.MaxReadSize

	Single underscores stay part of the key, so snake_case field names work.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "WEBBRAYNS_"

// DefaultRoot is the sandbox root of the BBP project storage.
const DefaultRoot = "/gpfs/bbp.cscs.ch/project/"

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	FS            FSConfig             `koanf:"fs" validate:"required"`
	Circuit       CircuitConfig        `koanf:"circuit" validate:"required"`
	Brayns        BraynsConfig         `koanf:"brayns" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the number of requests per second and client IP allowed
	// on the mutating routes. Zero disables rate limiting.
	RateLimit      float64 `koanf:"rate_limit" validate:"gte=0"`
	RateLimitBurst int     `koanf:"rate_limit_burst" validate:"gte=0"`
}

// FSConfig controls the sandboxed filesystem endpoints.
type FSConfig struct {
	// Root is the directory every user supplied path is resolved against.
	// Paths that resolve outside of it are rejected.
	Root string `koanf:"root" validate:"required,startswith=/"`

	// MaxReadSize caps the number of bytes the file-read endpoint returns.
	MaxReadSize int64 `koanf:"max_read_size" validate:"required,min=1"`
}

// CircuitConfig controls circuit loading and the target cache.
type CircuitConfig struct {
	// CacheTTL is how long parsed target sets stay in Redis. Zero disables caching.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// ConfigFileName is looked up when a circuit path names a directory.
	ConfigFileName string `koanf:"config_file_name" validate:"required"`
}

// BraynsConfig holds timeouts for the Brayns websocket client.
type BraynsConfig struct {
	DialTimeout    time.Duration `koanf:"dial_timeout" validate:"required"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// The database stores connectome edges.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
//
// SecretKey is the Clerk secret key. When empty, bearer-token
// authentication is disabled and every route is public.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// Enabled reports whether bearer-token authentication is configured.
func (a AuthConfig) Enabled() bool {
	return a.SecretKey != ""
}

// defaults is the base layer every env var is merged on top of.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"primary.env":                 "development",
		"server.port":                 "8080",
		"server.read_timeout":         30,
		"server.write_timeout":        60,
		"server.idle_timeout":         120,
		"server.cors_allowed_origins": []string{"*"},
		"server.rate_limit":           5.0,
		"server.rate_limit_burst":     10,
		"fs.root":                     DefaultRoot,
		"fs.max_read_size":            int64(16 << 20),
		"circuit.cache_ttl":           "10m",
		"circuit.config_file_name":    "CircuitConfig",
		"brayns.dial_timeout":         "10s",
		"brayns.request_timeout":      "30s",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.user":               "webbrayns",
		"database.name":               "webbrayns",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  3600,
		"database.conn_max_idle_time": 300,
		"redis.address":               "localhost:6379",

		"observability.service_name":                          "webbrayns",
		"observability.environment":                           "development",
		"observability.logging.level":                         "info",
		"observability.logging.format":                        "json",
		"observability.logging.slow_query_threshold":          "100ms",
		"observability.new_relic.app_log_forwarding_enabled":  true,
		"observability.new_relic.distributed_tracing_enabled": true,
		"observability.health_checks.enabled":                 true,
		"observability.health_checks.interval":                "30s",
		"observability.health_checks.timeout":                 "5s",
		"observability.health_checks.checks":                  []string{"database", "redis", "filesystem"},
	}
}

// envKey turns WEBBRAYNS_FS__MAX_READ_SIZE into fs.max_read_size.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies observability defaults and returns it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("could not load default config: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// CORS origins arrive as a comma separated string from the environment.
	if raw, ok := k.Get("server.cors_allowed_origins").(string); ok {
		origins := strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if err := k.Set("server.cors_allowed_origins", origins); err != nil {
			return nil, fmt.Errorf("could not normalize cors origins: %w", err)
		}
	}

	mainConfig := &Config{}
	if err := k.UnmarshalWithConf("", mainConfig, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if !strings.HasSuffix(mainConfig.FS.Root, "/") {
		mainConfig.FS.Root += "/"
	}

	// Observability is optional. Nil means "missing", inject the defaults.
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are forced so telemetry stays consistent.
	mainConfig.Observability.ServiceName = "webbrayns"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
