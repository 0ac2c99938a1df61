package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "steward.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setDuration(&cfg.Engine.TickInterval, "STEWARD_TICK_INTERVAL")
	setFloat64(&cfg.Engine.AcceptThreshold, "STEWARD_ACCEPT_THRESHOLD")
	setFloat64(&cfg.Engine.AestheticWeight, "STEWARD_AESTHETIC_WEIGHT")
	setFloat64(&cfg.Engine.FunctionalWeight, "STEWARD_FUNCTIONAL_WEIGHT")
	setInt(&cfg.Engine.MaxWorkers, "STEWARD_MAX_WORKERS")
	setStringSlice(&cfg.Engine.Capabilities, "STEWARD_CAPABILITIES")
	setInt(&cfg.Engine.RecentLimit, "STEWARD_RECENT_LIMIT")

	setString(&cfg.Storage.Driver, "STEWARD_STORAGE_DRIVER")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "STEWARD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "STEWARD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "STEWARD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "STEWARD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "STEWARD_PG_HEALTH_CHECK")

	setString(&cfg.Assets.Dir, "STEWARD_ASSETS_DIR")
	setBool(&cfg.Assets.Watch, "STEWARD_ASSETS_WATCH")

	setString(&cfg.NATS.URL, "NATS_URL")

	setBool(&cfg.Cache.Enabled, "STEWARD_CACHE_ENABLED")
	setInt64(&cfg.Cache.MaxSizeMB, "STEWARD_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "STEWARD_CACHE_TTL")

	setString(&cfg.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "STEWARD_OTLP_INSECURE")

	setString(&cfg.Logging.Level, "STEWARD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "STEWARD_LOG_SERVICE")
	setString(&cfg.Logging.Format, "STEWARD_LOG_FORMAT")
	setBool(&cfg.Logging.Async, "STEWARD_LOG_ASYNC")
	setInt(&cfg.Logging.AsyncBuffer, "STEWARD_LOG_ASYNC_BUFFER")

	setInt(&cfg.Breaker.MaxFailures, "STEWARD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "STEWARD_BREAKER_TIMEOUT")
}

// validate checks that required fields are set and in range.
func validate(cfg *Config) error {
	if cfg.Engine.TickInterval <= 0 {
		return errors.New("engine.tick_interval must be positive")
	}
	if cfg.Engine.AcceptThreshold < 0 || cfg.Engine.AcceptThreshold > 1 {
		return errors.New("engine.accept_threshold must be in [0,1]")
	}
	if cfg.Engine.AestheticWeight < 0 || cfg.Engine.FunctionalWeight < 0 {
		return errors.New("engine score weights must be non-negative")
	}
	if cfg.Engine.AestheticWeight+cfg.Engine.FunctionalWeight <= 0 {
		return errors.New("engine score weights must not both be zero")
	}
	if cfg.Engine.MaxWorkers < 1 {
		return errors.New("engine.max_workers must be >= 1")
	}
	if len(cfg.Engine.Capabilities) == 0 {
		return errors.New("engine.capabilities must name at least one capability")
	}
	for _, c := range cfg.Engine.Capabilities {
		if strings.TrimSpace(c) == "" {
			return errors.New("engine.capabilities must not contain empty entries")
		}
	}
	if cfg.Engine.RecentLimit < 1 {
		return errors.New("engine.recent_limit must be >= 1")
	}

	switch cfg.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("storage.driver must be memory or postgres, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" {
		if cfg.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required with the postgres driver")
		}
		if cfg.Postgres.MaxConns < 1 {
			return errors.New("postgres.max_conns must be >= 1")
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.MaxSizeMB < 1 {
		return errors.New("cache.max_size_mb must be >= 1 when the cache is enabled")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setStringSlice overlays a comma-separated env value as a string slice.
func setStringSlice(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 {
		*dst = out
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
