package config

import (
	"flag"
	"io"
)

// CLIFlags holds command-line overrides. Nil fields were not set on the
// command line and leave the loaded value untouched. CLI wins over ENV.
type CLIFlags struct {
	ConfigPath *string
	LogLevel   *string
	DSN        *string
	NatsURL    *string
	AssetsDir  *string
	Driver     *string
}

// ParseFlags parses the daemon's command-line flags from args.
func ParseFlags(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("steward", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	configPath := fs.String("config", "", "path to YAML config file")
	fs.StringVar(configPath, "c", "", "shorthand for --config")
	logLevel := fs.String("log-level", "", "log level (debug|info|warn|error)")
	dsn := fs.String("dsn", "", "postgres connection string")
	natsURL := fs.String("nats-url", "", "NATS server URL")
	assetsDir := fs.String("assets-dir", "", "directory of managed assets")
	driver := fs.String("driver", "", "storage driver (memory|postgres)")

	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, err
	}

	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	var flags CLIFlags
	if visited["config"] || visited["c"] {
		flags.ConfigPath = configPath
	}
	if visited["log-level"] {
		flags.LogLevel = logLevel
	}
	if visited["dsn"] {
		flags.DSN = dsn
	}
	if visited["nats-url"] {
		flags.NatsURL = natsURL
	}
	if visited["assets-dir"] {
		flags.AssetsDir = assetsDir
	}
	if visited["driver"] {
		flags.Driver = driver
	}
	return flags, nil
}

// applyCLI overlays set flags onto cfg.
func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
	if flags.AssetsDir != nil {
		cfg.Assets.Dir = *flags.AssetsDir
	}
	if flags.Driver != nil {
		cfg.Storage.Driver = *flags.Driver
	}
}

// LoadWithCLI returns a Config using the full hierarchy:
// defaults < YAML < ENV < CLI. It also returns the resolved YAML path.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := DefaultConfigFile
	if flags.ConfigPath != nil && *flags.ConfigPath != "" {
		path = *flags.ConfigPath
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, path); err != nil {
		return nil, path, err
	}
	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, path, err
	}
	return &cfg, path, nil
}
