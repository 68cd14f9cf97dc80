package config

import (
	"fmt"

	"github.com/spf13/pflag"
)

const FlagConfig = "config"

// BindFlags registers the configuration flags on fs. Defaults shown in help
// are the built-in ones; only flags the user actually sets override the
// config file.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.StringP(FlagConfig, "c", "", "path to a JSON or YAML config file")
	fs.StringP("addr", "a", d.ServerURL, "backend base URL")
	fs.DurationP("interval", "i", d.OnlineCheckInterval, "online check interval")
	fs.Duration("timeout", d.RequestTimeout, "per-request timeout")
	fs.String("db", d.DBPath, "path of the local SQLite database")
	fs.String("storage", d.Storage.Driver, "session storage driver (sqlite|redis)")
	fs.String("redis-addr", d.Storage.RedisAddr, "redis address for --storage=redis")
	fs.String("log-backend", d.Log.Backend, "log backend (slog|zap)")
	fs.String("log-level", d.Log.Level, "log level (debug|info|warn|error)")
	fs.String("log-format", d.Log.Format, "log format (text|json)")
	fs.String("log-file", d.Log.File, "write logs to this file instead of stderr")
}

// applyFlags copies flags the user set on fs into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && fs.Changed(name) {
			*dst, err = fs.GetString(name)
		}
	}

	str("addr", &cfg.ServerURL)
	str("db", &cfg.DBPath)
	str("storage", &cfg.Storage.Driver)
	str("redis-addr", &cfg.Storage.RedisAddr)
	str("log-backend", &cfg.Log.Backend)
	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("log-file", &cfg.Log.File)
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}

	if fs.Changed("interval") {
		if cfg.OnlineCheckInterval, err = fs.GetDuration("interval"); err != nil {
			return fmt.Errorf("read flags: %w", err)
		}
	}
	if fs.Changed("timeout") {
		if cfg.RequestTimeout, err = fs.GetDuration("timeout"); err != nil {
			return fmt.Errorf("read flags: %w", err)
		}
	}
	return nil
}

// Load builds a Config from defaults, then the file named by --config, then
// the flags set on fs. Later sources take precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Defaults()
	if fs != nil {
		if path, _ := fs.GetString(FlagConfig); path != "" {
			if err := loadFile(&cfg, path); err != nil {
				return nil, err
			}
		}
		if err := applyFlags(&cfg, fs); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
