package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/dmara/internal/timex"
)

// fileConfig is the on-disk shape. Durations use timex.Duration so they may
// be written as "3s" or as integer nanoseconds.
type fileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	SearchDebounce      timex.Duration `json:"search_debounce" yaml:"search_debounce"`
	SearchParallelism   int            `json:"search_parallelism" yaml:"search_parallelism"`
	DBPath              string         `json:"db_path" yaml:"db_path"`

	Storage struct {
		Driver    string `json:"driver" yaml:"driver"`
		RedisAddr string `json:"redis_addr" yaml:"redis_addr"`
	} `json:"storage" yaml:"storage"`

	Auth struct {
		IdentityPath       string `json:"identity_path" yaml:"identity_path"`
		GoogleClientID     string `json:"google_client_id" yaml:"google_client_id"`
		GoogleClientSecret string `json:"google_client_secret" yaml:"google_client_secret"`
		RedirectAddr       string `json:"redirect_addr" yaml:"redirect_addr"`
	} `json:"auth" yaml:"auth"`

	Categories struct {
		ShowsItems string `json:"shows_items" yaml:"shows_items"`
		ShowsPosts string `json:"shows_posts" yaml:"shows_posts"`
	} `json:"categories" yaml:"categories"`

	Log struct {
		Backend string `json:"backend" yaml:"backend"`
		Level   string `json:"level" yaml:"level"`
		Format  string `json:"format" yaml:"format"`
		File    string `json:"file" yaml:"file"`
	} `json:"log" yaml:"log"`
}

// loadFile overlays cfg with the values set in path. The format follows the
// extension: .yaml and .yml are YAML, anything else is JSON.
func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (fc *fileConfig) apply(cfg *Config) {
	setString(&cfg.ServerURL, fc.ServerURL)
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.SearchDebounce.Duration != 0 {
		cfg.SearchDebounce = fc.SearchDebounce.Duration
	}
	if fc.SearchParallelism != 0 {
		cfg.SearchParallelism = fc.SearchParallelism
	}
	setString(&cfg.DBPath, fc.DBPath)

	setString(&cfg.Storage.Driver, fc.Storage.Driver)
	setString(&cfg.Storage.RedisAddr, fc.Storage.RedisAddr)

	setString(&cfg.Auth.IdentityPath, fc.Auth.IdentityPath)
	setString(&cfg.Auth.GoogleClientID, fc.Auth.GoogleClientID)
	setString(&cfg.Auth.GoogleClientSecret, fc.Auth.GoogleClientSecret)
	setString(&cfg.Auth.RedirectAddr, fc.Auth.RedirectAddr)

	setString(&cfg.Categories.ShowsItems, fc.Categories.ShowsItems)
	setString(&cfg.Categories.ShowsPosts, fc.Categories.ShowsPosts)

	setString(&cfg.Log.Backend, fc.Log.Backend)
	setString(&cfg.Log.Level, fc.Log.Level)
	setString(&cfg.Log.Format, fc.Log.Format)
	setString(&cfg.Log.File, fc.Log.File)
}
