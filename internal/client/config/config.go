package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/client/search"
)

// Config holds runtime settings for the dmara CLI.
type Config struct {
	ServerURL           string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	SearchDebounce      time.Duration
	SearchParallelism   int
	DBPath              string

	Storage    StorageConfig
	Auth       AuthConfig
	Categories CategoryConfig
	Log        LogConfig
}

type StorageConfig struct {
	// Driver is "sqlite" or "redis".
	Driver    string
	RedisAddr string
}

type AuthConfig struct {
	// IdentityPath is the app segment of the Google login route,
	// /api/<IdentityPath>/google/.
	IdentityPath       string
	GoogleClientID     string
	GoogleClientSecret string
	// RedirectAddr is where the OAuth callback listens; port 0 picks one.
	RedirectAddr string
}

type CategoryConfig struct {
	ShowsItems string
	ShowsPosts string
}

type LogConfig struct {
	Backend string
	Level   string
	Format  string
	// File receives the log; empty means stderr.
	File string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ServerURL:           "http://127.0.0.1:8000",
		OnlineCheckInterval: 3 * time.Second,
		RequestTimeout:      15 * time.Second,
		SearchDebounce:      search.DefaultDelay,
		SearchParallelism:   4,
		DBPath:              defaultDBPath(),
		Storage:             StorageConfig{Driver: "sqlite", RedisAddr: "127.0.0.1:6379"},
		Auth:                AuthConfig{IdentityPath: "hobbies", RedirectAddr: "127.0.0.1:0"},
		Categories: CategoryConfig{
			ShowsItems: string(models.CodeExhibition),
			ShowsPosts: string(models.CodeShow),
		},
		Log: LogConfig{Backend: "slog", Level: "info", Format: "text"},
	}
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "dmara.db"
	}
	return filepath.Join(dir, "dmara", "client.db")
}

// Catalogue builds the category mapping from the configured Shows codes.
func (c *Config) Catalogue() models.Catalogue {
	return models.Catalogue{
		ShowsItems: models.Code(strings.ToUpper(c.Categories.ShowsItems)),
		ShowsPosts: models.Code(strings.ToUpper(c.Categories.ShowsPosts)),
	}
}

// GoogleLoginPath is the backend route the Google token is exchanged at.
func (c *Config) GoogleLoginPath() string {
	return "/api/" + strings.Trim(c.Auth.IdentityPath, "/") + "/google/"
}

func (c *Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("server_url %q must be an absolute URL", c.ServerURL))
	}
	if c.OnlineCheckInterval <= 0 {
		errs = append(errs, errors.New("online_check_interval must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request_timeout must be positive"))
	}
	if c.SearchDebounce < 0 {
		errs = append(errs, errors.New("search_debounce must not be negative"))
	}
	if c.SearchParallelism < 1 {
		errs = append(errs, errors.New("search_parallelism must be at least 1"))
	}
	switch c.Storage.Driver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("db_path is required for sqlite storage"))
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			errs = append(errs, errors.New("storage.redis_addr is required for redis storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if strings.Trim(c.Auth.IdentityPath, "/") == "" {
		errs = append(errs, errors.New("auth.identity_path must not be empty"))
	}
	return errors.Join(errs...)
}
