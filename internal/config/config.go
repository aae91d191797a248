package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/justestif/go-spotify-alarm/internal/auth"
	"github.com/justestif/go-spotify-alarm/internal/catalog"
	"github.com/justestif/go-spotify-alarm/internal/logger"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "spotify-alarm.yaml"

	// DefaultListenAddr is the default HTTP listen address.
	DefaultListenAddr = "127.0.0.1:8080"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	appDirName       = "spotify-alarm"
	defaultStoreFile = "alarms.json"
	defaultSQLite    = "alarms.db"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownDriver is returned for an unsupported store driver.
	errUnknownDriver = errors.New("unknown store driver")
	// errUnknownLogLevel is returned for an unsupported log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errDatabaseURLRequired is returned when the postgres driver has no URL.
	errDatabaseURLRequired = errors.New("database_url must be provided for the postgres driver")
)

// Config holds the settings of the spotify-alarm binary.
type Config struct {
	// ListenAddr is the HTTP address the API server binds to.
	ListenAddr string `yaml:"listen_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// RefreshInterval is how often the catalog is refetched from Spotify.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	// RefreshCooldown is the minimum time between on-demand refreshes.
	RefreshCooldown time.Duration `yaml:"refresh_cooldown"`
	// Store selects where alarms are kept.
	Store Store `yaml:"store"`
	// Spotify holds OAuth settings.
	Spotify Spotify `yaml:"spotify"`
}

// Store selects the key-value backend.
type Store struct {
	// Driver is one of memory, file, sqlite, postgres.
	Driver string `yaml:"driver"`
	// Path is the file or sqlite database path.
	Path string `yaml:"path,omitempty"`
	// DatabaseURL is the postgres connection string.
	DatabaseURL string `yaml:"database_url,omitempty"`
}

// Spotify holds OAuth settings.
type Spotify struct {
	// RedirectURL must match the URL registered for the Spotify application.
	RedirectURL string `yaml:"redirect_url"`
	// TokenPath is where the OAuth token is cached.
	TokenPath string `yaml:"token_path,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	cfg := new(Config)
	// An empty config only fails without a user config dir; the store path stays empty then.
	_ = Validate(cfg)
	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills defaults for unset fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ListenAddr == "" {
		settings.ListenAddr = DefaultListenAddr
	}
	if _, _, err := net.SplitHostPort(settings.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}
	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	if settings.RefreshInterval <= 0 {
		settings.RefreshInterval = catalog.DefaultRefreshInterval
	}
	if settings.RefreshCooldown <= 0 {
		settings.RefreshCooldown = catalog.DefaultRefreshCooldown
	}

	if err := validateStore(&settings.Store); err != nil {
		return err
	}

	if settings.Spotify.RedirectURL == "" {
		settings.Spotify.RedirectURL = auth.DefaultRedirectURL
	}
	if _, err := url.ParseRequestURI(settings.Spotify.RedirectURL); err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}
	if settings.Spotify.TokenPath == "" {
		if path, err := auth.DefaultTokenPath(); err == nil {
			settings.Spotify.TokenPath = path
		}
	}

	return nil
}

func validateStore(store *Store) error {
	if store.Driver == "" {
		store.Driver = DriverFile
	}

	switch store.Driver {
	case DriverMemory:
		return nil
	case DriverFile:
		return defaultPath(store, defaultStoreFile)
	case DriverSQLite:
		return defaultPath(store, defaultSQLite)
	case DriverPostgres:
		if store.DatabaseURL == "" {
			return errDatabaseURLRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, store.Driver)
	}
}

func defaultPath(store *Store, name string) error {
	if store.Path != "" {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("store path not set: %w", err)
	}
	store.Path = filepath.Join(dir, appDirName, name)
	return nil
}
