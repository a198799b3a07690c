// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	TGTG          TGTGConfig          `yaml:"tgtg"`
	Search        SearchConfig        `yaml:"search"`
	Watch         WatchConfig         `yaml:"watch"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// TGTGConfig defines the marketplace API client settings.
type TGTGConfig struct {
	Email      string `yaml:"email"`
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	DeviceType string `yaml:"device_type"`
	UserAgent  string `yaml:"user_agent"`

	Timeout  time.Duration `yaml:"timeout"`
	RetryMax int           `yaml:"retry_max"` // -1 disables gateway retries

	AccessTokenLifetime time.Duration `yaml:"access_token_lifetime"`
	RefreshMargin       time.Duration `yaml:"refresh_margin"`
	PollInterval        time.Duration `yaml:"poll_interval"`
	MaxPollAttempts     int           `yaml:"max_poll_attempts"`
}

// Retries returns the gateway retry count, with negative values meaning none.
func (t *TGTGConfig) Retries() int {
	return max(t.RetryMax, 0)
}

// SearchConfig defines default item search criteria.
type SearchConfig struct {
	Latitude       float64  `yaml:"latitude"`
	Longitude      float64  `yaml:"longitude"`
	Radius         int      `yaml:"radius"`
	PageSize       int      `yaml:"page_size"`
	MaxPages       int      `yaml:"max_pages"`
	ItemCategories []string `yaml:"item_categories"`
	DietCategories []string `yaml:"diet_categories"`
	SearchPhrase   string   `yaml:"search_phrase"`
	FavoritesOnly  bool     `yaml:"favorites_only"`
	WithStockOnly  bool     `yaml:"with_stock_only"`
}

// Criteria converts the settings into a first-page search request.
func (s *SearchConfig) Criteria() tgtg.Criteria {
	return tgtg.Criteria{
		Origin:         tgtg.Position{Latitude: s.Latitude, Longitude: s.Longitude},
		Radius:         s.Radius,
		PageSize:       s.PageSize,
		PageNumber:     1,
		FavoritesOnly:  s.FavoritesOnly,
		ItemCategories: s.ItemCategories,
		DietCategories: s.DietCategories,
		SearchPhrase:   s.SearchPhrase,
		WithStockOnly:  s.WithStockOnly,
	}
}

// WatchConfig defines the periodic stock watcher.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	Searches []SavedSearch `yaml:"searches"`

	// NotifyNew alerts on bags seen for the first time with stock. Unset means true.
	NotifyNew *bool `yaml:"notify_new"`
}

// NotifiesNew reports whether first sightings with stock raise alerts.
func (w *WatchConfig) NotifiesNew() bool {
	return w.NotifyNew == nil || *w.NotifyNew
}

// SavedSearch is a named search the watcher runs every cycle. Unset
// location and paging fields fall back to the search section.
type SavedSearch struct {
	Name         string `yaml:"name"`
	SearchConfig `yaml:",inline"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines snapshot store settings. The sqlite driver only
// uses Path; the postgres driver uses the connection fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, postgres
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Override adjusts a parsed config before defaults and validation run, e.g.
// to apply command-line flags.
type Override func(*Config)

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. An empty path starts from an empty config so
// the CLI can run on flags and defaults alone.
func Load(path string, overrides ...Override) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// Expand environment variables in the YAML content.
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	for _, o := range overrides {
		o(cfg)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyTGTGDefaults(&cfg.TGTG)
	applySearchDefaults(&cfg.Search)
	applyWatchDefaults(&cfg.Watch, &cfg.Search)
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyLoggingDefaults(&cfg.Logging)
}

func applyTGTGDefaults(t *TGTGConfig) {
	if t.BaseURL == "" {
		t.BaseURL = tgtg.DefaultBaseURL
	}
	if t.Language == "" {
		t.Language = tgtg.DefaultLanguage
	}
	if t.DeviceType == "" {
		t.DeviceType = tgtg.DefaultDeviceType
	}
	if t.UserAgent == "" {
		t.UserAgent = tgtg.DefaultUserAgent
	}
	if t.Timeout == 0 {
		t.Timeout = 10 * time.Second
	}
	if t.RetryMax == 0 {
		t.RetryMax = 1
	}
	if t.AccessTokenLifetime == 0 {
		t.AccessTokenLifetime = tgtg.DefaultAccessTokenLifetime
	}
	if t.RefreshMargin == 0 {
		t.RefreshMargin = tgtg.DefaultRefreshMargin
	}
	if t.PollInterval == 0 {
		t.PollInterval = tgtg.DefaultPollInterval
	}
	if t.MaxPollAttempts == 0 {
		t.MaxPollAttempts = tgtg.DefaultMaxPollAttempts
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.Radius == 0 {
		s.Radius = 5
	}
	if s.PageSize == 0 {
		s.PageSize = 20
	}
	if s.MaxPages == 0 {
		s.MaxPages = 5
	}
}

func applyWatchDefaults(w *WatchConfig, base *SearchConfig) {
	if w.Interval == 0 {
		w.Interval = 5 * time.Minute
	}
	if len(w.Searches) == 0 {
		w.Searches = []SavedSearch{{Name: "default"}}
	}
	for i := range w.Searches {
		s := &w.Searches[i]
		if s.Latitude == 0 && s.Longitude == 0 {
			s.Latitude = base.Latitude
			s.Longitude = base.Longitude
		}
		if s.Radius == 0 {
			s.Radius = base.Radius
		}
		if s.PageSize == 0 {
			s.PageSize = base.PageSize
		}
		if s.MaxPages == 0 {
			s.MaxPages = base.MaxPages
		}
		if len(s.ItemCategories) == 0 {
			s.ItemCategories = base.ItemCategories
		}
		if len(s.DietCategories) == 0 {
			s.DietCategories = base.DietCategories
		}
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Driver == "" {
		d.Driver = DriverSQLite
	}
	if d.Path == "" {
		d.Path = "tgtg-watcher.db"
	}
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.TGTG.Email == "" {
		errs = append(errs, fmt.Errorf("tgtg.email is required"))
	}
	if cfg.TGTG.RefreshMargin >= cfg.TGTG.AccessTokenLifetime {
		errs = append(errs, fmt.Errorf("tgtg.refresh_margin must be shorter than tgtg.access_token_lifetime"))
	}
	if cfg.TGTG.MaxPollAttempts < 1 {
		errs = append(errs, fmt.Errorf("tgtg.max_poll_attempts must be at least 1"))
	}

	for i, s := range cfg.Watch.Searches {
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("watch.searches[%d].name is required", i))
		}
	}

	switch cfg.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required when driver is postgres"))
		}
		if cfg.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required when driver is postgres"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required when driver is postgres"))
		}
	default:
		errs = append(
			errs,
			fmt.Errorf(
				"database.driver must be one of: sqlite, postgres (got %q)",
				cfg.Database.Driver,
			),
		)
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}
