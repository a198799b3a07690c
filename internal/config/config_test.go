package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/tgtg"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		overrides []Override
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
tgtg:
  email: user@example.com
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "user@example.com", cfg.TGTG.Email)
				assert.Equal(t, DriverSQLite, cfg.Database.Driver)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
tgtg:
  email: user@example.com
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, tgtg.DefaultBaseURL, cfg.TGTG.BaseURL)
				assert.Equal(t, "en-GB", cfg.TGTG.Language)
				assert.Equal(t, "ANDROID", cfg.TGTG.DeviceType)
				assert.Equal(t, tgtg.DefaultUserAgent, cfg.TGTG.UserAgent)
				assert.Equal(t, 10*time.Second, cfg.TGTG.Timeout)
				assert.Equal(t, 1, cfg.TGTG.RetryMax)
				assert.Equal(t, 24*time.Hour, cfg.TGTG.AccessTokenLifetime)
				assert.Equal(t, 60*time.Second, cfg.TGTG.RefreshMargin)
				assert.Equal(t, 5*time.Second, cfg.TGTG.PollInterval)
				assert.Equal(t, 24, cfg.TGTG.MaxPollAttempts)
				assert.Equal(t, 5, cfg.Search.Radius)
				assert.Equal(t, 20, cfg.Search.PageSize)
				assert.Equal(t, 5, cfg.Search.MaxPages)
				assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
				require.Len(t, cfg.Watch.Searches, 1)
				assert.Equal(t, "default", cfg.Watch.Searches[0].Name)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "tgtg-watcher.db", cfg.Database.Path)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.Database.PoolSize)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
tgtg:
  email: "${TEST_TGTG_EMAIL}"
database:
  driver: postgres
  host: localhost
  name: tgtg
  user: tgtg
  password: "${TEST_DB_PASSWORD}"
`,
			envVars: map[string]string{
				"TEST_TGTG_EMAIL":  "env@example.com",
				"TEST_DB_PASSWORD": "secret123",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env@example.com", cfg.TGTG.Email)
				assert.Equal(t, "secret123", cfg.Database.Password)
			},
		},
		{
			name: "override fills missing email",
			yaml: `
logging:
  level: debug
`,
			overrides: []Override{func(c *Config) { c.TGTG.Email = "flag@example.com" }},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "flag@example.com", cfg.TGTG.Email)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "missing required tgtg.email",
			yaml:    `logging: {level: info}`,
			wantErr: "tgtg.email is required",
		},
		{
			name: "refresh margin longer than lifetime",
			yaml: `
tgtg:
  email: user@example.com
  access_token_lifetime: 1m
  refresh_margin: 2m
`,
			wantErr: "tgtg.refresh_margin must be shorter than tgtg.access_token_lifetime",
		},
		{
			name: "negative poll attempts",
			yaml: `
tgtg:
  email: user@example.com
  max_poll_attempts: -3
`,
			wantErr: "tgtg.max_poll_attempts must be at least 1",
		},
		{
			name: "invalid database driver",
			yaml: `
tgtg:
  email: user@example.com
database:
  driver: mysql
`,
			wantErr: `database.driver must be one of: sqlite, postgres (got "mysql")`,
		},
		{
			name: "postgres missing host",
			yaml: `
tgtg:
  email: user@example.com
database:
  driver: postgres
  name: tgtg
  user: tgtg
`,
			wantErr: "database.host is required when driver is postgres",
		},
		{
			name: "discord enabled without webhook",
			yaml: `
tgtg:
  email: user@example.com
notifications:
  discord:
    enabled: true
`,
			wantErr: "notifications.discord.webhook_url is required when discord is enabled",
		},
		{
			name: "saved search without name",
			yaml: `
tgtg:
  email: user@example.com
watch:
  searches:
    - radius: 3
`,
			wantErr: "watch.searches[0].name is required",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "saved searches inherit search section",
			yaml: `
tgtg:
  email: user@example.com
search:
  latitude: 52.52
  longitude: 13.405
  radius: 3
  item_categories: [BAKED_GOODS]
watch:
  enabled: true
  interval: 2m
  searches:
    - name: home
    - name: office
      latitude: 52.5
      longitude: 13.37
      radius: 1
      page_size: 10
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.True(t, cfg.Watch.Enabled)
				assert.True(t, cfg.Watch.NotifiesNew())
				assert.Equal(t, 2*time.Minute, cfg.Watch.Interval)
				require.Len(t, cfg.Watch.Searches, 2)

				home := cfg.Watch.Searches[0]
				assert.Equal(t, 52.52, home.Latitude)
				assert.Equal(t, 13.405, home.Longitude)
				assert.Equal(t, 3, home.Radius)
				assert.Equal(t, 20, home.PageSize)
				assert.Equal(t, []string{"BAKED_GOODS"}, home.ItemCategories)

				office := cfg.Watch.Searches[1]
				assert.Equal(t, 52.5, office.Latitude)
				assert.Equal(t, 1, office.Radius)
				assert.Equal(t, 10, office.PageSize)
				assert.Equal(t, 5, office.MaxPages)
			},
		},
		{
			name: "full config with overrides",
			yaml: `
tgtg:
  email: user@example.com
  base_url: https://staging.example.com/api/
  language: de-DE
  device_type: IOS
  timeout: 5s
  retry_max: -1
  access_token_lifetime: 12h
  refresh_margin: 5m
  poll_interval: 2s
  max_poll_attempts: 10
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s
  write_timeout: 60s
database:
  driver: postgres
  host: db.example.com
  port: 5433
  name: tgtg_prod
  user: admin
  password: pass
  sslmode: require
  pool_size: 20
notifications:
  discord:
    enabled: true
    webhook_url: https://discord.com/api/webhooks/123
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://staging.example.com/api/", cfg.TGTG.BaseURL)
				assert.Equal(t, "de-DE", cfg.TGTG.Language)
				assert.Equal(t, "IOS", cfg.TGTG.DeviceType)
				assert.Equal(t, 5*time.Second, cfg.TGTG.Timeout)
				assert.Equal(t, 0, cfg.TGTG.Retries())
				assert.Equal(t, 12*time.Hour, cfg.TGTG.AccessTokenLifetime)
				assert.Equal(t, 5*time.Minute, cfg.TGTG.RefreshMargin)
				assert.Equal(t, 2*time.Second, cfg.TGTG.PollInterval)
				assert.Equal(t, 10, cfg.TGTG.MaxPollAttempts)
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, DriverPostgres, cfg.Database.Driver)
				assert.Equal(t, "db.example.com", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, 20, cfg.Database.PoolSize)
				assert.True(t, cfg.Notifications.Discord.Enabled)
				assert.Equal(t, "https://discord.com/api/webhooks/123", cfg.Notifications.Discord.WebhookURL)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path, tt.overrides...)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_NoFile(t *testing.T) {
	t.Parallel()

	cfg, err := Load("", func(c *Config) { c.TGTG.Email = "user@example.com" })
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, 24, cfg.TGTG.MaxPollAttempts)
}

func TestWatchConfig_NotifiesNew(t *testing.T) {
	t.Parallel()

	off, on := false, true
	tests := []struct {
		name string
		val  *bool
		want bool
	}{
		{name: "unset", val: nil, want: true},
		{name: "enabled", val: &on, want: true},
		{name: "disabled", val: &off, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := WatchConfig{NotifyNew: tt.val}
			assert.Equal(t, tt.want, w.NotifiesNew())
		})
	}
}

func TestSearchConfig_Criteria(t *testing.T) {
	t.Parallel()

	s := SearchConfig{
		Latitude:       51.5,
		Longitude:      -0.12,
		Radius:         2,
		PageSize:       15,
		ItemCategories: []string{"MEAL"},
		SearchPhrase:   "sushi",
		WithStockOnly:  true,
	}

	got := s.Criteria()
	assert.Equal(t, tgtg.Position{Latitude: 51.5, Longitude: -0.12}, got.Origin)
	assert.Equal(t, 2, got.Radius)
	assert.Equal(t, 15, got.PageSize)
	assert.Equal(t, 1, got.PageNumber)
	assert.Equal(t, []string{"MEAL"}, got.ItemCategories)
	assert.Equal(t, "sushi", got.SearchPhrase)
	assert.True(t, got.WithStockOnly)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "basic DSN",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				Name:     "tgtg",
				User:     "tgtg",
				Password: "testpass",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 dbname=tgtg user=tgtg password=testpass sslmode=disable",
		},
		{
			name: "production DSN",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "tgtg_prod",
				User:     "admin",
				Password: "s3cret",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 dbname=tgtg_prod user=admin password=s3cret sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
