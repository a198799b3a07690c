package main

import "errors"

// KnownMetrics is the set of metric names exported by tgtg-watcher plus
// recording rule names referenced in dashboards and alerts. Histograms are
// listed by base name.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"tgtg_http_request_duration_seconds": true,
	"tgtg_http_requests_total":           true,

	// Health metrics.
	"tgtg_healthz_up": true,
	"tgtg_readyz_up":  true,

	// Session metrics.
	"tgtg_handshakes_total":      true,
	"tgtg_poll_attempts_total":   true,
	"tgtg_token_refreshes_total": true,

	// Item search metrics.
	"tgtg_search_requests_total":   true,
	"tgtg_search_duration_seconds": true,

	// Watch metrics.
	"tgtg_watch_cycle_duration_seconds": true,
	"tgtg_watch_errors_total":           true,
	"tgtg_watch_last_success_timestamp": true,
	"tgtg_snapshots_recorded_total":     true,
	"tgtg_bags_available":               true,

	// Alert metrics.
	"tgtg_alerts_fired_total":            true,
	"tgtg_notification_failures_total":   true,
	"tgtg_notification_duration_seconds": true,

	// Recording rules.
	"tgtg:http_requests:rate5m":         true,
	"tgtg:http_errors:rate5m":           true,
	"tgtg:search_requests:rate5m":       true,
	"tgtg:token_refreshes:rate5m":       true,
	"tgtg:snapshots_recorded:rate5m":    true,
	"tgtg:notification_duration:p95_5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
