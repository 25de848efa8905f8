package main

import "errors"

// KnownMetrics is the set of metric names exported by trademe-watch plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"trademe_http_request_duration_seconds": true,
	"trademe_http_requests_total":           true,

	// Health metrics.
	"trademe_healthz_up": true,
	"trademe_readyz_up":  true,

	// Trade Me API metrics.
	"trademe_api_request_duration_seconds": true,
	"trademe_api_requests_total":           true,
	"trademe_api_retries_total":            true,
	"trademe_api_quota_usage":              true,
	"trademe_api_quota_exhausted_total":    true,

	// Watch metrics.
	"trademe_watch_polls_total":           true,
	"trademe_watch_poll_errors_total":     true,
	"trademe_watch_new_listings_total":    true,
	"trademe_watch_poll_duration_seconds": true,

	// Notification metrics.
	"trademe_notifications_sent_total":    true,
	"trademe_notification_failures_total": true,

	// Recording rules.
	"trademe:http_requests:rate5m":      true,
	"trademe:http_errors:rate5m":        true,
	"trademe:api_requests:rate5m":       true,
	"trademe:api_errors:rate5m":         true,
	"trademe:api_retries:rate5m":        true,
	"trademe:watch_new_listings:rate5m": true,
	"trademe:watch_poll_errors:rate5m":  true,

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
