// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	TradeMe       TradeMeConfig       `yaml:"trademe"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Retry         RetryConfig         `yaml:"retry"`
	TokenStore    TokenStoreConfig    `yaml:"token_store"`
	Server        ServerConfig        `yaml:"server"`
	Watch         WatchConfig         `yaml:"watch"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// TradeMeConfig defines the API credentials and endpoints.
type TradeMeConfig struct {
	ConsumerKey     string        `yaml:"consumer_key"`
	ConsumerSecret  string        `yaml:"consumer_secret"`
	Environment     string        `yaml:"environment"` // sandbox, production
	BaseURL         string        `yaml:"base_url"`
	RequestTokenURL string        `yaml:"request_token_url"`
	AuthorizeURL    string        `yaml:"authorize_url"`
	AccessTokenURL  string        `yaml:"access_token_url"`
	Scope           string        `yaml:"scope"`
	Callback        string        `yaml:"callback"`
	Timeout         time.Duration `yaml:"timeout"`
	UserAgent       string        `yaml:"user_agent"`

	// UnauthenticatedUpgrade signs public reads with the access token when
	// one is held. Nil means true.
	UnauthenticatedUpgrade *bool `yaml:"unauthenticated_upgrade"`
}

// UpgradeEnabled reports the effective unauthenticated upgrade setting.
func (t *TradeMeConfig) UpgradeEnabled() bool {
	return t.UnauthenticatedUpgrade == nil || *t.UnauthenticatedUpgrade
}

// HasEndpointOverrides reports whether any endpoint URL is set explicitly.
func (t *TradeMeConfig) HasEndpointOverrides() bool {
	return t.BaseURL != "" || t.RequestTokenURL != "" || t.AuthorizeURL != "" || t.AccessTokenURL != ""
}

// RateLimitConfig defines client-side throttling. A zero quota disables the
// per-window cap.
type RateLimitConfig struct {
	PerSecond   float64       `yaml:"per_second"`
	Burst       int           `yaml:"burst"`
	Quota       int64         `yaml:"quota"`
	QuotaWindow time.Duration `yaml:"quota_window"`
}

// RetryConfig defines the backoff applied to failed calls.
type RetryConfig struct {
	Enabled         bool          `yaml:"enabled"`
	MaxTries        uint          `yaml:"max_tries"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	MaxElapsedTime  time.Duration `yaml:"max_elapsed_time"`
}

// TokenStoreConfig selects where access tokens are persisted.
type TokenStoreConfig struct {
	Backend  string         `yaml:"backend"` // file, postgres
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
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

// ServerConfig defines the watch daemon's HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WatchConfig defines the saved-search poller.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Searches []WatchSearch `yaml:"searches"`
}

// WatchSearch is one general search polled for new listings.
type WatchSearch struct {
	Name         string  `yaml:"name"`
	SearchString string  `yaml:"search_string"`
	Category     string  `yaml:"category"`
	Region       int     `yaml:"region"`
	PriceMin     float64 `yaml:"price_min"`
	PriceMax     float64 `yaml:"price_max"`
	BuyNowOnly   bool    `yaml:"buy_now_only"`
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

// LoadEnvFiles loads KEY=value pairs from .env style files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a configuration with every default applied and no
// credentials. Callers fill in the consumer key and secret.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate checks a configuration assembled outside Parse, such as Default
// with credentials filled in from flags.
func (c *Config) Validate() error {
	return validate(c)
}

func applyDefaults(cfg *Config) {
	applyTradeMeDefaults(&cfg.TradeMe)
	applyRateLimitDefaults(&cfg.RateLimit)
	applyRetryDefaults(&cfg.Retry)
	applyTokenStoreDefaults(&cfg.TokenStore)
	applyServerDefaults(&cfg.Server)
	applyWatchDefaults(&cfg.Watch)
	applyLoggingDefaults(&cfg.Logging)
}

func applyTradeMeDefaults(t *TradeMeConfig) {
	if t.Environment == "" {
		t.Environment = "sandbox"
	}
	if t.Scope == "" {
		t.Scope = "MyTradeMeRead,MyTradeMeWrite,BiddingAndBuying"
	}
	if t.Callback == "" {
		t.Callback = "oob"
	}
	if t.Timeout == 0 {
		t.Timeout = 30 * time.Second
	}
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.QuotaWindow == 0 {
		r.QuotaWindow = time.Hour
	}
}

func applyRetryDefaults(r *RetryConfig) {
	if r.MaxTries == 0 {
		r.MaxTries = 3
	}
	if r.InitialInterval == 0 {
		r.InitialInterval = 500 * time.Millisecond
	}
	if r.MaxInterval == 0 {
		r.MaxInterval = 5 * time.Second
	}
	if r.MaxElapsedTime == 0 {
		r.MaxElapsedTime = 30 * time.Second
	}
}

func applyTokenStoreDefaults(s *TokenStoreConfig) {
	if s.Backend == "" {
		s.Backend = "file"
	}
	if s.Backend == "file" && s.Path == "" {
		s.Path = defaultTokenPath()
	}
	if s.Database.Port == 0 {
		s.Database.Port = 5432
	}
	if s.Database.SSLMode == "" {
		s.Database.SSLMode = "disable"
	}
	if s.Database.PoolSize == 0 {
		s.Database.PoolSize = 4
	}
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".trademe-token.yaml"
	}
	return dir + "/trademe/token.yaml"
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

func applyWatchDefaults(w *WatchConfig) {
	if w.Interval == 0 {
		w.Interval = 10 * time.Minute
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

	if cfg.TradeMe.ConsumerKey == "" {
		errs = append(errs, fmt.Errorf("trademe.consumer_key is required"))
	}
	if cfg.TradeMe.ConsumerSecret == "" {
		errs = append(errs, fmt.Errorf("trademe.consumer_secret is required"))
	}

	switch cfg.TradeMe.Environment {
	case "sandbox", "production":
	default:
		errs = append(errs, fmt.Errorf(
			"trademe.environment must be one of: sandbox, production (got %q)",
			cfg.TradeMe.Environment,
		))
	}

	if cfg.TradeMe.HasEndpointOverrides() && cfg.TradeMe.BaseURL == "" {
		errs = append(errs, fmt.Errorf("trademe.base_url is required when endpoint URLs are overridden"))
	}

	if cfg.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.per_second must not be negative"))
	}
	if cfg.RateLimit.Quota < 0 {
		errs = append(errs, fmt.Errorf("rate_limit.quota must not be negative"))
	}

	switch cfg.TokenStore.Backend {
	case "file":
		if cfg.TokenStore.Path == "" {
			errs = append(errs, fmt.Errorf("token_store.path is required when backend is file"))
		}
	case "postgres":
		if cfg.TokenStore.Database.Host == "" {
			errs = append(
				errs,
				fmt.Errorf("token_store.database.host is required when backend is postgres"),
			)
		}
		if cfg.TokenStore.Database.Name == "" {
			errs = append(
				errs,
				fmt.Errorf("token_store.database.name is required when backend is postgres"),
			)
		}
	default:
		errs = append(errs, fmt.Errorf(
			"token_store.backend must be one of: file, postgres (got %q)",
			cfg.TokenStore.Backend,
		))
	}

	seen := make(map[string]bool, len(cfg.Watch.Searches))
	for i, s := range cfg.Watch.Searches {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("watch.searches[%d].name is required", i))
			continue
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("watch.searches[%d].name %q is duplicated", i, s.Name))
		}
		seen[s.Name] = true
		if s.SearchString == "" && s.Category == "" {
			errs = append(
				errs,
				fmt.Errorf("watch.searches[%d] needs a search_string or category", i),
			)
		}
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	return errors.Join(errs...)
}
