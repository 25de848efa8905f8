package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
token_store:
  path: /tmp/token.yaml
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "key", cfg.TradeMe.ConsumerKey)
				assert.Equal(t, "secret", cfg.TradeMe.ConsumerSecret)
				assert.Equal(t, "file", cfg.TokenStore.Backend)
				assert.Equal(t, "/tmp/token.yaml", cfg.TokenStore.Path)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "sandbox", cfg.TradeMe.Environment)
				assert.Equal(t, "MyTradeMeRead,MyTradeMeWrite,BiddingAndBuying", cfg.TradeMe.Scope)
				assert.Equal(t, "oob", cfg.TradeMe.Callback)
				assert.Equal(t, 30*time.Second, cfg.TradeMe.Timeout)
				assert.True(t, cfg.TradeMe.UpgradeEnabled())
				assert.InDelta(t, 2.0, cfg.RateLimit.PerSecond, 0.001)
				assert.Equal(t, 5, cfg.RateLimit.Burst)
				assert.Equal(t, int64(0), cfg.RateLimit.Quota)
				assert.Equal(t, time.Hour, cfg.RateLimit.QuotaWindow)
				assert.False(t, cfg.Retry.Enabled)
				assert.Equal(t, uint(3), cfg.Retry.MaxTries)
				assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialInterval)
				assert.NotEmpty(t, cfg.TokenStore.Path)
				assert.Equal(t, 5432, cfg.TokenStore.Database.Port)
				assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
				assert.Equal(t, 10*time.Minute, cfg.Watch.Interval)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
trademe:
  consumer_key: "${TEST_TM_KEY}"
  consumer_secret: "${TEST_TM_SECRET}"
`,
			envVars: map[string]string{
				"TEST_TM_KEY":    "env-key",
				"TEST_TM_SECRET": "env-secret",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env-key", cfg.TradeMe.ConsumerKey)
				assert.Equal(t, "env-secret", cfg.TradeMe.ConsumerSecret)
			},
		},
		{
			name: "missing consumer key",
			yaml: `
trademe:
  consumer_secret: secret
`,
			wantErr: "trademe.consumer_key is required",
		},
		{
			name: "missing consumer secret",
			yaml: `
trademe:
  consumer_key: key
`,
			wantErr: "trademe.consumer_secret is required",
		},
		{
			name: "invalid environment",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
  environment: staging
`,
			wantErr: `trademe.environment must be one of: sandbox, production (got "staging")`,
		},
		{
			name: "endpoint override without base url",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
  request_token_url: http://localhost:9000/Oauth/RequestToken
`,
			wantErr: "trademe.base_url is required when endpoint URLs are overridden",
		},
		{
			name: "upgrade disabled",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
  unauthenticated_upgrade: false
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.False(t, cfg.TradeMe.UpgradeEnabled())
			},
		},
		{
			name: "postgres backend missing host",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
token_store:
  backend: postgres
  database:
    name: trademe
`,
			wantErr: "token_store.database.host is required when backend is postgres",
		},
		{
			name: "invalid token store backend",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
token_store:
  backend: redis
`,
			wantErr: `token_store.backend must be one of: file, postgres (got "redis")`,
		},
		{
			name: "negative quota",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
rate_limit:
  quota: -1
`,
			wantErr: "rate_limit.quota must not be negative",
		},
		{
			name: "watch search without name",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
watch:
  searches:
    - search_string: ipod
`,
			wantErr: "watch.searches[0].name is required",
		},
		{
			name: "duplicate watch search names",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
watch:
  searches:
    - name: ipods
      search_string: ipod
    - name: ipods
      search_string: ipod nano
`,
			wantErr: `watch.searches[1].name "ipods" is duplicated`,
		},
		{
			name: "watch search without terms",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
watch:
  searches:
    - name: empty
`,
			wantErr: "watch.searches[0] needs a search_string or category",
		},
		{
			name: "discord enabled without url",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
notifications:
  discord:
    enabled: true
`,
			wantErr: "notifications.discord.webhook_url is required when discord is enabled",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
trademe:
  consumer_key: key
  consumer_secret: secret
  environment: production
  base_url: http://localhost:9000/v1/
  request_token_url: http://localhost:9000/Oauth/RequestToken
  authorize_url: http://localhost:9000/Oauth/Authorize
  access_token_url: http://localhost:9000/Oauth/AccessToken
  scope: MyTradeMeRead
  callback: https://example.com/callback
  timeout: 10s
  user_agent: watcher/1.0
rate_limit:
  per_second: 1
  burst: 2
  quota: 1000
  quota_window: 24h
retry:
  enabled: true
  max_tries: 5
  initial_interval: 1s
  max_interval: 10s
  max_elapsed_time: 1m
token_store:
  backend: postgres
  database:
    host: db.example.com
    port: 5433
    name: trademe
    user: admin
    password: pass
    sslmode: require
    pool_size: 8
server:
  host: "127.0.0.1"
  port: 9090
watch:
  interval: 5m
  searches:
    - name: nanos
      search_string: ipod nano
      category: "0002-0356-"
      region: 2
      price_max: 150
      buy_now_only: true
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
				assert.Equal(t, "production", cfg.TradeMe.Environment)
				assert.True(t, cfg.TradeMe.HasEndpointOverrides())
				assert.Equal(t, "http://localhost:9000/v1/", cfg.TradeMe.BaseURL)
				assert.Equal(t, "MyTradeMeRead", cfg.TradeMe.Scope)
				assert.Equal(t, "https://example.com/callback", cfg.TradeMe.Callback)
				assert.Equal(t, 10*time.Second, cfg.TradeMe.Timeout)
				assert.Equal(t, "watcher/1.0", cfg.TradeMe.UserAgent)
				assert.Equal(t, int64(1000), cfg.RateLimit.Quota)
				assert.Equal(t, 24*time.Hour, cfg.RateLimit.QuotaWindow)
				assert.True(t, cfg.Retry.Enabled)
				assert.Equal(t, uint(5), cfg.Retry.MaxTries)
				assert.Equal(t, time.Minute, cfg.Retry.MaxElapsedTime)
				assert.Equal(t, "postgres", cfg.TokenStore.Backend)
				assert.Equal(t, 8, cfg.TokenStore.Database.PoolSize)
				assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr())
				assert.Equal(t, 5*time.Minute, cfg.Watch.Interval)
				require.Len(t, cfg.Watch.Searches, 1)
				assert.Equal(t, "ipod nano", cfg.Watch.Searches[0].SearchString)
				assert.InDelta(t, 150.0, cfg.Watch.Searches[0].PriceMax, 0.001)
				assert.True(t, cfg.Watch.Searches[0].BuyNowOnly)
				assert.True(t, cfg.Notifications.Discord.Enabled)
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

			cfg, err := Load(path)

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

func TestLoad_ExampleConfig(t *testing.T) {
	t.Setenv("TRADEME_CONSUMER_KEY", "example-key")
	t.Setenv("TRADEME_CONSUMER_SECRET", "example-secret")

	cfg, err := Load(filepath.Join("..", "..", "configs", "config.example.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "example-key", cfg.TradeMe.ConsumerKey)
	assert.True(t, cfg.TradeMe.UpgradeEnabled())
	assert.Equal(t, int64(1000), cfg.RateLimit.Quota)
	assert.Equal(t, time.Hour, cfg.RateLimit.QuotaWindow)
	assert.Equal(t, 15*time.Minute, cfg.Watch.Interval)
	require.Len(t, cfg.Watch.Searches, 2)
	assert.Equal(t, "0002-0357-", cfg.Watch.Searches[1].Category)
	assert.True(t, cfg.Watch.Searches[1].BuyNowOnly)
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_TM_DOTENV=from-file\n"), 0o600))
	t.Setenv("TEST_TM_DOTENV", "")
	require.NoError(t, os.Unsetenv("TEST_TM_DOTENV"))

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("TEST_TM_DOTENV"))
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_TM_PRESET=from-file\n"), 0o600))
	t.Setenv("TEST_TM_PRESET", "from-env")

	require.NoError(t, LoadEnvFiles(path))
	assert.Equal(t, "from-env", os.Getenv("TEST_TM_PRESET"))
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, "sandbox", cfg.TradeMe.Environment)
	assert.Equal(t, "file", cfg.TokenStore.Backend)
	assert.Empty(t, cfg.TradeMe.ConsumerKey)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trademe.consumer_key is required")

	cfg.TradeMe.ConsumerKey = "key"
	cfg.TradeMe.ConsumerSecret = "secret"
	require.NoError(t, cfg.Validate())

	cfg.TradeMe.Environment = "staging"
	require.Error(t, cfg.Validate())
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
				Name:     "trademe",
				User:     "tm",
				Password: "pw",
				SSLMode:  "disable",
			},
			want: "host=localhost port=5432 dbname=trademe user=tm password=pw sslmode=disable",
		},
		{
			name: "production DSN",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				Name:     "tokens",
				User:     "admin",
				Password: "s3cret",
				SSLMode:  "require",
			},
			want: "host=db.example.com port=5433 dbname=tokens user=admin password=s3cret sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}
