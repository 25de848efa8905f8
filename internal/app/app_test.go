package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/internal/app"
	"github.com/donaldgifford/trademe/internal/config"
	"github.com/donaldgifford/trademe/internal/store"
	"github.com/donaldgifford/trademe/pkg/logger"
	"github.com/donaldgifford/trademe/pkg/oauth1"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.TradeMe.ConsumerKey = "key"
	cfg.TradeMe.ConsumerSecret = "secret"
	cfg.TradeMe.BaseURL = baseURL
	cfg.TokenStore.Path = filepath.Join(t.TempDir(), "token.yaml")
	return cfg
}

func TestOpenStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.TokenStoreConfig
		wantErr string
	}{
		{name: "file backend", cfg: config.TokenStoreConfig{Backend: "file", Path: "/tmp/x.yaml"}},
		{name: "empty backend means file", cfg: config.TokenStoreConfig{Path: "/tmp/x.yaml"}},
		{name: "unknown backend", cfg: config.TokenStoreConfig{Backend: "redis"}, wantErr: `unknown token store backend "redis"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st, err := app.OpenStore(context.Background(), &tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &store.FileStore{}, st)
			st.Close()
		})
	}
}

func TestNewClient_LoadsStoredToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t, "")
	st := store.NewFileStore(cfg.TokenStore.Path)

	client, err := app.NewClient(ctx, cfg, st, logger.Discard(), nil)
	require.NoError(t, err)
	assert.Equal(t, trademe.Unauthenticated, client.State())

	require.NoError(t, st.SaveToken(ctx, "key", &oauth1.Token{Token: "t", Secret: "s"}))

	client, err = app.NewClient(ctx, cfg, st, logger.Discard(), nil)
	require.NoError(t, err)
	assert.Equal(t, trademe.Authenticated, client.State())
	assert.Equal(t, "t", client.Credentials().AccessToken.Token)
}

func TestNewClient_EndpointOverrides(t *testing.T) {
	t.Parallel()

	var (
		mu               sync.Mutex
		gotPath, gotAuth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<Category><Name>Root</Name><Number></Number></Category>`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL+"/v1/")
	cfg.Retry.Enabled = true
	cfg.RateLimit.Quota = 100
	cfg.TradeMe.UserAgent = "test-agent"

	client, err := app.NewClient(context.Background(), cfg, nil, logger.Discard(), nil)
	require.NoError(t, err)

	creds := client.Credentials()
	assert.Equal(t, srv.URL+"/v1/", creds.Endpoints.BaseURL)
	assert.Equal(t, "https://secure.tmsandbox.co.nz/Oauth/RequestToken", creds.Endpoints.RequestTokenURL)

	cat, err := client.Catalogue.Categories(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Equal(t, "Root", cat.Name)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/v1/Categories.xml", gotPath)
	assert.True(t, strings.HasPrefix(gotAuth, "OAuth "))
	assert.Contains(t, gotAuth, `oauth_signature_method="PLAINTEXT"`)
}

func TestSaveAccessToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cfg := testConfig(t, "")
	st := store.NewFileStore(cfg.TokenStore.Path)

	client, err := app.NewClient(ctx, cfg, st, logger.Discard(), nil)
	require.NoError(t, err)
	require.ErrorIs(t, app.SaveAccessToken(ctx, st, client), trademe.ErrNoAccessToken)

	client.SetAccessToken(&oauth1.Token{Token: "fresh", Secret: "s"})
	require.NoError(t, app.SaveAccessToken(ctx, st, client))

	tok, err := st.LoadToken(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.Token)
}

func TestClientOptions_Count(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "")
	base := len(app.ClientOptions(cfg, logger.Discard(), nil))

	cfg.Retry.Enabled = true
	cfg.RateLimit = config.RateLimitConfig{PerSecond: 1, Burst: 1, QuotaWindow: time.Hour}
	assert.Greater(t, len(app.ClientOptions(cfg, logger.Discard(), nil)), base)
}
