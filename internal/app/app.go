// Package app wires configuration into a Trade Me client and its store. Both
// the CLI and the watch daemon build their clients here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/donaldgifford/trademe/internal/config"
	"github.com/donaldgifford/trademe/internal/store"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

// OpenStore opens the configured token store. Postgres stores are migrated
// before use.
func OpenStore(ctx context.Context, cfg *config.TokenStoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "file", "":
		return store.NewFileStore(cfg.Path), nil
	case "postgres":
		pg, err := store.NewPostgresStore(ctx, cfg.Database.DSN(), store.WithPoolSize(cfg.Database.PoolSize))
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("migrating postgres store: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown token store backend %q", cfg.Backend)
	}
}

// ClientOptions translates configuration into client options.
func ClientOptions(cfg *config.Config, log *slog.Logger, m trademe.Metrics) []trademe.Option {
	tm := cfg.TradeMe
	opts := []trademe.Option{
		trademe.WithEnvironment(trademe.Environment(tm.Environment)),
		trademe.WithScope(tm.Scope),
		trademe.WithCallback(tm.Callback),
		trademe.WithHTTPClient(&http.Client{Timeout: tm.Timeout}),
		trademe.WithUnauthenticatedUpgrade(tm.UpgradeEnabled()),
		trademe.WithLogger(log),
	}

	if tm.HasEndpointOverrides() {
		defaults, err := trademe.EndpointsFor(trademe.Environment(tm.Environment))
		if err == nil {
			opts = append(opts, trademe.WithEndpoints(trademe.Endpoints{
				BaseURL:         tm.BaseURL,
				RequestTokenURL: orDefault(tm.RequestTokenURL, defaults.RequestTokenURL),
				AuthorizeURL:    orDefault(tm.AuthorizeURL, defaults.AuthorizeURL),
				AccessTokenURL:  orDefault(tm.AccessTokenURL, defaults.AccessTokenURL),
			}))
		}
	}
	if tm.UserAgent != "" {
		opts = append(opts, trademe.WithUserAgent(tm.UserAgent))
	}

	rl := cfg.RateLimit
	if rl.PerSecond > 0 || rl.Quota > 0 {
		opts = append(opts, trademe.WithRateLimiter(trademe.NewRateLimiter(
			rl.PerSecond, rl.Burst, rl.Quota,
			trademe.WithQuotaWindow(rl.QuotaWindow),
		)))
	}

	if cfg.Retry.Enabled {
		opts = append(opts, trademe.WithRetry(trademe.RetryPolicy{
			MaxTries:        cfg.Retry.MaxTries,
			InitialInterval: cfg.Retry.InitialInterval,
			MaxInterval:     cfg.Retry.MaxInterval,
			MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
		}))
	}

	if m != nil {
		opts = append(opts, trademe.WithMetrics(m))
	}

	return opts
}

// NewClient builds a client and, when the store holds an access token for
// the consumer key, starts it authenticated.
func NewClient(
	ctx context.Context,
	cfg *config.Config,
	st store.Store,
	log *slog.Logger,
	m trademe.Metrics,
	extra ...trademe.Option,
) (*trademe.Client, error) {
	opts := ClientOptions(cfg, log, m)

	if st != nil {
		tok, err := st.LoadToken(ctx, cfg.TradeMe.ConsumerKey)
		switch {
		case err == nil:
			opts = append(opts, trademe.WithAccessToken(tok))
		case errors.Is(err, store.ErrNotFound):
			log.Debug("no stored access token")
		default:
			return nil, fmt.Errorf("loading access token: %w", err)
		}
	}

	opts = append(opts, extra...)
	client, err := trademe.NewClient(cfg.TradeMe.ConsumerKey, cfg.TradeMe.ConsumerSecret, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return client, nil
}

// SaveAccessToken persists the client's access token.
func SaveAccessToken(ctx context.Context, st store.Store, client *trademe.Client) error {
	creds := client.Credentials()
	if creds.AccessToken == nil {
		return trademe.ErrNoAccessToken
	}
	if err := st.SaveToken(ctx, creds.ConsumerKey, creds.AccessToken); err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
