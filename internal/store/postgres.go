package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

const defaultPoolSize = 4

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = int32(n) //nolint:gosec // bounded by config validation
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// LoadToken returns the stored token for consumerKey.
func (s *PostgresStore) LoadToken(ctx context.Context, consumerKey string) (*oauth1.Token, error) {
	var tok oauth1.Token
	err := s.pool.QueryRow(ctx,
		"SELECT token, secret FROM access_tokens WHERE consumer_key = $1",
		consumerKey,
	).Scan(&tok.Token, &tok.Secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading access token: %w", err)
	}
	return &tok, nil
}

// SaveToken inserts or replaces the token stored under consumerKey.
func (s *PostgresStore) SaveToken(ctx context.Context, consumerKey string, tok *oauth1.Token) error {
	if tok == nil {
		return errors.New("saving token: nil token")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO access_tokens (consumer_key, token, secret)
		VALUES (@consumer_key, @token, @secret)
		ON CONFLICT (consumer_key) DO UPDATE
		SET token = EXCLUDED.token, secret = EXCLUDED.secret, saved_at = now()`,
		pgx.NamedArgs{
			"consumer_key": consumerKey,
			"token":        tok.Token,
			"secret":       tok.Secret,
		},
	)
	if err != nil {
		return fmt.Errorf("saving access token: %w", err)
	}
	return nil
}

// DeleteToken removes the token stored under consumerKey.
func (s *PostgresStore) DeleteToken(ctx context.Context, consumerKey string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM access_tokens WHERE consumer_key = $1", consumerKey)
	if err != nil {
		return fmt.Errorf("deleting access token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SeenListings returns the listing IDs already reported for search.
func (s *PostgresStore) SeenListings(ctx context.Context, search string) (map[int64]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT listing_id FROM seen_listings WHERE search = $1",
		search,
	)
	if err != nil {
		return nil, fmt.Errorf("querying seen listings: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scanning seen listings: %w", err)
	}

	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

// MarkSeen records listingIDs for search and prunes all but the most recent
// maxSeenPerSearch entries.
func (s *PostgresStore) MarkSeen(ctx context.Context, search string, listingIDs []int64) error {
	if len(listingIDs) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	batch := &pgx.Batch{}
	for _, id := range listingIDs {
		batch.Queue(
			"INSERT INTO seen_listings (search, listing_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			search, id,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting seen listings: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM seen_listings
		WHERE search = $1 AND listing_id NOT IN (
			SELECT listing_id FROM seen_listings
			WHERE search = $1
			ORDER BY seen_at DESC, listing_id DESC
			LIMIT $2
		)`,
		search, maxSeenPerSearch,
	); err != nil {
		return fmt.Errorf("pruning seen listings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing seen listings: %w", err)
	}
	return nil
}
