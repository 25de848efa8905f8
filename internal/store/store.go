// Package store persists OAuth access tokens and the watcher's seen-listing
// sets. Callers depend on the Store interface; the file backend suits a
// single CLI user and the Postgres backend suits the long-running daemon.
package store

import (
	"context"
	"errors"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// ErrNotFound is returned when no token is stored for a consumer key.
var ErrNotFound = errors.New("not found")

// maxSeenPerSearch bounds how many listing IDs are remembered per search.
// Older IDs are dropped first.
const maxSeenPerSearch = 5000

// Store defines all persistence operations.
type Store interface {
	// Tokens
	LoadToken(ctx context.Context, consumerKey string) (*oauth1.Token, error)
	SaveToken(ctx context.Context, consumerKey string, tok *oauth1.Token) error
	DeleteToken(ctx context.Context, consumerKey string) error

	// Seen listings
	SeenListings(ctx context.Context, search string) (map[int64]struct{}, error)
	MarkSeen(ctx context.Context, search string, listingIDs []int64) error

	Ping(ctx context.Context) error
	Close()
}
