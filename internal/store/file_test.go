package store_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/internal/store"
	"github.com/donaldgifford/trademe/pkg/oauth1"
)

var _ store.Store = (*store.FileStore)(nil)

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "token.yaml")
	return store.NewFileStore(path, store.WithFileNowFunc(func() time.Time {
		return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	}))
}

func TestFileStore_TokenLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)

	_, err := s.LoadToken(ctx, "key")
	require.ErrorIs(t, err, store.ErrNotFound)

	tok := &oauth1.Token{Token: "access-token", Secret: "access-secret"}
	require.NoError(t, s.SaveToken(ctx, "key", tok))

	got, err := s.LoadToken(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	_, err = s.LoadToken(ctx, "other-key")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.SaveToken(ctx, "key", &oauth1.Token{Token: "rotated", Secret: "s2"}))
	got, err = s.LoadToken(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, "rotated", got.Token)

	require.NoError(t, s.DeleteToken(ctx, "key"))
	_, err = s.LoadToken(ctx, "key")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.DeleteToken(ctx, "key"), store.ErrNotFound)
}

func TestFileStore_FileMode(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	require.NoError(t, s.SaveToken(context.Background(), "key", &oauth1.Token{Token: "t", Secret: "s"}))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "saved_at: 2026-03-01T09:30:00Z")
}

func TestFileStore_SaveNilToken(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)
	require.Error(t, s.SaveToken(context.Background(), "key", nil))
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "token.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tokens: [not, a, map"), 0o600))

	s := store.NewFileStore(path)
	_, err := s.LoadToken(context.Background(), "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing token file")
}

func TestFileStore_SeenListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)

	seen, err := s.SeenListings(ctx, "nanos")
	require.NoError(t, err)
	assert.Empty(t, seen)

	require.NoError(t, s.MarkSeen(ctx, "nanos", []int64{1, 2, 3}))
	require.NoError(t, s.MarkSeen(ctx, "nanos", []int64{3, 4}))
	require.NoError(t, s.MarkSeen(ctx, "classic", []int64{9}))
	require.NoError(t, s.MarkSeen(ctx, "classic", nil))

	seen, err = s.SeenListings(ctx, "nanos")
	require.NoError(t, err)
	assert.Equal(t, map[int64]struct{}{1: {}, 2: {}, 3: {}, 4: {}}, seen)

	seen, err = s.SeenListings(ctx, "classic")
	require.NoError(t, err)
	assert.Len(t, seen, 1)
}

func TestFileStore_SeenListingsBounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)

	ids := make([]int64, 5003)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	require.NoError(t, s.MarkSeen(ctx, "bulk", ids))

	seen, err := s.SeenListings(ctx, "bulk")
	require.NoError(t, err)
	assert.Len(t, seen, 5000)
	assert.NotContains(t, seen, int64(1))
	assert.Contains(t, seen, int64(5003))
}

func TestFileStore_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newFileStore(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.MarkSeen(ctx, "race", []int64{int64(i)}))
		}()
	}
	wg.Wait()

	seen, err := s.SeenListings(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, seen, 8)
}

func TestFileStore_Ping(t *testing.T) {
	t.Parallel()

	require.NoError(t, newFileStore(t).Ping(context.Background()))
}
