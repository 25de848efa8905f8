package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// FileStore keeps everything in a single YAML document readable only by the
// owner. Writes replace the file atomically.
type FileStore struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

type fileDocument struct {
	Tokens map[string]fileToken `yaml:"tokens,omitempty"`
	Seen   map[string][]int64   `yaml:"seen,omitempty"`
}

type fileToken struct {
	Token   string    `yaml:"token"`
	Secret  string    `yaml:"secret"`
	SavedAt time.Time `yaml:"saved_at"`
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileNowFunc overrides the clock used for saved_at stamps.
func WithFileNowFunc(fn func() time.Time) FileOption {
	return func(s *FileStore) {
		s.now = fn
	}
}

// NewFileStore returns a store backed by the YAML file at path. The file and
// its directory are created on first write.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	s := &FileStore{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// LoadToken returns the stored token for consumerKey.
func (s *FileStore) LoadToken(_ context.Context, consumerKey string) (*oauth1.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ft, ok := doc.Tokens[consumerKey]
	if !ok {
		return nil, ErrNotFound
	}
	return &oauth1.Token{Token: ft.Token, Secret: ft.Secret}, nil
}

// SaveToken stores tok under consumerKey, replacing any previous token.
func (s *FileStore) SaveToken(_ context.Context, consumerKey string, tok *oauth1.Token) error {
	if tok == nil {
		return errors.New("saving token: nil token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc.Tokens == nil {
		doc.Tokens = make(map[string]fileToken)
	}
	doc.Tokens[consumerKey] = fileToken{Token: tok.Token, Secret: tok.Secret, SavedAt: s.now().UTC()}
	return s.write(doc)
}

// DeleteToken removes the token stored under consumerKey. Deleting a missing
// token returns ErrNotFound.
func (s *FileStore) DeleteToken(_ context.Context, consumerKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Tokens[consumerKey]; !ok {
		return ErrNotFound
	}
	delete(doc.Tokens, consumerKey)
	return s.write(doc)
}

// SeenListings returns the listing IDs already reported for search.
func (s *FileStore) SeenListings(_ context.Context, search string) (map[int64]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	ids := doc.Seen[search]
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen, nil
}

// MarkSeen appends listingIDs to the seen set of search, keeping the most
// recent maxSeenPerSearch entries.
func (s *FileStore) MarkSeen(_ context.Context, search string, listingIDs []int64) error {
	if len(listingIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if doc.Seen == nil {
		doc.Seen = make(map[string][]int64)
	}

	existing := doc.Seen[search]
	have := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		have[id] = struct{}{}
	}
	for _, id := range listingIDs {
		if _, ok := have[id]; ok {
			continue
		}
		have[id] = struct{}{}
		existing = append(existing, id)
	}
	if over := len(existing) - maxSeenPerSearch; over > 0 {
		existing = existing[over:]
	}
	doc.Seen[search] = existing
	return s.write(doc)
}

// Ping checks that the backing directory is reachable.
func (s *FileStore) Ping(context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking token directory: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (*FileStore) Close() {}

func (s *FileStore) read() (*fileDocument, error) {
	doc := &fileDocument{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc *fileDocument) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding token file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp token file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting token file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing token file: %w", err)
	}
	return nil
}
