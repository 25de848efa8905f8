// Package watch polls saved general searches and reports listings that have
// not been seen before.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/donaldgifford/trademe/internal/config"
	"github.com/donaldgifford/trademe/internal/metrics"
	"github.com/donaldgifford/trademe/internal/notify"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

// ErrUnknownSearch is returned by Poll for a name that is not configured.
var ErrUnknownSearch = errors.New("unknown search")

// defaultRows is the page size requested per poll. Only the first page,
// newest listings first, is read.
const defaultRows = 50

// Searcher runs a general search. *trademe.SearchService satisfies it.
type Searcher interface {
	General(ctx context.Context, params trademe.GeneralSearch) (*trademe.SearchResults, error)
}

// SeenStore remembers which listings were already reported.
type SeenStore interface {
	SeenListings(ctx context.Context, search string) (map[int64]struct{}, error)
	MarkSeen(ctx context.Context, search string, listingIDs []int64) error
}

// Search is a named general search.
type Search struct {
	Name   string
	Params trademe.GeneralSearch
}

// SearchesFromConfig converts configured searches, sorting newest first.
func SearchesFromConfig(in []config.WatchSearch) []Search {
	out := make([]Search, 0, len(in))
	for _, s := range in {
		out = append(out, Search{
			Name: s.Name,
			Params: trademe.GeneralSearch{
				SearchString: s.SearchString,
				Category:     s.Category,
				Region:       s.Region,
				PriceMin:     s.PriceMin,
				PriceMax:     s.PriceMax,
				BuyNowOnly:   s.BuyNowOnly,
				SortOrder:    trademe.SortExpiryDesc,
				Page:         trademe.Page{Rows: defaultRows},
			},
		})
	}
	return out
}

// Status is the last known state of one search.
type Status struct {
	Name        string    `json:"name"`
	Seeded      bool      `json:"seeded"`
	LastPoll    time.Time `json:"last_poll,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	LastNew     int       `json:"last_new"`
	TotalNew    int       `json:"total_new"`
	ResultCount int       `json:"result_count"`
}

// Poller checks every search for unseen listings.
type Poller struct {
	searcher Searcher
	seen     SeenStore
	notifier notify.Notifier
	env      trademe.Environment
	log      *slog.Logger
	now      func() time.Time

	searches []Search

	mu     sync.Mutex
	status map[string]*Status
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithEnvironment sets the environment used to build listing links.
func WithEnvironment(env trademe.Environment) PollerOption {
	return func(p *Poller) {
		p.env = env
	}
}

// WithNowFunc overrides the clock.
func WithNowFunc(fn func() time.Time) PollerOption {
	return func(p *Poller) {
		p.now = fn
	}
}

// NewPoller creates a Poller over searches.
func NewPoller(
	searcher Searcher,
	seen SeenStore,
	notifier notify.Notifier,
	searches []Search,
	log *slog.Logger,
	opts ...PollerOption,
) *Poller {
	p := &Poller{
		searcher: searcher,
		seen:     seen,
		notifier: notifier,
		env:      trademe.Sandbox,
		log:      log,
		now:      time.Now,
		searches: searches,
		status:   make(map[string]*Status, len(searches)),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, s := range searches {
		p.status[s.Name] = &Status{Name: s.Name}
	}
	return p
}

// PollAll polls every search in turn. A failing search does not stop the
// others; all failures are returned joined.
func (p *Poller) PollAll(ctx context.Context) error {
	start := p.now()
	defer func() {
		metrics.WatchPollDuration.Observe(p.now().Sub(start).Seconds())
	}()

	var errs []error
	for _, s := range p.searches {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := p.poll(ctx, s); err != nil {
			errs = append(errs, fmt.Errorf("polling %s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Poll polls one search by name and returns how many new listings were
// reported.
func (p *Poller) Poll(ctx context.Context, name string) (int, error) {
	for _, s := range p.searches {
		if s.Name == name {
			return p.poll(ctx, s)
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSearch, name)
}

// Status returns the state of every search, sorted by name.
func (p *Poller) Status() []Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Status, 0, len(p.status))
	for _, st := range p.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (p *Poller) poll(ctx context.Context, s Search) (int, error) {
	metrics.WatchPollsTotal.WithLabelValues(s.Name).Inc()

	fresh, total, seeded, err := p.collect(ctx, s)
	if err == nil && len(fresh) > 0 && !seeded {
		err = p.report(ctx, s.Name, fresh)
	}
	if err == nil && len(fresh) > 0 {
		ids := make([]int64, len(fresh))
		for i := range fresh {
			ids[i] = fresh[i].ListingID
		}
		if markErr := p.seen.MarkSeen(ctx, s.Name, ids); markErr != nil {
			err = fmt.Errorf("marking listings seen: %w", markErr)
		}
	}

	reported := len(fresh)
	if seeded {
		reported = 0
	}
	p.record(s.Name, total, reported, err)

	if err != nil {
		metrics.WatchPollErrorsTotal.WithLabelValues(s.Name).Inc()
		return 0, err
	}

	if seeded {
		p.log.Info("search seeded", "search", s.Name, "listings", len(fresh))
		return 0, nil
	}
	if reported > 0 {
		metrics.WatchNewListingsTotal.WithLabelValues(s.Name).Add(float64(reported))
		p.log.Info("new listings", "search", s.Name, "count", reported)
	}
	return reported, nil
}

// collect runs the search and returns listings absent from the seen set.
// seeded is true when this is the first poll of a search with nothing
// recorded yet.
func (p *Poller) collect(ctx context.Context, s Search) ([]trademe.Listing, int, bool, error) {
	seen, err := p.seen.SeenListings(ctx, s.Name)
	if err != nil {
		return nil, 0, false, fmt.Errorf("loading seen listings: %w", err)
	}

	results, err := p.searcher.General(ctx, s.Params)
	if err != nil {
		return nil, 0, false, err
	}

	var fresh []trademe.Listing
	for _, l := range results.Listings {
		if _, ok := seen[l.ListingID]; ok {
			continue
		}
		seen[l.ListingID] = struct{}{}
		fresh = append(fresh, l)
	}

	p.mu.Lock()
	seeded := !p.status[s.Name].Seeded && len(seen) == len(fresh)
	p.mu.Unlock()

	return fresh, results.TotalCount, seeded, nil
}

func (p *Poller) report(ctx context.Context, search string, fresh []trademe.Listing) error {
	payloads := make([]notify.ListingPayload, len(fresh))
	for i := range fresh {
		payloads[i] = notify.NewListingPayload(search, p.env, &fresh[i])
	}

	if len(payloads) == 1 {
		if err := p.notifier.SendListing(ctx, &payloads[0]); err != nil {
			return fmt.Errorf("sending notification: %w", err)
		}
		return nil
	}
	if err := p.notifier.SendBatch(ctx, search, payloads); err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	return nil
}

func (p *Poller) record(name string, total, reported int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := p.status[name]
	st.LastPoll = p.now()
	st.ResultCount = total
	if err != nil {
		st.LastError = err.Error()
		return
	}
	st.Seeded = true
	st.LastError = ""
	st.LastNew = reported
	st.TotalNew += reported
}
