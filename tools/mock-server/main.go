// Package main implements a mock Trade Me API server for local development.
// It plays the OAuth handshake, serves search results and listing details
// from an XML fixture, and keeps an in-memory watchlist, so the CLI and the
// watch daemon can run without sandbox credentials.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/donaldgifford/trademe/pkg/oauth1"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

// mockVerifier is the verification code shown by the authorize page.
const mockVerifier = "123456"

const (
	defaultRows = 50
	maxRows     = 500
)

type mockServer struct {
	logger         *slog.Logger
	consumerSecret string
	fixture        *trademe.SearchResults

	mu            sync.Mutex
	seq           int
	requestTokens map[string]string
	accessTokens  map[string]string
	watchlist     map[int64]struct{}
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/search_results.xml", "path to search results fixture")
	consumerSecret := flag.String("consumer-secret", "", "verify request signatures with this consumer secret (empty skips verification)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "listings", len(fixture.Listings))

	m := newMockServer(logger, fixture, *consumerSecret)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Trade Me server", "addr", addr, "base_url", fmt.Sprintf("http://localhost%s/v1/", addr))

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, m.routes()),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMockServer(logger *slog.Logger, fixture *trademe.SearchResults, consumerSecret string) *mockServer {
	return &mockServer{
		logger:         logger,
		consumerSecret: consumerSecret,
		fixture:        fixture,
		requestTokens:  make(map[string]string),
		accessTokens:   make(map[string]string),
		watchlist:      make(map[int64]struct{}),
	}
}

func (m *mockServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /Oauth/RequestToken", m.requestToken)
	mux.HandleFunc("GET /Oauth/Authorize", m.authorize)
	mux.HandleFunc("POST /Oauth/AccessToken", m.accessToken)
	mux.HandleFunc("GET /v1/Search/General.xml", m.search)
	mux.HandleFunc("GET /v1/Listings/{file}", m.listingDetail)
	mux.HandleFunc("GET /v1/MyTradeMe/Summary.xml", m.private(m.summary))
	mux.HandleFunc("GET /v1/MyTradeMe/WatchList.xml", m.private(m.watchlistGet))
	mux.HandleFunc("GET /v1/MyTradeMe/WatchList/{file}", m.private(m.watchlistGet))
	mux.HandleFunc("POST /v1/MyTradeMe/WatchList.xml", m.private(m.watchlistAdd))
	mux.HandleFunc("DELETE /v1/MyTradeMe/WatchList/{file}", m.private(m.watchlistRemove))
	return mux
}

func loadFixture(path string) (*trademe.SearchResults, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	resp, err := trademe.Unmarshal[trademe.SearchResults](data)
	if err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func (m *mockServer) requestToken(w http.ResponseWriter, r *http.Request) {
	if !m.verify(w, r, "") {
		return
	}

	m.mu.Lock()
	m.seq++
	tok, secret := fmt.Sprintf("mock-req-%d", m.seq), fmt.Sprintf("mock-req-secret-%d", m.seq)
	m.requestTokens[tok] = secret
	m.mu.Unlock()

	writeForm(w, url.Values{
		"oauth_token":              {tok},
		"oauth_token_secret":       {secret},
		"oauth_callback_confirmed": {"true"},
	})
	m.logger.Info("issued request token", "scope", r.URL.Query().Get("scope"))
}

func (m *mockServer) authorize(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("oauth_token")

	m.mu.Lock()
	_, ok := m.requestTokens[tok]
	m.mu.Unlock()

	if !ok {
		http.Error(w, "unknown request token", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Access approved. Your verification code is %s\n", mockVerifier) //nolint:errcheck // best-effort write
}

func (m *mockServer) accessToken(w http.ResponseWriter, r *http.Request) {
	params, err := oauth1.ParseHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeAPIError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	m.mu.Lock()
	reqSecret, ok := m.requestTokens[params["oauth_token"]]
	m.mu.Unlock()
	if !ok {
		writeAPIError(w, r, http.StatusUnauthorized, "unknown request token")
		return
	}
	if !m.verify(w, r, reqSecret) {
		return
	}
	if params["oauth_verifier"] != mockVerifier {
		writeAPIError(w, r, http.StatusUnauthorized, "invalid verifier")
		return
	}

	m.mu.Lock()
	delete(m.requestTokens, params["oauth_token"])
	m.seq++
	tok, secret := fmt.Sprintf("mock-access-%d", m.seq), fmt.Sprintf("mock-access-secret-%d", m.seq)
	m.accessTokens[tok] = secret
	m.mu.Unlock()

	writeForm(w, url.Values{"oauth_token": {tok}, "oauth_token_secret": {secret}})
	m.logger.Info("issued access token")
}

// private wraps handlers that require an access token.
func (m *mockServer) private(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := oauth1.ParseHeader(r.Header.Get("Authorization"))
		if err != nil {
			writeAPIError(w, r, http.StatusUnauthorized, err.Error())
			return
		}

		m.mu.Lock()
		secret, ok := m.accessTokens[params["oauth_token"]]
		m.mu.Unlock()
		if !ok {
			writeAPIError(w, r, http.StatusUnauthorized, "invalid access token")
			return
		}
		if !m.verify(w, r, secret) {
			return
		}
		next(w, r)
	}
}

// verify checks the request signature when a consumer secret is configured.
func (m *mockServer) verify(w http.ResponseWriter, r *http.Request, tokenSecret string) bool {
	if m.consumerSecret == "" {
		return true
	}
	if err := oauth1.Verify(r, m.consumerSecret, tokenSecret); err != nil {
		m.logger.Warn("signature rejected", "path", r.URL.Path, "error", err)
		writeAPIError(w, r, http.StatusUnauthorized, err.Error())
		return false
	}
	return true
}

func (m *mockServer) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	terms := strings.Fields(strings.ToLower(q.Get("search_string")))
	category := q.Get("category")
	buyNow := q.Get("buy") == "BuyNow"

	var matched []trademe.Listing
	for _, l := range m.fixture.Listings {
		if category != "" && !strings.HasPrefix(l.Category, category) {
			continue
		}
		if buyNow && !l.HasBuyNow {
			continue
		}
		if !containsAll(strings.ToLower(l.Title), terms) {
			continue
		}
		matched = append(matched, l)
	}

	page := positiveInt(q.Get("page"), 1)
	rows := min(positiveInt(q.Get("rows"), defaultRows), maxRows)

	total := len(matched)
	start := (page - 1) * rows
	if start >= total {
		matched = nil
	} else {
		matched = matched[start:min(start+rows, total)]
	}

	writeXML(w, r, http.StatusOK, &trademe.SearchResults{
		TotalCount: total,
		Page:       page,
		PageSize:   rows,
		Listings:   matched,
	})
	m.logger.Info("search", "terms", terms, "matched", total, "returned", len(matched), "page", page, "rows", rows)
}

func (m *mockServer) listingDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := xmlID(r.PathValue("file"))
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "invalid listing id")
		return
	}
	l := m.find(id)
	if l == nil {
		writeAPIError(w, r, http.StatusNotFound, fmt.Sprintf("Listing %d not found", id))
		return
	}

	writeXML(w, r, http.StatusOK, &trademe.ListingDetail{
		ListingID:    l.ListingID,
		Title:        l.Title,
		Category:     l.Category,
		CategoryPath: l.CategoryPath,
		StartPrice:   l.StartPrice,
		BuyNowPrice:  l.BuyNowPrice,
		PriceDisplay: l.PriceDisplay,
		StartDate:    l.StartDate,
		EndDate:      l.EndDate,
		BidCount:     l.BidCount,
		HasBuyNow:    l.HasBuyNow,
		IsReserveMet: l.IsReserveMet,
		Region:       l.Region,
		Suburb:       l.Suburb,
		Member:       &trademe.Member{MemberID: 4000001, Nickname: "mock_seller"},
	})
}

func (m *mockServer) summary(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	watching := len(m.watchlist)
	m.mu.Unlock()

	writeXML(w, r, http.StatusOK, &trademe.MemberSummary{
		MemberID:       4000123,
		Nickname:       "mock_buyer",
		Balance:        25,
		FeedbackCount:  3,
		WatchListCount: watching,
	})
}

func (m *mockServer) watchlistGet(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	var items []trademe.Listing
	for _, l := range m.fixture.Listings {
		if _, ok := m.watchlist[l.ListingID]; ok {
			items = append(items, l)
		}
	}
	m.mu.Unlock()

	writeXML(w, r, http.StatusOK, &trademe.Listings{
		TotalCount: len(items),
		Page:       1,
		PageSize:   len(items),
		Items:      items,
	})
}

func (m *mockServer) watchlistAdd(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req, err := trademe.Unmarshal[trademe.SaveToWatchlistRequest](body)
	if err != nil || req.ListingID == 0 {
		writeAPIError(w, r, http.StatusBadRequest, "invalid SaveToWatchlistRequest")
		return
	}

	if m.find(req.ListingID) == nil {
		writeXML(w, r, http.StatusOK, &trademe.WatchlistResponse{
			Description: fmt.Sprintf("Listing %d not found", req.ListingID),
			ListingID:   req.ListingID,
		})
		return
	}

	m.mu.Lock()
	m.watchlist[req.ListingID] = struct{}{}
	m.mu.Unlock()

	writeXML(w, r, http.StatusOK, &trademe.WatchlistResponse{Success: true, ListingID: req.ListingID})
}

func (m *mockServer) watchlistRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := xmlID(r.PathValue("file"))
	if !ok {
		writeAPIError(w, r, http.StatusBadRequest, "invalid listing id")
		return
	}

	m.mu.Lock()
	_, watched := m.watchlist[id]
	delete(m.watchlist, id)
	m.mu.Unlock()

	resp := &trademe.WatchlistResponse{Success: watched, ListingID: id}
	if !watched {
		resp.Description = "Listing is not on your watchlist"
	}
	writeXML(w, r, http.StatusOK, resp)
}

func (m *mockServer) find(id int64) *trademe.Listing {
	for i := range m.fixture.Listings {
		if m.fixture.Listings[i].ListingID == id {
			return &m.fixture.Listings[i]
		}
	}
	return nil
}

func writeXML(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := trademe.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(data) //nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	}
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeXML(w, r, status, &trademe.APIError{Request: r.URL.Path, Description: msg})
}

func writeForm(w http.ResponseWriter, v url.Values) {
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
	w.Write([]byte(v.Encode())) //nolint:errcheck,gosec // best-effort write to HTTP response in mock server
}

// xmlID parses "<id>.xml".
func xmlID(file string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSuffix(file, ".xml"), 10, 64)
	return id, err == nil && id > 0
}

func positiveInt(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

func containsAll(s string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(s, t) {
			return false
		}
	}
	return true
}
