package trademe_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/pkg/oauth1"
	"github.com/donaldgifford/trademe/pkg/trademe"
	"github.com/donaldgifford/trademe/pkg/trademe/mocks"
)

func TestBuildAuthenticated_NoAccessToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, failHandler(t))

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()

			req, err := client.BuildAuthenticated(context.Background(), method, "MyTradeMe/Summary.xml", nil)
			require.ErrorIs(t, err, trademe.ErrNoAccessToken)
			assert.Nil(t, req)
		})
	}
}

func TestAuthenticatedCalls_NoAccessTokenSendsNothing(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, failHandler(t))
	ctx := context.Background()

	_, err := client.Get(ctx, "MyTradeMe/Watchlist.xml", true)
	require.ErrorIs(t, err, trademe.ErrNoAccessToken)

	_, err = client.Post(ctx, "Bidding/Bid.xml", trademe.BidRequest{ListingID: 1, Amount: 2}, false)
	require.ErrorIs(t, err, trademe.ErrNoAccessToken)

	_, err = client.Post(ctx, "MyTradeMe/WatchList/1.xml", nil, true)
	require.ErrorIs(t, err, trademe.ErrNoAccessToken)

	_, err = client.MyTradeMe.Summary(ctx)
	require.ErrorIs(t, err, trademe.ErrNoAccessToken)
}

func TestBuildAuthenticated_UnsupportedMethod(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, failHandler(t), trademe.WithAccessToken(testAccessToken()))

	_, err := client.BuildAuthenticated(context.Background(), http.MethodPut, "Selling.xml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported HTTP method "PUT"`)
}

func TestBuildAuthenticated_SignsWithHMAC(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, failHandler(t), trademe.WithAccessToken(testAccessToken()))

	req, err := client.BuildAuthenticated(context.Background(), http.MethodGet, "MyTradeMe/Summary.xml", nil)
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v1/MyTradeMe/Summary.xml", req.URL.Path)

	params := oauthParams(t, req)
	assert.Equal(t, "HMAC-SHA1", params["oauth_signature_method"])
	assert.Equal(t, testConsumerKey, params["oauth_consumer_key"])
	assert.Equal(t, "access-token", params["oauth_token"])
	assert.Equal(t, "nonce", params["oauth_nonce"])
	assert.Equal(t, "1700000000", params["oauth_timestamp"])
	assert.Equal(t, "1.0", params["oauth_version"])

	require.NoError(t, oauth1.Verify(req, testConsumerSecret, "access-secret"))
}

func TestBuildUnauthenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []trademe.Option
		wantMethod string
		wantToken  string
		wantKey    string
		consSec    string
		tokenSec   string
	}{
		{
			name:       "no access token signs plaintext",
			wantMethod: "PLAINTEXT",
		},
		{
			name:       "access token upgrades to hmac",
			opts:       []trademe.Option{trademe.WithAccessToken(testAccessToken())},
			wantMethod: "HMAC-SHA1",
			wantToken:  "access-token",
			wantKey:    testConsumerKey,
			consSec:    testConsumerSecret,
			tokenSec:   "access-secret",
		},
		{
			name: "upgrade disabled keeps plaintext",
			opts: []trademe.Option{
				trademe.WithAccessToken(testAccessToken()),
				trademe.WithUnauthenticatedUpgrade(false),
			},
			wantMethod: "PLAINTEXT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, failHandler(t), tt.opts...)

			req, err := client.BuildUnauthenticated(context.Background(), "Categories.xml")
			require.NoError(t, err)
			assert.Equal(t, http.MethodGet, req.Method)

			params := oauthParams(t, req)
			assert.Equal(t, tt.wantMethod, params["oauth_signature_method"])
			assert.Equal(t, tt.wantToken, params["oauth_token"])
			assert.Equal(t, tt.wantKey, params["oauth_consumer_key"])
			if tt.wantMethod == "PLAINTEXT" {
				assert.Equal(t, "&", params["oauth_signature"])
			}
			assert.NotContains(t, req.Header.Get("Authorization"), testConsumerSecret)
			require.NoError(t, oauth1.Verify(req, tt.consSec, tt.tokenSec))
		})
	}
}

func TestPost_EncodesBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/Bidding/Bid.xml", r.URL.Path)
		assert.Equal(t, "text/xml; charset=utf-8", r.Header.Get("Content-Type"))
		assert.NoError(t, oauth1.Verify(r, testConsumerSecret, "access-secret"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `<BidRequest xmlns="http://api.trademe.co.nz/v1">`)
		assert.Contains(t, string(body), "<Amount>25</Amount>")

		_, _ = w.Write([]byte(`<BidResponse><Success>true</Success><IsLeading>true</IsLeading></BidResponse>`))
	}, trademe.WithAccessToken(testAccessToken()))

	resp, err := client.Bidding.Bid(context.Background(), trademe.BidRequest{ListingID: 99, Amount: 25})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.True(t, resp.IsLeading)
}

func TestPost_Delete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        any
		wantBody    string
		contentType string
	}{
		{
			name: "nil body sends nothing",
		},
		{
			name:        "body is encoded",
			body:        trademe.SaveToWatchlistRequest{ListingID: 123},
			wantBody:    `<SaveToWatchlistRequest xmlns="http://api.trademe.co.nz/v1"><ListingId>123</ListingId>`,
			contentType: "text/xml; charset=utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/v1/MyTradeMe/WatchList/123.xml", r.URL.Path)
				assert.Equal(t, tt.contentType, r.Header.Get("Content-Type"))
				assert.NoError(t, oauth1.Verify(r, testConsumerSecret, "access-secret"))

				body, err := io.ReadAll(r.Body)
				assert.NoError(t, err)
				if tt.wantBody == "" {
					assert.Empty(t, body)
				} else {
					assert.Contains(t, string(body), tt.wantBody)
				}

				_, _ = w.Write([]byte(`<WatchlistResponse><Success>true</Success></WatchlistResponse>`))
			}, trademe.WithAccessToken(testAccessToken()))

			_, err := client.Post(context.Background(), "MyTradeMe/WatchList/123.xml", tt.body, true)
			require.NoError(t, err)
		})
	}
}

func TestRemoveFromWatchlist_EmptyBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Empty(t, r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Empty(t, body)
		_, _ = w.Write([]byte(`<WatchlistResponse><Success>true</Success></WatchlistResponse>`))
	}, trademe.WithAccessToken(testAccessToken()))

	resp, err := client.MyTradeMe.RemoveFromWatchlist(context.Background(), 123)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestDispatch_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantAPI    string
		errContain string
	}{
		{
			name:       "api error document",
			status:     http.StatusNotFound,
			body:       `<ErrorResult><Request>/v1/Listings/1.xml</Request><Error>Listing not found</Error></ErrorResult>`,
			wantStatus: http.StatusNotFound,
			wantAPI:    "Listing not found",
			errContain: "Trade Me API error (status 404): Listing not found",
		},
		{
			name:       "plain server error",
			status:     http.StatusInternalServerError,
			body:       "upstream exploded",
			wantStatus: http.StatusInternalServerError,
			errContain: "status 500",
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `<ErrorResult><Error>Invalid signature</Error></ErrorResult>`,
			wantStatus: http.StatusUnauthorized,
			wantAPI:    "Invalid signature",
			errContain: "Invalid signature",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Listings.Detail(context.Background(), 1)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContain)

			var te *trademe.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantStatus, te.StatusCode)
			assert.Equal(t, tt.body, string(te.Body))
			if tt.wantAPI != "" {
				require.NotNil(t, te.APIError)
				assert.Equal(t, tt.wantAPI, te.APIError.Description)
			} else {
				assert.Nil(t, te.APIError)
			}
		})
	}
}

func TestDispatch_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	endpoints := testEndpoints(srv)
	srv.Close()

	client, err := trademe.NewClient(testConsumerKey, testConsumerSecret, trademe.WithEndpoints(endpoints))
	require.NoError(t, err)

	_, err = client.Catalogue.Categories(context.Background(), "", 0)
	require.Error(t, err)

	var te *trademe.TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.StatusCode)
	assert.True(t, te.Retryable())
}

func TestDispatch_RedactsQueryFromErrors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.Search.General(context.Background(), trademe.GeneralSearch{SearchString: "secret thing"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.Contains(t, err.Error(), "/v1/Search/General.xml")
}

func TestRetry(t *testing.T) {
	t.Parallel()

	policy := trademe.RetryPolicy{
		MaxTries:        3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsedTime:  time.Second,
	}

	tests := []struct {
		name      string
		failures  int32
		status    int
		wantErr   bool
		wantCalls int32
	}{
		{name: "recovers after transient failures", failures: 2, status: http.StatusServiceUnavailable, wantCalls: 3},
		{name: "retries rate limiting", failures: 1, status: http.StatusTooManyRequests, wantCalls: 2},
		{name: "gives up after max tries", failures: 5, status: http.StatusBadGateway, wantErr: true, wantCalls: 3},
		{name: "client errors are not retried", failures: 5, status: http.StatusBadRequest, wantErr: true, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				n := calls.Add(1)
				if n <= tt.failures {
					w.WriteHeader(tt.status)
					return
				}
				_, _ = w.Write([]byte(categoryXML))
			}, trademe.WithRetry(policy))

			cat, err := client.Catalogue.Categories(context.Background(), "", 0)
			assert.Equal(t, tt.wantCalls, calls.Load())
			if tt.wantErr {
				require.Error(t, err)
				var te *trademe.TransportError
				require.ErrorAs(t, err, &te)
				assert.Equal(t, tt.status, te.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Root", cat.Name)
		})
	}
}

func TestRetry_ZeroFieldsUseDefaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		policy    trademe.RetryPolicy
		wantCalls int32
	}{
		{
			name:      "zero max tries stops at the default",
			policy:    trademe.RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond},
			wantCalls: int32(trademe.DefaultRetryPolicy.MaxTries),
		},
		{
			name: "explicit max tries is kept",
			policy: trademe.RetryPolicy{
				MaxTries:        2,
				InitialInterval: time.Millisecond,
				MaxInterval:     2 * time.Millisecond,
			},
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusServiceUnavailable)
			}, trademe.WithRetry(tt.policy))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := client.Catalogue.Categories(ctx, "", 0)
			require.Error(t, err)
			var te *trademe.TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestCatalogueCategories_DecodesTree(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/Categories.xml", r.URL.Path)
		_, _ = w.Write([]byte(categoryXML))
	})

	root, err := client.Catalogue.Categories(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Root", root.Name)
	require.Len(t, root.Subcategories, 2)

	computers := root.Subcategories[0]
	assert.Equal(t, "Computers", computers.Name)
	assert.Equal(t, "0002-", computers.Number)
	require.Len(t, computers.Subcategories, 1)

	laptops := computers.Subcategories[0]
	assert.Equal(t, "Laptops", laptops.Name)
	assert.Equal(t, "0002-0356-", laptops.Number)
	assert.Equal(t, "/Computers/Laptops", laptops.Path)
	assert.Equal(t, 1200, laptops.Count)

	books := root.Subcategories[1]
	assert.Equal(t, "Books", books.Name)
	assert.Equal(t, "0193-", books.Number)
	assert.True(t, books.HasClassifieds)
	assert.Empty(t, books.Subcategories)
}

func TestBuildUnauthenticated_ConcurrentTokenChanges(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, failHandler(t))
	tok := testAccessToken()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 500 {
			if i%2 == 0 {
				client.SetAccessToken(tok)
			} else {
				client.SetAccessToken(nil)
			}
		}
	}()

	for range 500 {
		req, err := client.BuildUnauthenticated(context.Background(), "Categories.xml")
		require.NoError(t, err)
		params := oauthParams(t, req)
		switch params["oauth_signature_method"] {
		case "PLAINTEXT":
			assert.Empty(t, params["oauth_token"])
		case "HMAC-SHA1":
			assert.Equal(t, "access-token", params["oauth_token"])
		default:
			t.Fatalf("unexpected signature method %q", params["oauth_signature_method"])
		}
	}
	<-done
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockMetrics(t)
	m.EXPECT().ObserveQuota(int64(1), false).Once()
	m.EXPECT().ObserveRequest("categories", http.MethodGet, http.StatusOK, mock.Anything).Once()
	m.EXPECT().ObserveQuota(int64(1), true).Once()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(categoryXML))
	},
		trademe.WithMetrics(m),
		trademe.WithRateLimiter(trademe.NewRateLimiter(100, 10, 1)),
	)

	_, err := client.Catalogue.Categories(context.Background(), "", 0)
	require.NoError(t, err)

	_, err = client.Catalogue.Categories(context.Background(), "", 0)
	require.ErrorIs(t, err, trademe.ErrQuotaExhausted)
	assert.Contains(t, err.Error(), "rate limit:")
}

func TestRetry_NotifiesMetrics(t *testing.T) {
	t.Parallel()

	m := mocks.NewMockMetrics(t)
	m.EXPECT().ObserveRequest("listings", http.MethodGet, mock.Anything, mock.Anything).Times(2)
	m.EXPECT().ObserveRetry("listings").Once()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<ListedItemDetail><ListingId>5</ListingId><Title>Desk</Title></ListedItemDetail>`))
	},
		trademe.WithMetrics(m),
		trademe.WithRetry(trademe.RetryPolicy{MaxTries: 2, InitialInterval: time.Millisecond}),
	)

	detail, err := client.Listings.Detail(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Desk", detail.Title)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := trademe.NewClient("k", "s", trademe.WithEnvironment("staging"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown environment "staging"`)

	_, err = trademe.NewClient("k", "s", trademe.WithBaseURL("not a url"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid base URL")
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	client, err := trademe.NewClient("k", "s")
	require.NoError(t, err)

	creds := client.Credentials()
	assert.Equal(t, "https://api.tmsandbox.co.nz/v1/", creds.Endpoints.BaseURL)
	assert.Equal(t, trademe.DefaultScope, creds.Scope)
	assert.Nil(t, creds.AccessToken)
	assert.Equal(t, trademe.Unauthenticated, client.State())

	for _, svc := range []any{
		client.Catalogue, client.Search, client.Listings, client.Bidding, client.Selling,
		client.Membership, client.Favourites, client.MyTradeMe, client.FixedPriceOffers, client.Photos,
	} {
		assert.NotNil(t, svc)
	}

	prod, err := trademe.NewClient("k", "s", trademe.WithEnvironment(trademe.Production))
	require.NoError(t, err)
	assert.Equal(t, "https://api.trademe.co.nz/v1/", prod.Credentials().Endpoints.BaseURL)
}
