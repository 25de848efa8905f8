// Package trademe is a client for the Trade Me v1 REST API. It performs the
// OAuth 1.0a handshake, signs every call, and decodes XML responses into
// typed records grouped by endpoint family.
//
// A typical session:
//
//	client, err := trademe.NewClient(key, secret)
//	authURL, err := client.BeginAuthorization(ctx)
//	// user visits authURL and copies the verifier
//	err = client.CompleteAuthorization(ctx, verifier)
//	summary, err := client.MyTradeMe.Summary(ctx)
package trademe

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// Client is the entry point to the API. All endpoint groups are created
// with the client and share its Connection.
type Client struct {
	*Connection

	Catalogue        *CatalogueService
	Search           *SearchService
	Listings         *ListingService
	Bidding          *BiddingService
	Selling          *SellingService
	Membership       *MembershipService
	Favourites       *FavouriteService
	MyTradeMe        *MyTradeMeService
	FixedPriceOffers *FixedPriceOfferService
	Photos           *PhotoService
}

type service struct {
	conn *Connection
}

// Option configures a Client.
type Option func(*options)

type options struct {
	env         Environment
	endpoints   *Endpoints
	baseURL     string
	scope       string
	callback    string
	accessToken *oauth1.Token
	httpClient  *http.Client
	signer      *oauth1.Signer
	limiter     *RateLimiter
	retry       *RetryPolicy
	metrics     Metrics
	logger      *slog.Logger
	userAgent   string
	upgrade     bool
}

// WithEnvironment selects the sandbox (default) or production endpoints.
func WithEnvironment(env Environment) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithEndpoints overrides all four endpoint URLs, for example to target a
// local fake server.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) {
		o.endpoints = &e
	}
}

// WithBaseURL overrides only the API base URL.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithScope overrides the comma-separated permission scope requested during
// authorization.
func WithScope(scope string) Option {
	return func(o *options) {
		o.scope = scope
	}
}

// WithCallback sets the oauth_callback sent with the request-token call.
// The default is "oob".
func WithCallback(cb string) Option {
	return func(o *options) {
		o.callback = cb
	}
}

// WithAccessToken starts the client in the Authenticated state.
func WithAccessToken(tok *oauth1.Token) Option {
	return func(o *options) {
		o.accessToken = tok
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithSigner overrides the OAuth signer, typically to fix nonces and
// timestamps in tests.
func WithSigner(s *oauth1.Signer) Option {
	return func(o *options) {
		o.signer = s
	}
}

// WithRateLimiter injects a rate limiter. When set, every dispatched request
// goes through Wait first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(o *options) {
		o.limiter = r
	}
}

// WithRetry enables retrying of network failures, 429 and 5xx responses.
// Zero fields of p take their value from DefaultRetryPolicy.
func WithRetry(p RetryPolicy) Option {
	return func(o *options) {
		o.retry = &p
	}
}

// WithMetrics installs an instrumentation sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger used for debug request logs.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithUnauthenticatedUpgrade controls whether public reads are signed with
// the access token once one is held. Enabled by default.
func WithUnauthenticatedUpgrade(enabled bool) Option {
	return func(o *options) {
		o.upgrade = enabled
	}
}

// NewClient creates a client for the given consumer credentials. Public
// endpoints work immediately; member endpoints need an access token from
// the handshake or WithAccessToken.
func NewClient(consumerKey, consumerSecret string, opts ...Option) (*Client, error) {
	o := &options{
		env:       Sandbox,
		scope:     DefaultScope,
		userAgent: defaultUserAgent,
		upgrade:   true,
	}
	for _, opt := range opts {
		opt(o)
	}

	endpoints, err := EndpointsFor(o.env)
	if err != nil {
		return nil, err
	}
	if o.endpoints != nil {
		endpoints = *o.endpoints
	}
	if o.baseURL != "" {
		endpoints.BaseURL = o.baseURL
	}
	if _, err := url.ParseRequestURI(endpoints.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", endpoints.BaseURL, err)
	}

	conn := &Connection{
		creds: Credentials{
			ConsumerKey:    consumerKey,
			ConsumerSecret: consumerSecret,
			Scope:          o.scope,
			Callback:       o.callback,
			Endpoints:      endpoints,
		},
		signer:    o.signer,
		client:    o.httpClient,
		limiter:   o.limiter,
		retry:     o.retry,
		metrics:   o.metrics,
		log:       o.logger,
		userAgent: o.userAgent,
		upgrade:   o.upgrade,
	}
	if conn.signer == nil {
		conn.signer = oauth1.NewSigner()
	}
	if conn.client == nil {
		conn.client = &http.Client{Timeout: defaultTimeout}
	}
	if conn.metrics == nil {
		conn.metrics = noopMetrics{}
	}
	if conn.log == nil {
		conn.log = slog.New(slog.DiscardHandler)
	}
	if o.accessToken != nil {
		conn.SetAccessToken(o.accessToken)
	}

	s := service{conn: conn}
	return &Client{
		Connection:       conn,
		Catalogue:        (*CatalogueService)(&s),
		Search:           (*SearchService)(&s),
		Listings:         (*ListingService)(&s),
		Bidding:          (*BiddingService)(&s),
		Selling:          (*SellingService)(&s),
		Membership:       (*MembershipService)(&s),
		Favourites:       (*FavouriteService)(&s),
		MyTradeMe:        (*MyTradeMeService)(&s),
		FixedPriceOffers: (*FixedPriceOfferService)(&s),
		Photos:           (*PhotoService)(&s),
	}, nil
}
