package trademe_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/pkg/oauth1"
	"github.com/donaldgifford/trademe/pkg/trademe"
)

const (
	testConsumerKey    = "test-key"
	testConsumerSecret = "test-secret"
)

func testAccessToken() *oauth1.Token {
	return &oauth1.Token{Token: "access-token", Secret: "access-secret"}
}

type fixedNonce string

func (n fixedNonce) Nonce() string { return string(n) }

// testEndpoints points every endpoint at srv.
func testEndpoints(srv *httptest.Server) trademe.Endpoints {
	return trademe.Endpoints{
		BaseURL:         srv.URL + "/v1/",
		RequestTokenURL: srv.URL + "/Oauth/RequestToken",
		AuthorizeURL:    srv.URL + "/Oauth/Authorize",
		AccessTokenURL:  srv.URL + "/Oauth/AccessToken",
	}
}

// newTestClient starts a server running handler and returns a client
// configured against it with deterministic nonces and timestamps.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...trademe.Option) *trademe.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	signer := oauth1.NewSigner(
		oauth1.WithNoncer(fixedNonce("nonce")),
		oauth1.WithNowFunc(func() time.Time { return time.Unix(1700000000, 0) }),
	)

	base := []trademe.Option{
		trademe.WithEndpoints(testEndpoints(srv)),
		trademe.WithSigner(signer),
	}
	client, err := trademe.NewClient(testConsumerKey, testConsumerSecret, append(base, opts...)...)
	require.NoError(t, err)
	return client
}

// oauthParams decodes the Authorization header of r.
func oauthParams(t *testing.T, r *http.Request) map[string]string {
	t.Helper()

	params, err := oauth1.ParseHeader(r.Header.Get("Authorization"))
	require.NoError(t, err)
	return params
}

// failHandler fails the test if any request reaches the server.
func failHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL)
	}
}
