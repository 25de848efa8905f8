package trademe

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *TransportError
		want string
	}{
		{
			name: "network failure",
			err:  &TransportError{Method: "GET", URL: "https://x/v1/a.xml", Err: errors.New("connection refused")},
			want: "GET https://x/v1/a.xml: connection refused",
		},
		{
			name: "api error document",
			err: &TransportError{
				Method:     "POST",
				URL:        "https://x/v1/Bidding/Bid.xml",
				StatusCode: http.StatusBadRequest,
				APIError:   &APIError{Description: "Listing has closed"},
			},
			want: "POST https://x/v1/Bidding/Bid.xml: Trade Me API error (status 400): Listing has closed",
		},
		{
			name: "raw body",
			err: &TransportError{
				Method:     "GET",
				URL:        "https://x/v1/a.xml",
				StatusCode: http.StatusBadGateway,
				Body:       []byte("bad gateway"),
			},
			want: "GET https://x/v1/a.xml: Trade Me API error (status 502): bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestTransportError_Retryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  TransportError
		want bool
	}{
		{name: "network failure", err: TransportError{Err: errors.New("reset")}, want: true},
		{name: "too many requests", err: TransportError{StatusCode: http.StatusTooManyRequests}, want: true},
		{name: "server error", err: TransportError{StatusCode: http.StatusServiceUnavailable}, want: true},
		{name: "unauthorized", err: TransportError{StatusCode: http.StatusUnauthorized}, want: false},
		{name: "not found", err: TransportError{StatusCode: http.StatusNotFound}, want: false},
		{name: "unparseable 200", err: TransportError{StatusCode: http.StatusOK, Err: errors.New("bad")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Retryable())
		})
	}
}

func TestParseAPIError(t *testing.T) {
	t.Parallel()

	apiErr := parseAPIError([]byte(`<ErrorResult xmlns="http://api.trademe.co.nz/v1">` +
		`<Request>/v1/Listings/1.xml</Request><Error>Listing not found</Error></ErrorResult>`))
	require.NotNil(t, apiErr)
	assert.Equal(t, "/v1/Listings/1.xml", apiErr.Request)
	assert.Equal(t, "Listing not found", apiErr.Error())

	assert.Nil(t, parseAPIError([]byte("<html>oops</html>")))
	assert.Nil(t, parseAPIError(nil))
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", snippet([]byte("short")))

	long := strings.Repeat("x", snippetLen+50)
	got := snippet([]byte(long))
	assert.Len(t, got, snippetLen+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestEndpointLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{path: "/v1/Search/General.xml", want: "search"},
		{path: "/v1/Listings/123.xml", want: "listings"},
		{path: "/v1/Categories.xml", want: "categories"},
		{path: "/Oauth/RequestToken", want: "oauth"},
		{path: "/", want: "root"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			req, err := http.NewRequest(http.MethodGet, "https://api.trademe.co.nz"+tt.path, http.NoBody)
			require.NoError(t, err)
			assert.Equal(t, tt.want, endpointLabel(req.URL))
		})
	}
}
