package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// fakeTradeMe serves just enough of the API for the commands under test.
func fakeTradeMe(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Oauth/RequestToken":
			_, _ = w.Write([]byte("oauth_token=req-token&oauth_token_secret=req-secret&oauth_callback_confirmed=true"))
		case "/Oauth/AccessToken":
			_, _ = w.Write([]byte("oauth_token=access-token&oauth_token_secret=access-secret"))
		case "/v1/MyTradeMe/Summary.xml":
			params, err := oauth1.ParseHeader(r.Header.Get("Authorization"))
			if err != nil || params["oauth_token"] != "access-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`<MemberSummary><MemberId>4000123</MemberId>` +
				`<Nickname>buyer1</Nickname><Balance>12.50</Balance></MemberSummary>`))
		case "/v1/Search/General.xml":
			_, _ = w.Write([]byte(`<SearchResults><TotalCount>7</TotalCount><Page>1</Page><PageSize>2</PageSize>` +
				`<List><Listing><ListingId>42</ListingId><Title>Mechanical keyboard</Title>` +
				`<PriceDisplay>$50.00</PriceDisplay><Region>Wellington</Region></Listing></List></SearchResults>`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes a config pointing at srv and returns its path.
func writeConfig(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	dir := t.TempDir()
	cfg := `trademe:
  consumer_key: test-key
  consumer_secret: test-secret
  base_url: ` + srv.URL + `/v1/
  request_token_url: ` + srv.URL + `/Oauth/RequestToken
  authorize_url: ` + srv.URL + `/Oauth/Authorize
  access_token_url: ` + srv.URL + `/Oauth/AccessToken
retry:
  enabled: false
token_store:
  backend: file
  path: ` + filepath.Join(dir, "token.yaml") + `
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

// run executes the root command. Commands share global flag state, so
// these tests do not run in parallel.
func run(t *testing.T, cfgPath, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))

	base := []string{
		"--config", cfgPath,
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--output", "table",
	}
	rootCmd.SetArgs(append(base, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuthLifecycle(t *testing.T) {
	srv := fakeTradeMe(t)
	cfgPath := writeConfig(t, srv)

	out, err := run(t, cfgPath, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "unauthenticated")

	out, err = run(t, cfgPath, "7421\n", "auth", "login")
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL+"/Oauth/Authorize?")
	assert.Contains(t, out, "oauth_token=req-token")
	assert.Contains(t, out, "Authorized. Access token stored.")

	out, err = run(t, cfgPath, "", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "buyer1 (4000123)")

	out, err = run(t, cfgPath, "", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Access token removed.")

	out, err = run(t, cfgPath, "", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "No access token stored.")
}

func TestAuthLogin_EmptyVerifier(t *testing.T) {
	srv := fakeTradeMe(t)
	cfgPath := writeConfig(t, srv)

	_, err := run(t, cfgPath, "\n", "auth", "login", "--verifier", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verifier")
}

func TestSearch(t *testing.T) {
	srv := fakeTradeMe(t)
	cfgPath := writeConfig(t, srv)

	out, err := run(t, cfgPath, "", "search", "keyboard", "--rows", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Showing 1 of 7 listings")
	assert.Contains(t, out, "Mechanical keyboard")
	assert.Contains(t, out, "$50.00")
	assert.Contains(t, out, "Wellington")
}

func TestSearch_RequiresTermsOrCategory(t *testing.T) {
	srv := fakeTradeMe(t)
	cfgPath := writeConfig(t, srv)

	_, err := run(t, cfgPath, "", "search", "--rows", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search terms or --category required")
}

func TestListing_InvalidID(t *testing.T) {
	srv := fakeTradeMe(t)
	cfgPath := writeConfig(t, srv)

	_, err := run(t, cfgPath, "", "listing", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid listing ID "abc"`)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "unused.yaml", "", "version")
	require.NoError(t, err)
	assert.Equal(t, "trademe dev\n", out)
}
