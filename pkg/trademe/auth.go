package trademe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

// AuthState is the position of a Connection in the OAuth handshake.
type AuthState int

// Handshake states.
const (
	Unauthenticated AuthState = iota
	RequestTokenObtained
	Authenticated
)

func (s AuthState) String() string {
	switch s {
	case RequestTokenObtained:
		return "request-token-obtained"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// State reports how far the handshake has progressed. An access token wins
// over a pending request token.
func (c *Connection) State() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.creds.AccessToken != nil:
		return Authenticated
	case c.creds.RequestToken != nil:
		return RequestTokenObtained
	default:
		return Unauthenticated
	}
}

// SetAccessToken installs a previously obtained access token, skipping the
// handshake. A nil token returns the connection to Unauthenticated.
func (c *Connection) SetAccessToken(tok *oauth1.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tok == nil {
		c.creds.AccessToken = nil
		return
	}
	cp := *tok
	c.creds.AccessToken = &cp
	c.creds.RequestToken = nil
}

// BeginAuthorization obtains a request token and returns the URL the user
// must visit to approve access. The configured scope is sent as a query
// parameter of the request-token call.
func (c *Connection) BeginAuthorization(ctx context.Context) (string, error) {
	c.mu.RLock()
	endpoints := c.creds.Endpoints
	target := endpoints.RequestTokenURL
	if c.creds.Scope != "" {
		target += "?scope=" + url.QueryEscape(c.creds.Scope)
	}
	callback := c.creds.Callback
	if callback == "" {
		callback = defaultCallback
	}
	params := oauth1.Params{
		ConsumerKey:    c.creds.ConsumerKey,
		ConsumerSecret: c.creds.ConsumerSecret,
		Method:         oauth1.HMACSHA1,
		Callback:       callback,
	}
	c.mu.RUnlock()

	tok, err := c.exchangeToken(ctx, target, params)
	if err != nil {
		return "", fmt.Errorf("obtaining request token: %w", err)
	}

	c.mu.Lock()
	c.creds.RequestToken = tok
	c.mu.Unlock()

	c.log.DebugContext(ctx, "obtained request token")

	return endpoints.AuthorizeURL + "?oauth_token=" + url.QueryEscape(tok.Token), nil
}

// CompleteAuthorization exchanges the request token and the verifier shown
// to the user for an access token. Surrounding whitespace in verifier is
// ignored.
func (c *Connection) CompleteAuthorization(ctx context.Context, verifier string) error {
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return ErrMissingVerifier
	}

	c.mu.RLock()
	if c.creds.RequestToken == nil {
		c.mu.RUnlock()
		return ErrNoRequestToken
	}
	reqTok := *c.creds.RequestToken
	target := c.creds.Endpoints.AccessTokenURL
	params := oauth1.Params{
		ConsumerKey:    c.creds.ConsumerKey,
		ConsumerSecret: c.creds.ConsumerSecret,
		Method:         oauth1.HMACSHA1,
		Token:          &reqTok,
		Verifier:       verifier,
	}
	c.mu.RUnlock()

	tok, err := c.exchangeToken(ctx, target, params)
	if err != nil {
		return fmt.Errorf("obtaining access token: %w", err)
	}

	c.mu.Lock()
	c.creds.AccessToken = tok
	c.creds.RequestToken = nil
	c.mu.Unlock()

	c.log.DebugContext(ctx, "obtained access token")
	return nil
}

// exchangeToken performs a signed POST against a token endpoint and parses
// the form-encoded token pair from the response.
func (c *Connection) exchangeToken(
	ctx context.Context,
	target string,
	params oauth1.Params,
) (*oauth1.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.signer.Sign(req, params); err != nil {
		return nil, fmt.Errorf("signing token request: %w", err)
	}

	body, err := c.Dispatch(req)
	if err != nil {
		return nil, err
	}

	tok, _, err := oauth1.ParseToken(body)
	if err != nil {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        redactedURL(req),
			StatusCode: http.StatusOK,
			Body:       body,
			Err:        err,
		}
	}
	return tok, nil
}
