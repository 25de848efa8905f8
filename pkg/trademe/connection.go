package trademe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/donaldgifford/trademe/pkg/oauth1"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "trademe-go"
	xmlContentType   = "text/xml; charset=utf-8"
)

// Connection owns the credentials and turns API paths into signed HTTP
// exchanges. Token reads and writes are guarded, so one Connection may be
// shared across goroutines once authorization is complete.
type Connection struct {
	mu    sync.RWMutex
	creds Credentials

	signer    *oauth1.Signer
	client    *http.Client
	limiter   *RateLimiter
	retry     *RetryPolicy
	metrics   Metrics
	log       *slog.Logger
	userAgent string

	// upgrade makes BuildUnauthenticated sign with the access token once
	// one is held, so public reads see member-specific fields.
	upgrade bool
}

// Credentials returns a snapshot of the current credentials.
func (c *Connection) Credentials() Credentials {
	c.mu.RLock()
	defer c.mu.RUnlock()

	creds := c.creds
	if c.creds.RequestToken != nil {
		tok := *c.creds.RequestToken
		creds.RequestToken = &tok
	}
	if c.creds.AccessToken != nil {
		tok := *c.creds.AccessToken
		creds.AccessToken = &tok
	}
	return creds
}

// BuildUnauthenticated creates a GET for a public resource, signed PLAINTEXT
// with placeholder (blank) consumer credentials so that no secret is sent in
// the clear. When an access token is held and upgrading is enabled (the
// default), the request is signed HMAC-SHA1 with the token instead.
func (c *Connection) BuildUnauthenticated(ctx context.Context, path string) (*http.Request, error) {
	c.mu.RLock()
	target := c.creds.resolve(path)
	var params oauth1.Params
	if c.upgrade && c.creds.AccessToken != nil {
		params = c.hmacParamsLocked()
	} else {
		params = oauth1.Params{Method: oauth1.Plaintext}
	}
	c.mu.RUnlock()

	return c.newSignedRequest(ctx, http.MethodGet, target, nil, params)
}

// BuildAuthenticated creates an HMAC-SHA1-signed request carrying the access
// token. method must be GET, POST or DELETE. body is an already-encoded XML
// document, or nil.
func (c *Connection) BuildAuthenticated(
	ctx context.Context,
	method, path string,
	body []byte,
) (*http.Request, error) {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, fmt.Errorf("unsupported HTTP method %q", method)
	}

	c.mu.RLock()
	if c.creds.AccessToken == nil {
		c.mu.RUnlock()
		return nil, ErrNoAccessToken
	}
	target := c.creds.resolve(path)
	params := c.hmacParamsLocked()
	c.mu.RUnlock()

	return c.newSignedRequest(ctx, method, target, body, params)
}

// hmacParamsLocked snapshots the consumer credentials and access token.
// c.mu must be held and the access token must be set.
func (c *Connection) hmacParamsLocked() oauth1.Params {
	tok := *c.creds.AccessToken
	return oauth1.Params{
		ConsumerKey:    c.creds.ConsumerKey,
		ConsumerSecret: c.creds.ConsumerSecret,
		Method:         oauth1.HMACSHA1,
		Token:          &tok,
	}
}

func (c *Connection) newSignedRequest(
	ctx context.Context,
	method, target string,
	body []byte,
	params oauth1.Params,
) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", xmlContentType)
	}
	req.Header.Set("User-Agent", c.userAgent)

	if err := c.signer.Sign(req, params); err != nil {
		return nil, fmt.Errorf("signing request: %w", err)
	}
	return req, nil
}

// Dispatch executes a built request once and returns the response body.
// Non-2xx responses and network failures are returned as *TransportError.
func (c *Connection) Dispatch(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	endpoint := endpointLabel(req.URL)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.metrics.ObserveQuota(c.limiter.Count(), errors.Is(err, ErrQuotaExhausted))
			return nil, fmt.Errorf("rate limit: %w", err)
		}
		c.metrics.ObserveQuota(c.limiter.Count(), false)
	}

	target := redactedURL(req)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(endpoint, req.Method, 0, time.Since(start))
		return nil, &TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.ObserveRequest(endpoint, req.Method, resp.StatusCode, elapsed)
	c.log.DebugContext(ctx, "trademe request",
		"method", req.Method,
		"url", target,
		"status", resp.StatusCode,
		"duration", elapsed,
	)

	if err != nil {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       body,
			APIError:   parseAPIError(body),
		}
	}

	return body, nil
}

// Get fetches path and returns the raw response body. authenticated selects
// BuildAuthenticated over BuildUnauthenticated.
func (c *Connection) Get(ctx context.Context, path string, authenticated bool) ([]byte, error) {
	return c.execute(ctx, func() (*http.Request, error) {
		if authenticated {
			return c.BuildAuthenticated(ctx, http.MethodGet, path, nil)
		}
		return c.BuildUnauthenticated(ctx, path)
	})
}

// Post encodes body as XML and sends it as an authenticated POST, or as a
// DELETE when del is true. A nil body sends no content.
func (c *Connection) Post(ctx context.Context, path string, body any, del bool) ([]byte, error) {
	method := http.MethodPost
	if del {
		method = http.MethodDelete
	}
	data, err := Marshal(body)
	if err != nil {
		return nil, err
	}

	return c.execute(ctx, func() (*http.Request, error) {
		return c.BuildAuthenticated(ctx, method, path, data)
	})
}

// execute builds and dispatches a request, rebuilding it for every retry.
func (c *Connection) execute(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	endpoint := ""
	notify := func(err error, next time.Duration) {
		c.metrics.ObserveRetry(endpoint)
		c.log.WarnContext(ctx, "retrying trademe request",
			"endpoint", endpoint,
			"backoff", next,
			"error", err,
		)
	}

	return withRetry(ctx, c.retry, notify, func() ([]byte, error) {
		req, err := build()
		if err != nil {
			return nil, err
		}
		endpoint = endpointLabel(req.URL)
		return c.Dispatch(req)
	})
}

// redactedURL drops the query string, which may carry search terms, from
// URLs that end up in errors and logs.
func redactedURL(req *http.Request) string {
	u := *req.URL
	u.RawQuery = ""
	return u.String()
}

func decode[T any](body []byte) (*T, error) {
	v, err := Unmarshal[T](body)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func getPublic[T any](ctx context.Context, c *Connection, path string) (*T, error) {
	body, err := c.Get(ctx, path, false)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

func getPrivate[T any](ctx context.Context, c *Connection, path string) (*T, error) {
	body, err := c.Get(ctx, path, true)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

func send[T any](ctx context.Context, c *Connection, path string, payload any) (*T, error) {
	body, err := c.Post(ctx, path, payload, false)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}

func remove[T any](ctx context.Context, c *Connection, path string) (*T, error) {
	body, err := c.Post(ctx, path, nil, true)
	if err != nil {
		return nil, err
	}
	return decode[T](body)
}
