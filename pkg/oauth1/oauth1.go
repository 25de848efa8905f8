// Package oauth1 signs HTTP requests with OAuth 1.0a (RFC 5849) Authorization
// headers. It supports the HMAC-SHA1 and PLAINTEXT signature methods and the
// three token-carrying request shapes: temporary credentials (callback),
// token exchange (verifier) and protected resource access (access token).
package oauth1

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	dgoauth1 "github.com/dghubble/oauth1"
	"github.com/google/uuid"
)

// SignatureMethod names an oauth_signature_method value.
type SignatureMethod string

// Supported signature methods.
const (
	HMACSHA1  SignatureMethod = "HMAC-SHA1"
	Plaintext SignatureMethod = "PLAINTEXT"
)

const (
	authorizationHeader = "Authorization"
	authorizationPrefix = "OAuth "
	version             = "1.0"

	paramConsumerKey     = "oauth_consumer_key"
	paramNonce           = "oauth_nonce"
	paramSignature       = "oauth_signature"
	paramSignatureMethod = "oauth_signature_method"
	paramTimestamp       = "oauth_timestamp"
	paramToken           = "oauth_token"
	paramTokenSecret     = "oauth_token_secret"
	paramVersion         = "oauth_version"
	paramCallback        = "oauth_callback"
	paramVerifier        = "oauth_verifier"
)

// ErrMissingToken is returned by ParseToken when the response body lacks
// oauth_token or oauth_token_secret.
var ErrMissingToken = errors.New("response missing oauth_token or oauth_token_secret")

// Token is an OAuth token/secret pair. It is used for both request tokens
// (temporary credentials) and access tokens (token credentials).
type Token struct {
	Token  string `yaml:"token"  json:"token"`
	Secret string `yaml:"secret" json:"secret"`
}

// Params carries the credentials used to sign a single request.
type Params struct {
	ConsumerKey    string
	ConsumerSecret string
	Method         SignatureMethod

	// Token is the request or access token. Nil signs with an empty token
	// secret and omits oauth_token.
	Token *Token

	// Callback is sent as oauth_callback when non-empty.
	Callback string

	// Verifier is sent as oauth_verifier when non-empty.
	Verifier string
}

// Signer computes OAuth 1.0a signatures and sets the Authorization header.
// A Signer is safe for concurrent use if its Noncer is.
type Signer struct {
	noncer dgoauth1.Noncer
	now    func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithNoncer overrides the nonce source.
func WithNoncer(n dgoauth1.Noncer) Option {
	return func(s *Signer) {
		s.noncer = n
	}
}

// WithNowFunc overrides the timestamp source for testing.
func WithNowFunc(f func() time.Time) Option {
	return func(s *Signer) {
		s.now = f
	}
}

// NewSigner creates a Signer using random UUID nonces and the wall clock.
func NewSigner(opts ...Option) *Signer {
	s := &Signer{
		noncer: UUIDNoncer{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UUIDNoncer produces nonces from random (v4) UUIDs with the dashes removed.
type UUIDNoncer struct{}

// Nonce implements dgoauth1.Noncer.
func (UUIDNoncer) Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sign computes the signature for req and sets its Authorization header.
// Query parameters take part in the signature; the request body does not.
func (s *Signer) Sign(req *http.Request, p Params) error {
	method := p.Method
	if method == "" {
		method = HMACSHA1
	}

	oauthParams := map[string]string{
		paramConsumerKey:     p.ConsumerKey,
		paramSignatureMethod: string(method),
		paramTimestamp:       strconv.FormatInt(s.now().Unix(), 10),
		paramNonce:           s.noncer.Nonce(),
		paramVersion:         version,
	}
	tokenSecret := ""
	if p.Token != nil {
		if p.Token.Token != "" {
			oauthParams[paramToken] = p.Token.Token
		}
		tokenSecret = p.Token.Secret
	}
	if p.Callback != "" {
		oauthParams[paramCallback] = p.Callback
	}
	if p.Verifier != "" {
		oauthParams[paramVerifier] = p.Verifier
	}

	var signature string
	switch method {
	case HMACSHA1:
		base := SignatureBase(req.Method, req.URL, oauthParams)
		signer := &dgoauth1.HMACSigner{ConsumerSecret: p.ConsumerSecret}
		sig, err := signer.Sign(tokenSecret, base)
		if err != nil {
			return fmt.Errorf("computing %s signature: %w", method, err)
		}
		signature = sig
	case Plaintext:
		signature = SigningKey(p.ConsumerSecret, tokenSecret)
	default:
		return fmt.Errorf("unsupported signature method %q", method)
	}

	oauthParams[paramSignature] = signature
	req.Header.Set(authorizationHeader, HeaderValue(oauthParams))
	return nil
}

// SigningKey returns enc(consumerSecret)&enc(tokenSecret), the HMAC key and
// the PLAINTEXT signature.
func SigningKey(consumerSecret, tokenSecret string) string {
	return dgoauth1.PercentEncode(consumerSecret) + "&" + dgoauth1.PercentEncode(tokenSecret)
}

// SignatureBase builds the RFC 5849 3.4.1 signature base string from the
// request method, URL and the oauth parameters (excluding oauth_signature).
func SignatureBase(method string, u *url.URL, oauthParams map[string]string) string {
	type pair struct{ key, value string }

	pairs := make([]pair, 0, len(oauthParams)+len(u.Query()))
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, pair{dgoauth1.PercentEncode(k), dgoauth1.PercentEncode(v)})
		}
	}
	for k, v := range oauthParams {
		pairs = append(pairs, pair{dgoauth1.PercentEncode(k), dgoauth1.PercentEncode(v)})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	normalized := make([]string, len(pairs))
	for i, p := range pairs {
		normalized[i] = p.key + "=" + p.value
	}

	return strings.Join([]string{
		strings.ToUpper(method),
		dgoauth1.PercentEncode(BaseURI(u)),
		dgoauth1.PercentEncode(strings.Join(normalized, "&")),
	}, "&")
}

// BaseURI returns the base string URI: lower-cased scheme and host, default
// ports dropped, path without query or fragment.
func BaseURI(u *url.URL) string {
	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" {
		if !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
			host += ":" + port
		}
	}
	return scheme + "://" + host + u.EscapedPath()
}

// HeaderValue formats signed oauth parameters as an Authorization header
// value. Keys and values are percent encoded and sorted by key.
func HeaderValue(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for k := range oauthParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf(`%s="%s"`, dgoauth1.PercentEncode(k), dgoauth1.PercentEncode(oauthParams[k]))
	}
	return authorizationPrefix + strings.Join(pairs, ", ")
}

// ParseHeader decodes an OAuth Authorization header value into its
// parameters. It is the inverse of HeaderValue.
func ParseHeader(value string) (map[string]string, error) {
	if !strings.HasPrefix(value, authorizationPrefix) {
		return nil, fmt.Errorf("authorization header missing %q prefix", strings.TrimSpace(authorizationPrefix))
	}

	params := map[string]string{}
	for _, pair := range strings.Split(strings.TrimPrefix(value, authorizationPrefix), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("malformed authorization parameter %q", pair)
		}
		key, err := url.PathUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("decoding parameter name %q: %w", k, err)
		}
		val, err := url.PathUnescape(strings.Trim(v, `"`))
		if err != nil {
			return nil, fmt.Errorf("decoding parameter %q: %w", key, err)
		}
		params[key] = val
	}
	return params, nil
}

// ParseToken reads oauth_token and oauth_token_secret from a form-encoded
// token endpoint response. The full set of values is returned so callers can
// inspect provider-specific fields such as oauth_callback_confirmed.
func ParseToken(body []byte) (*Token, url.Values, error) {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing token response: %w", err)
	}

	tok := &Token{
		Token:  values.Get(paramToken),
		Secret: values.Get(paramTokenSecret),
	}
	if tok.Token == "" || tok.Secret == "" {
		return nil, values, ErrMissingToken
	}
	return tok, values, nil
}

// ErrInvalidSignature is returned by Verify when the recomputed signature
// does not match the one carried by the request.
var ErrInvalidSignature = errors.New("invalid oauth signature")

// Verify recomputes the signature of a request signed by Sign and compares
// it to the oauth_signature in its Authorization header. It is the provider
// side of Sign and is used by fake servers and tests.
func Verify(req *http.Request, consumerSecret, tokenSecret string) error {
	params, err := ParseHeader(req.Header.Get(authorizationHeader))
	if err != nil {
		return err
	}

	got, ok := params[paramSignature]
	if !ok {
		return fmt.Errorf("%w: no %s parameter", ErrInvalidSignature, paramSignature)
	}
	delete(params, paramSignature)
	delete(params, "realm")

	// Server-side requests carry only the path; rebuild the URL the client
	// signed from the Host header.
	u := *req.URL
	if u.Host == "" {
		u.Host = req.Host
		u.Scheme = "http"
		if req.TLS != nil {
			u.Scheme = "https"
		}
	}

	var want string
	switch SignatureMethod(params[paramSignatureMethod]) {
	case HMACSHA1:
		signer := &dgoauth1.HMACSigner{ConsumerSecret: consumerSecret}
		want, err = signer.Sign(tokenSecret, SignatureBase(req.Method, &u, params))
		if err != nil {
			return fmt.Errorf("computing signature: %w", err)
		}
	case Plaintext:
		want = SigningKey(consumerSecret, tokenSecret)
	default:
		return fmt.Errorf("unsupported signature method %q", params[paramSignatureMethod])
	}

	if !hmac.Equal([]byte(got), []byte(want)) {
		return ErrInvalidSignature
	}
	return nil
}
