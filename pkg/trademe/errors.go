package trademe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoAccessToken is returned when an authenticated call is attempted
	// before CompleteAuthorization (or SetAccessToken) has stored an access
	// token.
	ErrNoAccessToken = errors.New("no access token: complete authorization first")

	// ErrMissingVerifier is returned by CompleteAuthorization for an empty or
	// whitespace-only verifier.
	ErrMissingVerifier = errors.New("oauth verifier is required")

	// ErrNoRequestToken is returned by CompleteAuthorization when
	// BeginAuthorization has not produced a request token.
	ErrNoRequestToken = errors.New("no request token: call BeginAuthorization first")
)

// TransportError reports a failed HTTP exchange: either the request never
// produced a response (Err is set) or the server answered with a non-2xx
// status (StatusCode and Body are set).
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte

	// APIError is the decoded <ErrorResult> document, when the body held one.
	APIError *APIError

	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	case e.APIError != nil && e.APIError.Description != "":
		return fmt.Sprintf("%s %s: Trade Me API error (status %d): %s",
			e.Method, e.URL, e.StatusCode, e.APIError.Description)
	default:
		return fmt.Sprintf("%s %s: Trade Me API error (status %d): %s",
			e.Method, e.URL, e.StatusCode, snippet(e.Body))
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request could succeed: failures
// that produced no response, 429 and 5xx responses.
func (e *TransportError) Retryable() bool {
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// APIError is the error document Trade Me returns alongside 4xx/5xx codes.
type APIError struct {
	XMLName     xml.Name `xml:"ErrorResult"`
	Request     string   `xml:"Request"`
	Description string   `xml:"Error"`
}

func (e *APIError) Error() string {
	return e.Description
}

// MalformedResponseError is returned when a response body is not valid XML
// for the expected record type.
type MalformedResponseError struct {
	Type    string
	Snippet string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %v (body: %q)", e.Type, e.Err, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

const snippetLen = 200

func snippet(b []byte) string {
	if len(b) <= snippetLen {
		return string(b)
	}
	return string(b[:snippetLen]) + "..."
}

// parseAPIError returns the <ErrorResult> carried by body, or nil.
func parseAPIError(body []byte) *APIError {
	var apiErr APIError
	if err := xml.Unmarshal(body, &apiErr); err != nil {
		return nil
	}
	return &apiErr
}
