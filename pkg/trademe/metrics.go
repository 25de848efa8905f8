package trademe

import (
	"net/url"
	"strings"
	"time"
)

// Metrics receives instrumentation events from a Connection. Endpoint labels
// are the first path segment below the API version ("search", "listings",
// "mytrademe", "oauth"), which keeps label cardinality bounded.
type Metrics interface {
	// ObserveRequest is called once per HTTP attempt. status is 0 when no
	// response was received.
	ObserveRequest(endpoint, method string, status int, elapsed time.Duration)
	// ObserveRetry is called before a failed attempt is repeated.
	ObserveRetry(endpoint string)
	// ObserveQuota reports calls used in the current window and whether the
	// last attempt was refused because the quota ran out.
	ObserveQuota(used int64, exhausted bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRequest(string, string, int, time.Duration) {}
func (noopMetrics) ObserveRetry(string)                               {}
func (noopMetrics) ObserveQuota(int64, bool)                          {}

func endpointLabel(u *url.URL) string {
	path := strings.Trim(u.Path, "/")
	if rest, ok := strings.CutPrefix(path, "v1/"); ok {
		path = rest
	}
	first, _, _ := strings.Cut(path, "/")
	first = strings.TrimSuffix(first, ".xml")
	if first == "" {
		return "root"
	}
	return strings.ToLower(first)
}
