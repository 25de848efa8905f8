package trademe

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// dateLayout is the day-month-year form Trade Me expects in query strings.
const dateLayout = "2-1-2006"

// Query accumulates query-string parameters in insertion order. Empty and
// zero values are skipped so optional filters can be passed through
// unconditionally.
type Query struct {
	pairs []string
}

// Set adds key=value when value is non-empty.
func (q *Query) Set(key, value string) *Query {
	if value == "" {
		return q
	}
	q.pairs = append(q.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
	return q
}

// Int adds key=n when n is positive.
func (q *Query) Int(key string, n int) *Query {
	if n <= 0 {
		return q
	}
	return q.Set(key, strconv.Itoa(n))
}

// Float adds key=f when f is positive.
func (q *Query) Float(key string, f float64) *Query {
	if f <= 0 {
		return q
	}
	return q.Set(key, strconv.FormatFloat(f, 'f', -1, 64))
}

// Bool adds key=true when b is true.
func (q *Query) Bool(key string, b bool) *Query {
	if !b {
		return q
	}
	return q.Set(key, "true")
}

// Date adds key=d-M-yyyy when t is not the zero time.
func (q *Query) Date(key string, t time.Time) *Query {
	if t.IsZero() {
		return q
	}
	return q.Set(key, t.Format(dateLayout))
}

// Encode returns the query string with its leading "?", or "" when no
// parameter was added.
func (q *Query) Encode() string {
	if len(q.pairs) == 0 {
		return ""
	}
	return "?" + strings.Join(q.pairs, "&")
}

// Page selects a page of a paged collection. The zero value requests the
// server defaults.
type Page struct {
	Page int
	Rows int
}

func (p Page) apply(q *Query) *Query {
	return q.Int("page", p.Page).Int("rows", p.Rows)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
