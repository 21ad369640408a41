package fetch

import (
	"context"
	"net/http"
	"time"
)

// Response is the result of one successful page fetch.
type Response struct {
	// URL is the requested URL.
	URL string

	// StatusCode is the HTTP status code (always 2xx; anything else is
	// reported as a *NetworkError instead).
	StatusCode int

	// Header contains the response headers.
	Header http.Header

	// Body is the response body, capped at the configured limit and
	// decoded to UTF-8.
	Body []byte

	// FetchedAt is when the body was fully read.
	FetchedAt time.Time
}

// Fetcher retrieves a single page.
//
// Implementations must honor context cancellation and deadlines, and
// must report every transport-level failure (including non-2xx status
// codes) as a *NetworkError so callers can classify it as transient.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
// Useful in tests and for small decorators.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) {
	return f(ctx, url)
}

// Interface compliance checks.
var (
	_ Fetcher = (*Client)(nil)
	_ Fetcher = (*StealthClient)(nil)
	_ Fetcher = (FetcherFunc)(nil)
)
