package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// Default fetch settings.
const (
	// DefaultTimeout is the per-attempt fetch timeout. A slow retail
	// page beyond this counts as one transient failure; it does not
	// reduce the retry budget further.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize caps response bodies. Product pages are heavy
	// but rarely beyond a few megabytes of markup.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent mimics a current desktop browser. Retail sites
	// serve reduced or blocked pages to obvious non-browser agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// baseHeaders are sent with every request to better mimic a real
// browser navigation.
var baseHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"DNT":                       "1",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// Client is the default Fetcher implementation on net/http.
//
// Design decision: We keep one shared http.Client per monitoring session
// rather than one per request because:
//  1. Connection reuse matters when the same hosts are polled every cycle
//  2. Cookie-free keep-alive is cheap and reduces per-check latency
//  3. A single client gives one place to configure the timeout
type Client struct {
	hc          *http.Client
	userAgent   string
	maxBodySize int64

	// headerFunc supplies per-site extra headers (session cookies and
	// the like) keyed off the request URL. May be nil.
	headerFunc func(u *url.URL) map[string]string

	// limiter spaces out requests across all products as a politeness
	// measure. May be nil (no delay).
	limiter *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-attempt fetch timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.hc.Timeout = timeout
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithHeaderFunc installs a per-site header provider. The returned map
// is merged over the base browser headers for each request.
func WithHeaderFunc(fn func(u *url.URL) map[string]string) ClientOption {
	return func(c *Client) {
		c.headerFunc = fn
	}
}

// WithRequestDelay enforces a minimum delay between requests across all
// products. Zero disables the limiter.
func WithRequestDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		if delay > 0 {
			c.limiter = rate.NewLimiter(rate.Every(delay), 1)
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
// Mainly useful for tests that need a custom transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// NewClient creates a Client with browser-like defaults.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		hc:          &http.Client{Timeout: DefaultTimeout},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves a single page.
// Transport failures and non-2xx responses come back as *NetworkError;
// the body is capped at the configured limit and decoded to UTF-8.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range baseHeaders {
		req.Header.Set(k, v)
	}
	if c.headerFunc != nil {
		for k, v := range c.headerFunc(req.URL) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		// Cancellation is a signal, not a network failure.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{URL: pageURL, Err: err}
	}

	return &Response{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       decodeBody(body, resp.Header.Get("Content-Type")),
		FetchedAt:  time.Now(),
	}, nil
}
