package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"golang.org/x/time/rate"
)

// StealthClient is a Fetcher backed by a TLS-fingerprint HTTP client.
// Some retail sites fingerprint the TLS handshake and serve bot
// interstitials to anything that does not look like a real browser;
// this client presents a current Chrome profile instead of the Go
// standard library's handshake.
type StealthClient struct {
	hc          tls_client.HttpClient
	userAgent   string
	maxBodySize int64
	headerFunc  func(u *url.URL) map[string]string
	limiter     *rate.Limiter
}

// StealthOption configures a StealthClient.
type StealthOption func(*stealthConfig)

type stealthConfig struct {
	timeout     time.Duration
	proxyURL    string
	userAgent   string
	maxBodySize int64
	headerFunc  func(u *url.URL) map[string]string
	delay       time.Duration
}

// WithStealthTimeout sets the per-attempt fetch timeout.
func WithStealthTimeout(timeout time.Duration) StealthOption {
	return func(c *stealthConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithProxy routes requests through the given proxy URL.
func WithProxy(proxyURL string) StealthOption {
	return func(c *stealthConfig) {
		c.proxyURL = proxyURL
	}
}

// WithStealthUserAgent sets a custom User-Agent header.
func WithStealthUserAgent(ua string) StealthOption {
	return func(c *stealthConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithStealthMaxBodySize sets the maximum response body size.
func WithStealthMaxBodySize(size int64) StealthOption {
	return func(c *stealthConfig) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithStealthHeaderFunc installs a per-site header provider.
func WithStealthHeaderFunc(fn func(u *url.URL) map[string]string) StealthOption {
	return func(c *stealthConfig) {
		c.headerFunc = fn
	}
}

// WithStealthRequestDelay enforces a minimum delay between requests.
func WithStealthRequestDelay(delay time.Duration) StealthOption {
	return func(c *stealthConfig) {
		c.delay = delay
	}
}

// NewStealthClient creates a StealthClient with a Chrome TLS profile
// and a cookie jar, so session cookies set by the site persist across
// polling cycles.
func NewStealthClient(opts ...StealthOption) (*StealthClient, error) {
	cfg := &stealthConfig{
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(timeoutSeconds(cfg.timeout)),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	if cfg.proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(cfg.proxyURL))
	}

	hc, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, err
	}

	sc := &StealthClient{
		hc:          hc,
		userAgent:   cfg.userAgent,
		maxBodySize: cfg.maxBodySize,
		headerFunc:  cfg.headerFunc,
	}
	if cfg.delay > 0 {
		sc.limiter = rate.NewLimiter(rate.Every(cfg.delay), 1)
	}
	return sc, nil
}

// Fetch retrieves a single page with the same contract as Client.Fetch.
func (c *StealthClient) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, pageURL, nil)
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
		Header:     http.Header(resp.Header),
		Body:       decodeBody(body, resp.Header.Get("Content-Type")),
		FetchedAt:  time.Now(),
	}, nil
}

// timeoutSeconds converts the timeout to whole seconds for the client
// option, rounding up so a sub-second timeout stays enforced instead of
// truncating to zero and disabling the deadline.
func timeoutSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
