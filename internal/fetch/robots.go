package fetch

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsAgent answers whether a URL may be fetched according to the
// host's robots.txt. The monitor consults it once per product at
// session start and only warns on a disallow: the product list is
// user-supplied and small, so this is a politeness signal rather than
// an enforcement mechanism.
type RobotsAgent struct {
	hc        *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewRobotsAgent creates a RobotsAgent.
// A missing or unreadable robots.txt counts as an allow, the common
// crawler convention.
func NewRobotsAgent(userAgent string) *RobotsAgent {
	return &RobotsAgent{
		hc:        &http.Client{Timeout: DefaultTimeout},
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the given URL may be fetched by this agent.
func (a *RobotsAgent) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	data := a.robotsFor(ctx, u)
	if data == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, a.userAgent)
}

// robotsFor fetches and caches the robots.txt for a host.
func (a *RobotsAgent) robotsFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	a.mu.Lock()
	if data, ok := a.cache[u.Host]; ok {
		a.mu.Unlock()
		return data
	}
	a.mu.Unlock()

	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.hc.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}

	a.mu.Lock()
	a.cache[u.Host] = data
	a.mu.Unlock()
	return data
}
