package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/fumisakura/pricewatch/internal/extract"
)

// DefaultNavigateTimeout bounds the page load before giving up on the
// cart attempt.
const DefaultNavigateTimeout = 30 * time.Second

// Automator adds products to the cart through a headless Chrome
// instance.
//
// Design decision: We launch a fresh browser per AddToCart call instead
// of keeping one warm. Alerts are rare events, minutes or hours apart;
// a long-lived browser would leak memory and sessions for no benefit.
type Automator struct {
	selector        string
	navigateTimeout time.Duration
	headless        bool
	logger          *slog.Logger
}

// Option configures an Automator.
type Option func(*Automator)

// WithCartSelector overrides the CSS selector for the add-to-cart
// button.
func WithCartSelector(selector string) Option {
	return func(a *Automator) {
		if selector != "" {
			a.selector = selector
		}
	}
}

// WithNavigateTimeout bounds the page load.
func WithNavigateTimeout(d time.Duration) Option {
	return func(a *Automator) {
		if d > 0 {
			a.navigateTimeout = d
		}
	}
}

// WithHeadful shows the browser window. Useful for debugging cart flows
// that behave differently under automation.
func WithHeadful() Option {
	return func(a *Automator) {
		a.headless = false
	}
}

// WithLogger sets the logger for cart attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Automator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New creates an Automator with default settings.
func New(opts ...Option) *Automator {
	a := &Automator{
		selector:        extract.DefaultAddToCartSelector,
		navigateTimeout: DefaultNavigateTimeout,
		headless:        true,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddToCart opens the product page and clicks the add-to-cart button.
// The browser is torn down before returning, success or not.
func (a *Automator) AddToCart(ctx context.Context, productURL string) error {
	l := launcher.New().Headless(a.headless)
	// Anti-detection flag, same as a regular stealth browser session.
	l = l.Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("checkout: launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(wsURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("checkout: connect browser: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			a.logger.Warn("failed to close browser", slog.String("error", err.Error()))
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("checkout: create page: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, a.navigateTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(productURL); err != nil {
		return fmt.Errorf("checkout: navigate to %s: %w", productURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		return fmt.Errorf("checkout: wait for page load: %w", err)
	}

	button, err := page.Context(navCtx).Element(a.selector)
	if err != nil {
		return fmt.Errorf("checkout: add-to-cart button %q not found: %w", a.selector, err)
	}
	if err := button.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("checkout: click add-to-cart: %w", err)
	}

	// Give the cart request time to land before the browser closes.
	if err := page.Context(navCtx).WaitIdle(5 * time.Second); err != nil {
		a.logger.Debug("cart request may not have settled",
			slog.String("url", productURL),
			slog.String("error", err.Error()))
	}

	a.logger.Info("product added to cart", slog.String("url", productURL))
	return nil
}
