package model

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
)

// Product validation errors.
// These are returned by TrackedProduct.Validate and surface once at
// session start; a malformed product list prevents the session from
// starting rather than failing mid-monitoring.
var (
	// ErrEmptyProductURL is returned when a tracked product has no URL.
	ErrEmptyProductURL = errors.New("tracked product has no URL")

	// ErrInvalidProductURL is returned when a product URL cannot be parsed
	// or does not use an http(s) scheme.
	ErrInvalidProductURL = errors.New("tracked product URL is not a valid http(s) URL")

	// ErrInvalidTargetPrice is returned when the target price is zero or
	// negative. A non-positive target could never fire an alert.
	ErrInvalidTargetPrice = errors.New("target price must be greater than zero")
)

// TrackedProduct is one product to monitor: a listing page URL and the
// price at or below which an alert should fire.
//
// The product list is owned by the caller. The monitoring core receives
// an immutable snapshot at session start and never persists or re-reads
// it; adding a product requires a fresh session.
type TrackedProduct struct {
	// URL is the product listing page.
	URL string `json:"url"`

	// TargetPrice is the alert threshold. An alert fires when the product
	// is confirmed in stock at a price less than or equal to this value.
	TargetPrice decimal.Decimal `json:"target_price"`

	// AutoCheckout marks the product for the post-alert checkout
	// collaborator. The monitoring core itself never acts on this flag.
	AutoCheckout bool `json:"auto_checkout,omitempty"`
}

// Validate checks that the product is well formed.
// It returns a sentinel error (wrapped with the offending value) so
// callers can use errors.Is for programmatic handling.
func (p TrackedProduct) Validate() error {
	if p.URL == "" {
		return ErrEmptyProductURL
	}

	u, err := url.Parse(p.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProductURL, p.URL)
	}

	if p.TargetPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: %s for %s", ErrInvalidTargetPrice, p.TargetPrice, p.URL)
	}

	return nil
}

// Host returns the host portion of the product URL, or "" if the URL is
// malformed. Used for per-site configuration lookup and robots checks.
func (p TrackedProduct) Host() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	return u.Host
}
