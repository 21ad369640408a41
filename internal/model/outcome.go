package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus is the availability verdict for a product page.
type StockStatus string

const (
	// StockInStock means a structural locator or the add-to-cart fallback
	// confirmed the product as purchasable.
	StockInStock StockStatus = "in_stock"

	// StockOutOfStock means an explicit out-of-stock phrase was found.
	StockOutOfStock StockStatus = "out_of_stock"

	// StockUnknown means no locator matched and no fallback signal was
	// present. This is a valid terminal outcome, not an error: for
	// alerting it is treated as "not confirmed in stock". It must never
	// be conflated with StockOutOfStock, which requires an explicit
	// negative phrase.
	StockUnknown StockStatus = "unknown"
)

// String returns the status as a human-readable word.
func (s StockStatus) String() string {
	switch s {
	case StockInStock:
		return "in stock"
	case StockOutOfStock:
		return "out of stock"
	default:
		return "unknown"
	}
}

// ConfirmedInStock reports whether the status is strong enough evidence
// of availability to participate in the alert condition.
func (s StockStatus) ConfirmedInStock() bool {
	return s == StockInStock
}

// ErrorKind classifies a failed check.
//
// The taxonomy drives the retry policy: network failures are transient
// and worth retrying within a check; extraction failures are permanent
// for the cycle because re-fetching an unchanged page will not change
// the markup shape.
type ErrorKind string

const (
	// ErrorKindNone marks a successful check.
	ErrorKindNone ErrorKind = ""

	// ErrorKindNetwork covers connection failures, timeouts, and non-2xx
	// responses. Retried up to the attempt bound.
	ErrorKindNetwork ErrorKind = "network"

	// ErrorKindRequest means the request could not be issued at all, such
	// as a malformed URL. Re-sending the same request cannot succeed, so
	// it is not retried.
	ErrorKindRequest ErrorKind = "request_failed"

	// ErrorKindNoLocator means neither a structural locator nor the
	// heuristic fallback yielded a price. Not retried.
	ErrorKindNoLocator ErrorKind = "no_locator_matched"

	// ErrorKindUnparsable means located price text failed numeric
	// normalization. Not retried.
	ErrorKindUnparsable ErrorKind = "unparsable_text"
)

// Retryable reports whether a failure of this kind may succeed on an
// unmodified re-fetch.
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindNetwork
}

// CheckOutcome is the result of one (product, cycle) check.
// It is created once, never mutated, and handed to the configured sinks.
// The monitoring core keeps no reference to it after emission.
type CheckOutcome struct {
	// Product is the tracked product this outcome belongs to.
	Product TrackedProduct `json:"product"`

	// FetchedAt is when the final attempt's fetch completed, or when the
	// check gave up.
	FetchedAt time.Time `json:"fetched_at"`

	// Price is the extracted price, nil when extraction failed.
	Price *decimal.Decimal `json:"price,omitempty"`

	// Stock is the availability verdict. StockUnknown when the page was
	// never successfully fetched.
	Stock StockStatus `json:"stock"`

	// AlertFired is true when the product was confirmed in stock at or
	// below the target price.
	AlertFired bool `json:"alert_fired"`

	// ErrorKind classifies the failure, ErrorKindNone on success.
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	// ErrorMessage is the human-readable failure detail.
	ErrorMessage string `json:"error_message,omitempty"`

	// Attempts is how many fetch attempts were made (at most the
	// configured retry bound).
	Attempts int `json:"attempts"`
}

// Failed reports whether the check ended in a failure.
func (o CheckOutcome) Failed() bool {
	return o.ErrorKind != ErrorKindNone
}
