package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fumisakura/pricewatch/internal/extract"
	"github.com/fumisakura/pricewatch/internal/fetch"
	"github.com/fumisakura/pricewatch/internal/model"
)

const (
	// DefaultMaxAttempts is the total fetch attempts per check,
	// including the first.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the pause between fetch attempts.
	DefaultRetryDelay = 5 * time.Second
)

// Executor runs a single product check end to end.
//
// Design decision: only network failures are retried. A parse or
// extraction failure on a successfully fetched page is deterministic,
// so repeating the fetch wastes attempts and hammers the retailer for
// an answer that cannot change within the cycle.
type Executor struct {
	fetcher    fetch.Fetcher
	prices     *extract.PriceExtractor
	stock      *extract.StockClassifier
	maxAttempt int
	retryDelay time.Duration
	logger     *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithMaxAttempts bounds the fetch attempts per check. Values below one
// are ignored.
func WithMaxAttempts(n int) ExecutorOption {
	return func(e *Executor) {
		if n >= 1 {
			e.maxAttempt = n
		}
	}
}

// WithRetryDelay sets the pause between fetch attempts.
func WithRetryDelay(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d >= 0 {
			e.retryDelay = d
		}
	}
}

// WithPriceExtractor replaces the default price extractor.
func WithPriceExtractor(p *extract.PriceExtractor) ExecutorOption {
	return func(e *Executor) {
		if p != nil {
			e.prices = p
		}
	}
}

// WithStockClassifier replaces the default stock classifier.
func WithStockClassifier(c *extract.StockClassifier) ExecutorOption {
	return func(e *Executor) {
		if c != nil {
			e.stock = c
		}
	}
}

// WithExecutorLogger sets the logger used for per-attempt diagnostics.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor using the given fetcher.
func NewExecutor(fetcher fetch.Fetcher, opts ...ExecutorOption) *Executor {
	e := &Executor{
		fetcher:    fetcher,
		prices:     extract.NewPriceExtractor(),
		stock:      extract.NewStockClassifier(),
		maxAttempt: DefaultMaxAttempts,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check runs one full check for the product.
//
// The returned error is non-nil only when the context was cancelled
// mid-check; every product-level failure is reported inside the outcome
// instead so the scheduler can keep the remaining products alive.
func (e *Executor) Check(ctx context.Context, product model.TrackedProduct) (model.CheckOutcome, error) {
	outcome := model.CheckOutcome{
		Product: product,
		Stock:   model.StockUnknown,
	}

	var page *model.PageDocument
	for attempt := 1; attempt <= e.maxAttempt; attempt++ {
		outcome.Attempts = attempt

		resp, err := e.fetcher.Fetch(ctx, product.URL)
		if err != nil {
			if ctx.Err() != nil {
				return outcome, ctx.Err()
			}
			if !fetch.IsNetworkError(err) {
				outcome.FetchedAt = time.Now()
				outcome.ErrorKind = model.ErrorKindRequest
				outcome.ErrorMessage = err.Error()
				return outcome, nil
			}
			e.logger.Debug("fetch attempt failed",
				slog.String("url", product.URL),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))

			if attempt == e.maxAttempt {
				outcome.FetchedAt = time.Now()
				outcome.ErrorKind = model.ErrorKindNetwork
				outcome.ErrorMessage = err.Error()
				return outcome, nil
			}
			if err := e.sleep(ctx); err != nil {
				return outcome, err
			}
			continue
		}

		outcome.FetchedAt = resp.FetchedAt
		page, err = model.ParsePage(resp.URL, resp.StatusCode, resp.FetchedAt, resp.Body)
		if err != nil {
			outcome.ErrorKind = model.ErrorKindUnparsable
			outcome.ErrorMessage = err.Error()
			return outcome, nil
		}
		break
	}

	// Stock is classified even when price extraction fails: an
	// availability verdict is useful on its own and the classifier
	// cannot error.
	outcome.Stock = e.stock.Classify(page)

	price, err := e.prices.Extract(page)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnparsableText):
			outcome.ErrorKind = model.ErrorKindUnparsable
		default:
			outcome.ErrorKind = model.ErrorKindNoLocator
		}
		outcome.ErrorMessage = err.Error()
		return outcome, nil
	}
	outcome.Price = &price

	outcome.AlertFired = evaluateAlert(price, product.TargetPrice, outcome.Stock)
	return outcome, nil
}

// sleep pauses for the retry delay, returning early when the context is
// cancelled.
func (e *Executor) sleep(ctx context.Context) error {
	if e.retryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// evaluateAlert applies the alert condition: confirmed in stock and
// priced at or below the target. StockUnknown never fires, even at a
// qualifying price.
func evaluateAlert(price, target decimal.Decimal, stock model.StockStatus) bool {
	return stock.ConfirmedInStock() && price.LessThanOrEqual(target)
}
