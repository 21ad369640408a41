package monitor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fumisakura/pricewatch/internal/fetch"
	"github.com/fumisakura/pricewatch/internal/model"
)

const inStockPage = `<html><body>
<div id="availability">In Stock.</div>
<span class="a-price"><span class="a-offscreen">$%s</span></span>
</body></html>`

const outOfStockPage = `<html><body>
<div id="availability">Currently unavailable.</div>
<span class="a-price"><span class="a-offscreen">$%s</span></span>
</body></html>`

func pageFetcher(body string) fetch.Fetcher {
	return fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
		return &fetch.Response{
			URL:        url,
			StatusCode: 200,
			Body:       []byte(body),
			FetchedAt:  time.Now(),
		}, nil
	})
}

func testProduct(t *testing.T, target string) model.TrackedProduct {
	t.Helper()
	price, err := decimal.NewFromString(target)
	if err != nil {
		t.Fatalf("bad target price %q: %v", target, err)
	}
	return model.TrackedProduct{
		URL:         "https://shop.example.com/item/1",
		TargetPrice: price,
	}
}

func TestExecutorCheck(t *testing.T) {
	t.Parallel()

	t.Run("alert fires at exactly the target price", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(inStockPage, "29.99")
		exec := NewExecutor(pageFetcher(body))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Failed() {
			t.Fatalf("unexpected failure: %s", outcome.ErrorMessage)
		}
		if !outcome.AlertFired {
			t.Error("expected alert at price == target")
		}
		if outcome.Stock != model.StockInStock {
			t.Errorf("expected in stock, got %s", outcome.Stock)
		}
		if outcome.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", outcome.Attempts)
		}
	})

	t.Run("no alert above the target price", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(inStockPage, "30.00")
		exec := NewExecutor(pageFetcher(body))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.AlertFired {
			t.Error("alert must not fire above target")
		}
	})

	t.Run("no alert when out of stock even at a qualifying price", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(outOfStockPage, "10.00")
		exec := NewExecutor(pageFetcher(body))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.AlertFired {
			t.Error("alert must not fire when out of stock")
		}
		if outcome.Stock != model.StockOutOfStock {
			t.Errorf("expected out of stock, got %s", outcome.Stock)
		}
	})

	t.Run("network failures are retried up to the bound", func(t *testing.T) {
		t.Parallel()

		var calls int
		failing := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			calls++
			return nil, &fetch.NetworkError{URL: url, Err: errors.New("connection refused")}
		})
		exec := NewExecutor(failing, WithRetryDelay(0))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != DefaultMaxAttempts {
			t.Errorf("expected %d fetch calls, got %d", DefaultMaxAttempts, calls)
		}
		if outcome.Attempts != DefaultMaxAttempts {
			t.Errorf("expected %d attempts recorded, got %d", DefaultMaxAttempts, outcome.Attempts)
		}
		if outcome.ErrorKind != model.ErrorKindNetwork {
			t.Errorf("expected network error kind, got %q", outcome.ErrorKind)
		}
		if outcome.AlertFired {
			t.Error("alert must not fire on a failed check")
		}
	})

	t.Run("request construction failures are terminal", func(t *testing.T) {
		t.Parallel()

		var calls int
		broken := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			calls++
			return nil, errors.New("parse url: invalid control character")
		})
		exec := NewExecutor(broken, WithRetryDelay(0))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected a single fetch call, got %d", calls)
		}
		if outcome.ErrorKind != model.ErrorKindRequest {
			t.Errorf("expected request error kind, got %q", outcome.ErrorKind)
		}
		if outcome.ErrorKind.Retryable() {
			t.Error("request failures must not be classified retryable")
		}
	})

	t.Run("recovery on a later attempt", func(t *testing.T) {
		t.Parallel()

		var calls int
		flaky := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			calls++
			if calls < 3 {
				return nil, &fetch.NetworkError{URL: url, Err: errors.New("timeout")}
			}
			return &fetch.Response{
				URL:        url,
				StatusCode: 200,
				Body:       []byte(fmt.Sprintf(inStockPage, "19.99")),
				FetchedAt:  time.Now(),
			}, nil
		})
		exec := NewExecutor(flaky, WithRetryDelay(0))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.Failed() {
			t.Fatalf("expected recovery, got %s", outcome.ErrorMessage)
		}
		if outcome.Attempts != 3 {
			t.Errorf("expected 3 attempts, got %d", outcome.Attempts)
		}
		if !outcome.AlertFired {
			t.Error("expected alert after recovery")
		}
	})

	t.Run("extraction failures are not retried", func(t *testing.T) {
		t.Parallel()

		var calls int
		bare := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			calls++
			return &fetch.Response{
				URL:        url,
				StatusCode: 200,
				Body:       []byte("<html><body><p>nothing here</p></body></html>"),
				FetchedAt:  time.Now(),
			}, nil
		})
		exec := NewExecutor(bare, WithRetryDelay(0))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 1 {
			t.Errorf("expected exactly 1 fetch, got %d", calls)
		}
		if outcome.ErrorKind != model.ErrorKindNoLocator {
			t.Errorf("expected no-locator error kind, got %q", outcome.ErrorKind)
		}
	})

	t.Run("unparsable price text is reported as such", func(t *testing.T) {
		t.Parallel()

		body := `<html><body><span class="a-price"><span class="a-offscreen">Call for price</span></span></body></html>`
		exec := NewExecutor(pageFetcher(body), WithRetryDelay(0))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcome.ErrorKind != model.ErrorKindUnparsable {
			t.Errorf("expected unparsable error kind, got %q", outcome.ErrorKind)
		}
		if outcome.Attempts != 1 {
			t.Errorf("expected 1 attempt, got %d", outcome.Attempts)
		}
	})

	t.Run("stock verdict survives a price extraction failure", func(t *testing.T) {
		t.Parallel()

		body := `<html><body><div id="availability">In Stock.</div></body></html>`
		exec := NewExecutor(pageFetcher(body))

		outcome, err := exec.Check(context.Background(), testProduct(t, "29.99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !outcome.Failed() {
			t.Fatal("expected a price extraction failure")
		}
		if outcome.Stock != model.StockInStock {
			t.Errorf("expected stock classified despite price failure, got %s", outcome.Stock)
		}
		if outcome.AlertFired {
			t.Error("alert requires a price")
		}
	})

	t.Run("cancellation during retry delay returns the context error", func(t *testing.T) {
		t.Parallel()

		failing := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			return nil, &fetch.NetworkError{URL: url, Err: errors.New("timeout")}
		})
		exec := NewExecutor(failing, WithRetryDelay(time.Minute))

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		start := time.Now()
		_, err := exec.Check(ctx, testProduct(t, "29.99"))
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > 5*time.Second {
			t.Error("cancellation did not interrupt the retry delay")
		}
	})
}
