package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fumisakura/pricewatch/internal/fetch"
	"github.com/fumisakura/pricewatch/internal/model"
)

// countingSink records outcomes under a mutex so concurrent cycles can
// share it.
type countingSink struct {
	mu       sync.Mutex
	outcomes []model.CheckOutcome
}

func (s *countingSink) Record(outcome model.CheckOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, outcome)
}

func (s *countingSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes)
}

func TestSchedulerRun(t *testing.T) {
	t.Parallel()

	t.Run("empty product list is rejected", func(t *testing.T) {
		t.Parallel()

		sched := NewScheduler(NewExecutor(pageFetcher("<html></html>")))
		err := sched.Run(context.Background(), nil)
		if !errors.Is(err, ErrNoProducts) {
			t.Errorf("expected ErrNoProducts, got %v", err)
		}
	})

	t.Run("invalid product fails before any check", func(t *testing.T) {
		t.Parallel()

		var calls int
		counting := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			calls++
			return nil, &fetch.NetworkError{URL: url, Err: errors.New("unreachable")}
		})
		sched := NewScheduler(NewExecutor(counting, WithRetryDelay(0)))

		products := []model.TrackedProduct{
			testProduct(t, "29.99"),
			{URL: "ftp://bad.example.com/item", TargetPrice: testProduct(t, "10").TargetPrice},
		}
		err := sched.Run(context.Background(), products)
		if !errors.Is(err, model.ErrInvalidProductURL) {
			t.Fatalf("expected ErrInvalidProductURL, got %v", err)
		}
		if calls != 0 {
			t.Errorf("expected no checks before validation failure, got %d", calls)
		}
	})

	t.Run("failing product does not stop the cycle", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(inStockPage, "19.99")
		mixed := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			if url == "https://shop.example.com/broken" {
				return nil, &fetch.NetworkError{URL: url, Err: errors.New("unreachable")}
			}
			return &fetch.Response{URL: url, StatusCode: 200, Body: []byte(body), FetchedAt: time.Now()}, nil
		})

		sink := &countingSink{}
		sched := NewScheduler(
			NewExecutor(mixed, WithRetryDelay(0)),
			WithSink(sink),
			WithCheckInterval(time.Hour),
		)

		broken := testProduct(t, "29.99")
		broken.URL = "https://shop.example.com/broken"
		products := []model.TrackedProduct{broken, testProduct(t, "29.99")}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sched.Run(ctx, products) }()

		waitFor(t, func() bool { return sink.len() == 2 })
		cancel()
		<-done

		sink.mu.Lock()
		defer sink.mu.Unlock()
		if !sink.outcomes[0].Failed() {
			t.Error("expected first outcome to be the failure")
		}
		if sink.outcomes[1].Failed() {
			t.Errorf("expected second product unaffected: %s", sink.outcomes[1].ErrorMessage)
		}
	})

	t.Run("cancellation during the inter-cycle sleep stops cleanly", func(t *testing.T) {
		t.Parallel()

		var calls int
		var mu sync.Mutex
		counting := fetch.FetcherFunc(func(ctx context.Context, url string) (*fetch.Response, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			body := fmt.Sprintf(inStockPage, "19.99")
			return &fetch.Response{URL: url, StatusCode: 200, Body: []byte(body), FetchedAt: time.Now()}, nil
		})

		sink := &countingSink{}
		sched := NewScheduler(
			NewExecutor(counting),
			WithSink(sink),
			WithCheckInterval(time.Hour),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sched.Run(ctx, []model.TrackedProduct{testProduct(t, "29.99")}) }()

		waitFor(t, func() bool { return sink.len() == 1 })
		cancel()

		err := <-done
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		mu.Lock()
		defer mu.Unlock()
		if calls != 1 {
			t.Errorf("expected no checks after cancellation, got %d", calls)
		}
	})

	t.Run("bounded concurrency checks every product", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(inStockPage, "19.99")
		sink := &countingSink{}
		sched := NewScheduler(
			NewExecutor(pageFetcher(body)),
			WithSink(sink),
			WithConcurrency(3),
			WithCheckInterval(time.Hour),
		)

		products := make([]model.TrackedProduct, 5)
		for i := range products {
			p := testProduct(t, "29.99")
			p.URL = fmt.Sprintf("https://shop.example.com/item/%d", i)
			products[i] = p
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- sched.Run(ctx, products) }()

		waitFor(t, func() bool { return sink.len() == len(products) })
		cancel()
		<-done
	})
}

func TestSession(t *testing.T) {
	t.Parallel()

	t.Run("stop and wait return nil on clean shutdown", func(t *testing.T) {
		t.Parallel()

		body := fmt.Sprintf(inStockPage, "19.99")
		sink := &countingSink{}
		sched := NewScheduler(
			NewExecutor(pageFetcher(body)),
			WithSink(sink),
			WithCheckInterval(time.Hour),
		)

		session := sched.Start(context.Background(), []model.TrackedProduct{testProduct(t, "29.99")})
		waitFor(t, func() bool { return sink.len() == 1 })
		session.Stop()

		if err := session.Wait(); err != nil {
			t.Errorf("expected nil after Stop, got %v", err)
		}
		select {
		case <-session.Done():
		default:
			t.Error("expected Done to be closed after Wait")
		}
	})

	t.Run("wait surfaces startup failures", func(t *testing.T) {
		t.Parallel()

		sched := NewScheduler(NewExecutor(pageFetcher("<html></html>")))
		session := sched.Start(context.Background(), nil)
		defer session.Stop()

		if err := session.Wait(); !errors.Is(err, ErrNoProducts) {
			t.Errorf("expected ErrNoProducts, got %v", err)
		}
	})
}

// waitFor polls a condition until it holds or the test deadline nears.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
