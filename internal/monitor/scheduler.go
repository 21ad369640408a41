package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fumisakura/pricewatch/internal/model"
)

// DefaultCheckInterval is the pause between polling cycles.
const DefaultCheckInterval = 60 * time.Second

// ErrNoProducts is returned when Run is started with an empty product
// list.
var ErrNoProducts = errors.New("monitor: no products to watch")

// Scheduler polls a frozen list of products on a fixed interval.
//
// Each cycle checks every product in list order and records the outcome
// with the configured sink. A failing product never stops the cycle:
// its failure is captured in the outcome and the remaining products are
// still checked.
type Scheduler struct {
	executor    *Executor
	sink        Sink
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithCheckInterval sets the pause between cycles.
func WithCheckInterval(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSink sets the sink receiving every outcome.
func WithSink(sink Sink) SchedulerOption {
	return func(s *Scheduler) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithConcurrency bounds how many products are checked at once within a
// cycle. The default of one preserves strict list order, which keeps
// request patterns predictable for the retailer.
func WithConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// WithSchedulerLogger sets the cycle-level logger.
func WithSchedulerLogger(logger *slog.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScheduler creates a Scheduler driving the given executor.
func NewScheduler(executor *Executor, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		executor:    executor,
		sink:        NewLogSink(nil),
		interval:    DefaultCheckInterval,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run validates the product list and polls until the context is
// cancelled. Validation failures are fatal: a monitoring session over a
// partially valid list would silently skip products the user asked for.
//
// Cancellation is the only way Run returns after startup, and it
// returns the context's error so callers can tell a clean shutdown from
// a configuration failure.
func (s *Scheduler) Run(ctx context.Context, products []model.TrackedProduct) error {
	if len(products) == 0 {
		return ErrNoProducts
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("invalid product %q: %w", p.URL, err)
		}
	}

	s.logger.Info("monitoring started",
		slog.Int("products", len(products)),
		slog.Duration("interval", s.interval))

	for cycle := 1; ; cycle++ {
		if err := s.runCycle(ctx, products); err != nil {
			return err
		}
		s.logger.Debug("cycle completed", slog.Int("cycle", cycle))

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// runCycle checks every product once. The only error it returns is the
// context's, on cancellation mid-cycle.
func (s *Scheduler) runCycle(ctx context.Context, products []model.TrackedProduct) error {
	if s.concurrency <= 1 {
		for _, p := range products {
			outcome, err := s.executor.Check(ctx, p)
			if err != nil {
				return err
			}
			s.sink.Record(outcome)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, p := range products {
		g.Go(func() error {
			outcome, err := s.executor.Check(ctx, p)
			if err != nil {
				return err
			}
			s.sink.Record(outcome)
			return nil
		})
	}
	return g.Wait()
}

// Session is a handle over a running scheduler.
type Session struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Start launches the scheduler in a goroutine and returns a handle for
// stopping it and collecting its terminal error.
func (s *Scheduler) Start(ctx context.Context, products []model.TrackedProduct) *Session {
	ctx, cancel := context.WithCancel(ctx)
	session := &Session{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		session.err = s.Run(ctx, products)
		close(session.done)
	}()
	return session
}

// Stop requests shutdown. It does not wait; call Wait to block until
// the in-flight cycle has finished.
func (s *Session) Stop() {
	s.cancel()
}

// Wait blocks until the scheduler has stopped and returns its terminal
// error. A cancellation-driven shutdown is reported as nil: stopping a
// session is the expected way to end it, not a failure.
func (s *Session) Wait() error {
	<-s.done
	if errors.Is(s.err, context.Canceled) {
		return nil
	}
	return s.err
}

// Done returns a channel closed when the scheduler has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
