package history

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fumisakura/pricewatch/internal/model"
)

// Sink persists outcomes from a background goroutine so database
// writes never block the polling loop. Outcomes are dropped with a
// warning when the buffer is full; history is an observability aid,
// not a durability guarantee.
type Sink struct {
	store  *Store
	ch     chan model.CheckOutcome
	logger *slog.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

// NewSink creates a Sink writing to the store. The buffer absorbs
// bursts when a highly concurrent cycle finishes faster than SQLite
// commits.
func NewSink(store *Store, buffer int, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sink{
		store:  store,
		ch:     make(chan model.CheckOutcome, buffer),
		logger: logger,
	}
	s.wg.Add(1)
	go s.writeLoop()
	return s
}

// Record queues an outcome for persistence without blocking.
func (s *Sink) Record(outcome model.CheckOutcome) {
	select {
	case s.ch <- outcome:
	default:
		s.logger.Warn("history buffer full, dropping outcome",
			slog.String("url", outcome.Product.URL))
	}
}

// Close drains queued outcomes and stops the writer. Call after the
// scheduler has stopped recording.
func (s *Sink) Close() {
	s.once.Do(func() {
		close(s.ch)
	})
	s.wg.Wait()
}

func (s *Sink) writeLoop() {
	defer s.wg.Done()
	for outcome := range s.ch {
		if err := s.store.SaveOutcome(context.Background(), outcome); err != nil {
			s.logger.Warn("failed to persist outcome",
				slog.String("url", outcome.Product.URL),
				slog.String("error", err.Error()))
		}
	}
}
