package monitor

import (
	"log/slog"

	"github.com/fumisakura/pricewatch/internal/model"
)

// Sink receives every check outcome the scheduler produces.
// Record must not block: a slow sink would stall the polling loop and
// skew the cycle interval for every product behind it.
type Sink interface {
	Record(outcome model.CheckOutcome)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(outcome model.CheckOutcome)

// Record calls f(outcome).
func (f SinkFunc) Record(outcome model.CheckOutcome) {
	f(outcome)
}

// ChannelSink forwards outcomes to a buffered channel.
// When the channel is full the outcome is dropped rather than blocking
// the scheduler; the consumer is expected to keep up.
type ChannelSink struct {
	ch chan model.CheckOutcome
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return &ChannelSink{ch: make(chan model.CheckOutcome, buffer)}
}

// Record sends the outcome to the channel, dropping it when full.
func (s *ChannelSink) Record(outcome model.CheckOutcome) {
	select {
	case s.ch <- outcome:
	default:
	}
}

// Outcomes returns the receive side of the sink's channel.
func (s *ChannelSink) Outcomes() <-chan model.CheckOutcome {
	return s.ch
}

// Close closes the underlying channel. Call only after the scheduler
// has stopped recording.
func (s *ChannelSink) Close() {
	close(s.ch)
}

// LogSink writes each outcome as a structured log record.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a LogSink writing to the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

// Record logs the outcome at a level matching its severity.
func (s *LogSink) Record(outcome model.CheckOutcome) {
	attrs := []any{
		slog.String("url", outcome.Product.URL),
		slog.String("stock", outcome.Stock.String()),
		slog.Int("attempts", outcome.Attempts),
	}
	if outcome.Price != nil {
		attrs = append(attrs, slog.String("price", outcome.Price.String()))
	}

	switch {
	case outcome.Failed():
		attrs = append(attrs,
			slog.String("error_kind", string(outcome.ErrorKind)),
			slog.String("error", outcome.ErrorMessage))
		s.logger.Warn("check failed", attrs...)
	case outcome.AlertFired:
		attrs = append(attrs, slog.String("target", outcome.Product.TargetPrice.String()))
		s.logger.Info("price alert", attrs...)
	default:
		s.logger.Info("check completed", attrs...)
	}
}

// MultiSink fans one outcome out to several sinks in order.
type MultiSink []Sink

// Record forwards the outcome to every sink.
func (m MultiSink) Record(outcome model.CheckOutcome) {
	for _, s := range m {
		s.Record(outcome)
	}
}

// Interface compliance checks.
var (
	_ Sink = (SinkFunc)(nil)
	_ Sink = (*ChannelSink)(nil)
	_ Sink = (*LogSink)(nil)
	_ Sink = (MultiSink)(nil)
)
