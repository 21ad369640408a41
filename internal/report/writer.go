package report

import (
	"io"

	"github.com/fumisakura/pricewatch/internal/model"
)

// Writer defines the interface for history output.
// Implementations render a batch of check outcomes in various formats.
//
// Design decision: We use an interface to allow different output
// formats and destinations. This enables writing to files, stdout, or
// network connections with the same API.
type Writer interface {
	// Write renders the outcomes to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(outcomes []model.CheckOutcome) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different from
// io.Writer - we write outcome batches, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the outcomes to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(outcomes []model.CheckOutcome) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(outcomes)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// priceText formats an optional price for display.
func priceText(outcome model.CheckOutcome) string {
	if outcome.Price == nil {
		return "-"
	}
	return outcome.Price.String()
}

// statusText summarizes an outcome in one short phrase.
func statusText(outcome model.CheckOutcome) string {
	switch {
	case outcome.Failed():
		return "failed (" + string(outcome.ErrorKind) + ")"
	case outcome.AlertFired:
		return "ALERT"
	default:
		return "ok"
	}
}
