package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumisakura/pricewatch/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// The format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables error detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with error messages.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the outcomes in human-readable format, one block per
// check with a summary at the top.
func (w *SimpleWriter) Write(outcomes []model.CheckOutcome) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, outcomes)
	for _, outcome := range outcomes {
		w.writeOutcome(&sb, outcome)
	}
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with totals.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, outcomes []model.CheckOutcome) {
	var alerts, failures int
	for _, o := range outcomes {
		if o.AlertFired {
			alerts++
		}
		if o.Failed() {
			failures++
		}
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PRICEWATCH HISTORY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Checks:   %d\n", len(outcomes)))
	sb.WriteString(fmt.Sprintf("Alerts:   %d\n", alerts))
	sb.WriteString(fmt.Sprintf("Failures: %d\n", failures))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

// writeOutcome writes one check as an indented block.
func (w *SimpleWriter) writeOutcome(sb *strings.Builder, outcome model.CheckOutcome) {
	marker := " "
	if outcome.AlertFired {
		marker = "!"
	}
	sb.WriteString(fmt.Sprintf("[%s] %s\n", marker, outcome.Product.URL))
	sb.WriteString(fmt.Sprintf("    Checked:  %s\n", outcome.FetchedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("    Price:    %s (target %s)\n", priceText(outcome), outcome.Product.TargetPrice.String()))
	sb.WriteString(fmt.Sprintf("    Stock:    %s\n", outcome.Stock.String()))
	sb.WriteString(fmt.Sprintf("    Status:   %s\n", statusText(outcome)))
	if w.verbose && outcome.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("    Error:    %s\n", outcome.ErrorMessage))
	}
	if outcome.Attempts > 1 {
		sb.WriteString(fmt.Sprintf("    Attempts: %d\n", outcome.Attempts))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by pricewatch\n")
	sb.WriteString("https://github.com/fumisakura/pricewatch\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
