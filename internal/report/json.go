package report

import (
	"encoding/json"
	"io"

	"github.com/fumisakura/pricewatch/internal/model"
)

// JSONWriter outputs history in JSON format.
// This format is designed for tool integration and programmatic
// processing.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each
// level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the outcomes as a JSON array.
func (w *JSONWriter) Write(outcomes []model.CheckOutcome) (int, error) {
	// An empty history renders as [] rather than null so consumers can
	// always treat the output as an array.
	if outcomes == nil {
		outcomes = []model.CheckOutcome{}
	}
	return w.writeJSON(outcomes)
}

// writeJSON marshals the given value to JSON and writes it to the
// output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps the outcome list with version metadata.
//
// Design decision: We wrap the list rather than extending CheckOutcome
// because this allows output-specific fields without polluting the core
// data structure.
type JSONReport struct {
	// Version is the pricewatch version that generated this report.
	Version string `json:"version"`

	// Outcomes is the check history.
	Outcomes []model.CheckOutcome `json:"outcomes"`
}

// FullJSONWriter outputs history with a metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the pricewatch version string.
	version string
}

// NewFullJSONWriter creates a writer for history with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write renders the outcomes wrapped with metadata.
func (w *FullJSONWriter) Write(outcomes []model.CheckOutcome) (int, error) {
	if outcomes == nil {
		outcomes = []model.CheckOutcome{}
	}
	return w.writeJSON(JSONReport{
		Version:  w.version,
		Outcomes: outcomes,
	})
}
