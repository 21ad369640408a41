package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fumisakura/pricewatch/internal/model"
)

// createTestOutcomes builds a history with one alert, one plain check,
// and one failure.
func createTestOutcomes(t *testing.T) []model.CheckOutcome {
	t.Helper()

	target, err := decimal.NewFromString("29.99")
	if err != nil {
		t.Fatal(err)
	}
	low, err := decimal.NewFromString("24.5")
	if err != nil {
		t.Fatal(err)
	}
	high, err := decimal.NewFromString("35")
	if err != nil {
		t.Fatal(err)
	}

	checked := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return []model.CheckOutcome{
		{
			Product:    model.TrackedProduct{URL: "https://shop.example.com/widget", TargetPrice: target},
			FetchedAt:  checked,
			Price:      &low,
			Stock:      model.StockInStock,
			AlertFired: true,
			Attempts:   1,
		},
		{
			Product:   model.TrackedProduct{URL: "https://shop.example.com/gadget", TargetPrice: target},
			FetchedAt: checked.Add(time.Minute),
			Price:     &high,
			Stock:     model.StockOutOfStock,
			Attempts:  1,
		},
		{
			Product:      model.TrackedProduct{URL: "https://shop.example.com/broken", TargetPrice: target},
			FetchedAt:    checked.Add(2 * time.Minute),
			Stock:        model.StockUnknown,
			ErrorKind:    model.ErrorKindNetwork,
			ErrorMessage: "connection refused",
			Attempts:     3,
		},
	}
}

// TestSimpleWriter tests the human-readable history writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header with totals", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		_, err := w.Write(createTestOutcomes(t))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "PRICEWATCH HISTORY") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "Checks:   3") {
			t.Error("expected check count in header")
		}
		if !strings.Contains(output, "Alerts:   1") {
			t.Error("expected alert count in header")
		}
	})

	t.Run("marks fired alerts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!] https://shop.example.com/widget") {
			t.Error("expected alert marker on the alerting product")
		}
		if !strings.Contains(output, "24.5 (target 29.99)") {
			t.Error("expected price and target in output")
		}
	})

	t.Run("verbose includes error detail", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "connection refused") {
			t.Error("expected error message in verbose output")
		}
	})

	t.Run("non-verbose hides error detail", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "connection refused") {
			t.Error("expected error message hidden without verbose")
		}
	})
}

// TestJSONWriter tests the JSON history writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs a parseable array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed []model.CheckOutcome
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(parsed) != 3 {
			t.Errorf("expected 3 outcomes, got %d", len(parsed))
		}
		if !parsed[0].AlertFired {
			t.Error("expected alert flag preserved through JSON")
		}
	})

	t.Run("empty history renders as empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "[]" {
			t.Errorf("expected empty array, got %q", buf.String())
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if parsed.Version != "1.2.3" {
			t.Errorf("expected version in wrapper, got %q", parsed.Version)
		}
		if len(parsed.Outcomes) != 3 {
			t.Errorf("expected 3 outcomes in wrapper, got %d", len(parsed.Outcomes))
		}
	})
}

// TestMarkdownWriter tests the Markdown history writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and alert banner", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Pricewatch History") {
			t.Error("expected H1 header")
		}
		if !strings.Contains(output, "## Checks") {
			t.Error("expected checks section")
		}
		if !strings.Contains(output, "## Failures") {
			t.Error("expected failures section for the failed check")
		}
		if !strings.Contains(output, "price alert") {
			t.Error("expected alert banner mentioning fired alerts")
		}
	})

	t.Run("empty history has no failures section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if strings.Contains(output, "## Failures") {
			t.Error("expected no failures section for empty history")
		}
		if !strings.Contains(output, "No checks recorded.") {
			t.Error("expected empty history notice")
		}
	})
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all destinations", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		w := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))

		if _, err := w.Write(createTestOutcomes(t)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected all writers to receive output")
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		failErr := errors.New("write failed")
		failing := writerFunc(func([]model.CheckOutcome) (int, error) { return 0, failErr })
		var called bool
		after := writerFunc(func([]model.CheckOutcome) (int, error) {
			called = true
			return 0, nil
		})

		w := NewMultiWriter(failing, after)
		if _, err := w.Write(nil); !errors.Is(err, failErr) {
			t.Errorf("expected the writer error, got %v", err)
		}
		if called {
			t.Error("expected later writers skipped after an error")
		}
	})
}

// writerFunc adapts a function to the Writer interface for tests.
type writerFunc func(outcomes []model.CheckOutcome) (int, error)

func (f writerFunc) Write(outcomes []model.CheckOutcome) (int, error) {
	return f(outcomes)
}
