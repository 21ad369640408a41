package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/fumisakura/pricewatch/internal/model"
)

// MarkdownWriter outputs history in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the outcomes in Markdown format.
func (w *MarkdownWriter) Write(outcomes []model.CheckOutcome) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, outcomes)
	w.writeAlertBanner(md, outcomes)
	w.writeChecksTable(md, outcomes)
	w.writeFailures(md, outcomes)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with totals.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, outcomes []model.CheckOutcome) {
	var alerts, failures int
	for _, o := range outcomes {
		if o.AlertFired {
			alerts++
		}
		if o.Failed() {
			failures++
		}
	}

	md.H1("Pricewatch History")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Checks", strconv.Itoa(len(outcomes))},
			{"Alerts", strconv.Itoa(alerts)},
			{"Failures", strconv.Itoa(failures)},
		},
	})
	md.PlainText("")
}

// writeAlertBanner writes a GitHub-flavored alert reflecting the
// history.
func (w *MarkdownWriter) writeAlertBanner(md *markdown.Markdown, outcomes []model.CheckOutcome) {
	var alerts, failures int
	for _, o := range outcomes {
		if o.AlertFired {
			alerts++
		}
		if o.Failed() {
			failures++
		}
	}

	switch {
	case alerts > 0:
		md.Importantf("%d price alert(s) fired: products reached their target price while in stock.", alerts)
	case failures == len(outcomes) && len(outcomes) > 0:
		md.Warningf("Every check in this history failed. Check network connectivity and page locators.")
	case failures > 0:
		md.Note(strconv.Itoa(failures) + " check(s) failed. See the failures section for details.")
	default:
		md.Tip("All checks completed without alerts.")
	}
	md.PlainText("")
}

// writeChecksTable writes one row per check.
func (w *MarkdownWriter) writeChecksTable(md *markdown.Markdown, outcomes []model.CheckOutcome) {
	md.H2("Checks")
	md.PlainText("")

	if len(outcomes) == 0 {
		md.PlainText("No checks recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(outcomes))
	for i, o := range outcomes {
		rows[i] = []string{
			o.FetchedAt.Format("2006-01-02 15:04"),
			"`" + truncateString(o.Product.URL, 50) + "`",
			priceText(o),
			o.Product.TargetPrice.String(),
			o.Stock.String(),
			statusText(o),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Checked", "Product", "Price", "Target", "Stock", "Status"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes error details for failed checks.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, outcomes []model.CheckOutcome) {
	var failed []model.CheckOutcome
	for _, o := range outcomes {
		if o.Failed() {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")

	rows := make([][]string, len(failed))
	for i, o := range failed {
		rows[i] = []string{
			"`" + truncateString(o.Product.URL, 50) + "`",
			string(o.ErrorKind),
			truncateString(o.ErrorMessage, 60),
			strconv.Itoa(o.Attempts),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Product", "Kind", "Error", "Attempts"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pricewatch](https://github.com/fumisakura/pricewatch)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
