package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fumisakura/pricewatch/internal/config"
	"github.com/fumisakura/pricewatch/internal/history"
	"github.com/fumisakura/pricewatch/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded check outcomes",
		Long: `History reads the outcomes the watch command persisted and prints
them, newest first.

Examples:
  # Show the last 20 outcomes
  pricewatch history --limit 20

  # Show only fired alerts for one product
  pricewatch history --url https://example.com/product/42 --alerts-only

  # Write a Markdown report to a file
  pricewatch history --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("markdown", false, "Output in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().IntP("limit", "n", 0, "Cap the number of outcomes shown (0 = all)")
	cmd.Flags().String("url", "", "Restrict output to one product URL")
	cmd.Flags().Bool("alerts-only", false, "Show only outcomes whose alert fired")
	cmd.Flags().String("history-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return config.ErrConflictingReportFormats
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	filter, err := buildHistoryFilter(cmd)
	if err != nil {
		return err
	}

	historyDir, err := cmd.Flags().GetString("history-dir")
	if err != nil {
		return err
	}
	if historyDir == "" {
		historyDir = config.XDGDataDir()
	}

	opts := history.DefaultOptions()
	opts.CreateIfNotExists = false
	store, err := history.Open(historyDir, opts)
	if err != nil {
		return fmt.Errorf("no history recorded yet (run \"pricewatch watch\" first): %w", err)
	}
	defer store.Close()

	outcomes, err := store.Outcomes(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	output, closeOutput, err := openHistoryOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	defer closeOutput()

	writer := newHistoryWriter(cmd, output, jsonOut, markdownOut)
	if _, err := writer.Write(outcomes); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// buildHistoryFilter creates a history filter from command flags.
func buildHistoryFilter(cmd *cobra.Command) (history.Filter, error) {
	var filter history.Filter
	var err error

	filter.Limit, err = cmd.Flags().GetInt("limit")
	if err != nil {
		return filter, err
	}

	filter.URL, err = cmd.Flags().GetString("url")
	if err != nil {
		return filter, err
	}

	filter.AlertsOnly, err = cmd.Flags().GetBool("alerts-only")
	if err != nil {
		return filter, err
	}

	return filter, nil
}

// openHistoryOutput returns the destination writer, plus a cleanup
// function that is a no-op when writing to stdout.
func openHistoryOutput(cmd *cobra.Command, outputPath string) (io.Writer, func(), error) {
	if outputPath == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// newHistoryWriter selects the report format.
func newHistoryWriter(cmd *cobra.Command, output io.Writer, jsonOut, markdownOut bool) report.Writer {
	switch {
	case jsonOut:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case markdownOut:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(getVerboseFlag(cmd)))
	}
}
