package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fumisakura/pricewatch/internal/config"
	"github.com/fumisakura/pricewatch/internal/log"
	"github.com/fumisakura/pricewatch/internal/model"
	"github.com/fumisakura/pricewatch/internal/monitor"
	"github.com/fumisakura/pricewatch/internal/report"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [product URL]",
		Short: "Check a single product once and print the result",
		Long: `Check fetches one product page, extracts the price and stock
status, and prints the outcome. It does not poll, persist history, or
trigger checkout.

Examples:
  # Check a product against a target price
  pricewatch check https://www.amazon.com/dp/B08N5WRWNW --target 299.99

  # Check with the browser-impersonating client
  pricewatch check https://example.com/product/42 --target 19.99 --stealth`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckCmd,
	}

	cmd.Flags().String("target", "",
		"Target price the alert verdict is evaluated against")
	_ = cmd.MarkFlagRequired("target")
	cmd.Flags().IntP("attempts", "a", config.DefaultMaxAttempts,
		"Fetch attempts, including the first")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Pause between fetch attempts")
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-request HTTP timeout")
	cmd.Flags().StringP("user-agent", "u", "",
		"Override the User-Agent header")
	cmd.Flags().BoolP("stealth", "s", false,
		"Use the browser-impersonating TLS client")
	cmd.Flags().String("proxy", "",
		"Proxy URL for outbound requests (stealth mode only)")
	cmd.Flags().StringP("config", "c", "",
		"Watch list file whose site settings (cookies, headers) apply to the request")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCheckConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("environment configuration error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	targetStr, err := cmd.Flags().GetString("target")
	if err != nil {
		return err
	}
	target, err := decimal.NewFromString(targetStr)
	if err != nil {
		return fmt.Errorf("invalid target price %q: %w", targetStr, err)
	}

	product := model.TrackedProduct{
		URL:         args[0],
		TargetPrice: target,
	}
	if err := product.Validate(); err != nil {
		return err
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}

	executor := monitor.NewExecutor(fetcher,
		monitor.WithMaxAttempts(cfg.MaxAttempts),
		monitor.WithRetryDelay(cfg.RetryDelay),
		monitor.WithExecutorLogger(logger),
	)

	outcome, err := executor.Check(cmd.Context(), product)
	if err != nil {
		return err
	}

	writer := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithVerbose(getVerboseFlag(cmd)))
	if _, err := writer.Write([]model.CheckOutcome{outcome}); err != nil {
		return fmt.Errorf("failed to print outcome: %w", err)
	}

	if outcome.Failed() {
		return fmt.Errorf("check failed: %s", outcome.ErrorMessage)
	}
	return nil
}

// buildCheckConfig creates a Config from check command flags. Unlike
// watch, a missing watch list is fine here: site settings are an
// optional nicety for a one-shot check.
func buildCheckConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxAttempts, err = cmd.Flags().GetInt("attempts")
	if err != nil {
		return nil, err
	}

	cfg.RetryDelay, err = cmd.Flags().GetDuration("retry-delay")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Stealth, err = cmd.Flags().GetBool("stealth")
	if err != nil {
		return nil, err
	}

	cfg.Proxy, err = cmd.Flags().GetString("proxy")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if cfg.ConfigFilePath != "" {
		cfg.WatchList, err = config.LoadConfigFile(cfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load watch list %s: %w", cfg.ConfigFilePath, err)
		}
	} else if configPath := config.FindConfigFile(""); configPath != "" {
		if watchList, err := config.LoadConfigFile(configPath); err == nil {
			cfg.WatchList = watchList
		}
	}

	return cfg, nil
}
