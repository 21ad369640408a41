package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fumisakura/pricewatch/internal/checkout"
	"github.com/fumisakura/pricewatch/internal/config"
	"github.com/fumisakura/pricewatch/internal/fetch"
	"github.com/fumisakura/pricewatch/internal/history"
	"github.com/fumisakura/pricewatch/internal/log"
	"github.com/fumisakura/pricewatch/internal/model"
	"github.com/fumisakura/pricewatch/internal/monitor"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor the watch list until interrupted",
		Long: `Watch polls every product in the watch list on a fixed interval.

Each cycle fetches the product page, extracts the price and stock
status, and fires an alert when a product is in stock at or below its
target price. Outcomes are persisted to the history database for the
history subcommand.

The watch list is a .pricewatch YAML file found in the current or home
directory; run "pricewatch init" to create one.

Examples:
  # Watch using .pricewatch from the current or home directory
  pricewatch watch

  # Check every five minutes with three products at a time
  pricewatch watch --interval 5m --concurrency 3

  # Use the browser-impersonating client for picky retailers
  pricewatch watch --stealth

  # Use a custom watch list
  pricewatch watch -c mywatchlist.yaml`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}

	// Monitoring behavior flags
	cmd.Flags().DurationP("interval", "i", config.DefaultCheckInterval,
		"Pause between polling cycles")
	cmd.Flags().IntP("attempts", "a", config.DefaultMaxAttempts,
		"Fetch attempts per check, including the first")
	cmd.Flags().Duration("retry-delay", config.DefaultRetryDelay,
		"Pause between fetch attempts within a check")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Products checked at once within a cycle")

	// Request flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultFetchTimeout,
		"Per-request HTTP timeout")
	cmd.Flags().Duration("request-delay", config.DefaultRequestDelay,
		"Minimum spacing between outbound requests")
	cmd.Flags().StringP("user-agent", "u", "",
		"Override the User-Agent header")
	cmd.Flags().BoolP("stealth", "s", false,
		"Use the browser-impersonating TLS client")
	cmd.Flags().String("proxy", "",
		"Proxy URL for outbound requests (stealth mode only)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Watch list file path (default: .pricewatch in current or home directory)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Disable persisting outcomes to the history database")

	return cmd
}

// runWatchCmd executes the watch command.
func runWatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildWatchConfig(cmd)
	if err != nil {
		return err
	}

	// Environment overrides sit between flags and validation so a bad
	// override fails as loudly as a bad flag.
	if err := cfg.ApplyEnv(); err != nil {
		return fmt.Errorf("environment configuration error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runWatch(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildWatchConfig creates a Config from cobra command flags.
func buildWatchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.CheckInterval, err = cmd.Flags().GetDuration("interval")
	if err != nil {
		return nil, err
	}

	cfg.MaxAttempts, err = cmd.Flags().GetInt("attempts")
	if err != nil {
		return nil, err
	}

	cfg.RetryDelay, err = cmd.Flags().GetDuration("retry-delay")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.FetchTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RequestDelay, err = cmd.Flags().GetDuration("request-delay")
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

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	if !noHistory {
		cfg.SaveHistory = true
		cfg.HistoryDir = config.XDGDataDir()
	}

	// Load the watch list. The watch command cannot run without one:
	// an explicitly specified file that is missing is an error, and so
	// is finding no file at all.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath == "" {
		if explicitConfigPath {
			return nil, fmt.Errorf("watch list file not found: %s", cfg.ConfigFilePath)
		}
		return nil, errors.New("no watch list found: run \"pricewatch init\" to create .pricewatch")
	}

	cfg.WatchList, err = config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch list %s: %w", configPath, err)
	}

	return cfg, nil
}

// runWatch wires the monitoring session together and blocks until the
// context is cancelled.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	products, err := cfg.WatchList.TrackedProducts()
	if err != nil {
		return fmt.Errorf("invalid watch list: %w", err)
	}

	logger.Info("starting watch",
		slog.Int("products", len(products)),
		slog.Duration("interval", cfg.CheckInterval),
		slog.Bool("stealth", cfg.Stealth),
		slog.Bool("saveHistory", cfg.SaveHistory),
	)

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}

	warnDisallowedProducts(ctx, cfg, products, logger)

	sinks := monitor.MultiSink{monitor.NewLogSink(logger)}

	if cfg.SaveHistory {
		store, err := history.Open(cfg.HistoryDir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer store.Close()

		historySink := history.NewSink(store, 64, logger)
		defer historySink.Close()
		sinks = append(sinks, historySink)
		logger.Info("history database opened", slog.String("dir", cfg.HistoryDir))
	}

	sinks = append(sinks, newCheckoutSink(ctx, logger))

	executor := monitor.NewExecutor(fetcher,
		monitor.WithMaxAttempts(cfg.MaxAttempts),
		monitor.WithRetryDelay(cfg.RetryDelay),
		monitor.WithExecutorLogger(logger),
	)
	scheduler := monitor.NewScheduler(executor,
		monitor.WithCheckInterval(cfg.CheckInterval),
		monitor.WithConcurrency(cfg.Concurrency),
		monitor.WithSink(sinks),
		monitor.WithSchedulerLogger(logger),
	)

	session := scheduler.Start(ctx, products)
	err = session.Wait()
	logger.Info("watch stopped")
	return err
}

// buildFetcher selects and configures the HTTP client.
func buildFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	headerFn := siteHeaderFunc(cfg.WatchList)

	if cfg.Stealth {
		opts := []fetch.StealthOption{
			fetch.WithStealthTimeout(cfg.FetchTimeout),
			fetch.WithStealthMaxBodySize(cfg.MaxBodySize),
			fetch.WithStealthRequestDelay(cfg.RequestDelay),
			fetch.WithStealthHeaderFunc(headerFn),
		}
		if cfg.UserAgent != "" {
			opts = append(opts, fetch.WithStealthUserAgent(cfg.UserAgent))
		}
		if cfg.Proxy != "" {
			opts = append(opts, fetch.WithProxy(cfg.Proxy))
		}
		return fetch.NewStealthClient(opts...)
	}

	opts := []fetch.ClientOption{
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithRequestDelay(cfg.RequestDelay),
		fetch.WithHeaderFunc(headerFn),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}
	return fetch.NewClient(opts...), nil
}

// siteHeaderFunc builds the per-request header overlay from the watch
// list's site settings.
func siteHeaderFunc(watchList *config.File) func(u *url.URL) map[string]string {
	if watchList == nil {
		return nil
	}
	return func(u *url.URL) map[string]string {
		sc := watchList.GetSiteConfig(u.Host)

		headers := make(map[string]string, len(sc.Headers)+2)
		for k, v := range sc.Headers {
			headers[k] = v
		}
		if sc.Cookie != "" {
			headers["Cookie"] = sc.Cookie
		}
		if sc.UserAgent != "" {
			headers["User-Agent"] = sc.UserAgent
		}
		if len(headers) == 0 {
			return nil
		}
		return headers
	}
}

// warnDisallowedProducts logs products whose pages robots.txt asks
// crawlers to skip. Monitoring a product the user owns the decision
// for, so this warns rather than refuses.
func warnDisallowedProducts(ctx context.Context, cfg *config.Config, products []model.TrackedProduct, logger *slog.Logger) {
	ua := cfg.UserAgent
	if ua == "" {
		ua = fetch.DefaultUserAgent
	}
	agent := fetch.NewRobotsAgent(ua)
	for _, p := range products {
		if !agent.Allowed(ctx, p.URL) {
			logger.Warn("robots.txt disallows fetching this page",
				slog.String("url", p.URL))
		}
	}
}

// newCheckoutSink returns a sink that launches the add-to-cart
// automation when an alert fires for a product with autoCheckout set.
// The browser run happens in its own goroutine so a slow cart flow
// never stalls the polling loop.
func newCheckoutSink(ctx context.Context, logger *slog.Logger) monitor.Sink {
	automator := checkout.New(checkout.WithLogger(logger))
	return monitor.SinkFunc(func(outcome model.CheckOutcome) {
		if !outcome.AlertFired || !outcome.Product.AutoCheckout {
			return
		}
		go func() {
			if err := automator.AddToCart(ctx, outcome.Product.URL); err != nil {
				logger.Error("add-to-cart failed",
					slog.String("url", outcome.Product.URL),
					slog.String("error", err.Error()))
			}
		}()
	})
}
