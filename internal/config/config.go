package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Chosen for polite monitoring of retail sites: frequent enough to
// catch restocks, sparse enough to stay under rate limits.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pricewatch"

	// DefaultCheckInterval is the pause between polling cycles.
	// 60 seconds catches flash restocks while keeping request volume
	// low enough that retailers have no reason to block the client.
	DefaultCheckInterval = 60 * time.Second

	// DefaultMaxAttempts is the total fetch attempts per product check,
	// including the first. Three attempts absorbs transient network
	// blips without turning one bad product into a stalled cycle.
	DefaultMaxAttempts = 3

	// DefaultRetryDelay is the pause between fetch attempts within a
	// check. Five seconds is long enough for transient failures
	// (DNS hiccups, load balancer churn) to clear.
	DefaultRetryDelay = 5 * time.Second

	// DefaultFetchTimeout is the per-request HTTP timeout.
	// Retail pages are large but served from CDNs; 10 seconds is
	// generous without letting one dead host eat the retry budget.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultRequestDelay is the minimum spacing between outbound
	// requests. This is a politeness setting: retail sites are quick to
	// rate-limit clients that fetch back to back.
	DefaultRequestDelay = 1 * time.Second

	// DefaultConcurrency is how many products are checked at once
	// within a cycle. Sequential by default so the request pattern
	// stays predictable; raise via --concurrency when watching many
	// products across different hosts.
	DefaultConcurrency = 1

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB covers even the heaviest product pages while preventing
	// memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Config holds all configuration options for pricewatch.
// It is populated from CLI flags, the watch list file, and environment
// overrides, then passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested
// structs (e.g., FetchConfig, MonitorConfig) for simplicity. The number
// of options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// CheckInterval is the pause between polling cycles.
	CheckInterval time.Duration

	// MaxAttempts is the total fetch attempts per product check.
	MaxAttempts int

	// RetryDelay is the pause between fetch attempts within a check.
	RetryDelay time.Duration

	// FetchTimeout is the per-request HTTP timeout.
	FetchTimeout time.Duration

	// RequestDelay is the minimum spacing between outbound requests.
	RequestDelay time.Duration

	// Concurrency bounds how many products are checked at once within
	// a cycle.
	Concurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	// When empty, a browser-like default is used; retail sites serve
	// stripped or blocked pages to obvious bot agents.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Stealth selects the browser-impersonating TLS client instead of
	// the plain HTTP client. Needed for retailers that fingerprint the
	// TLS handshake.
	Stealth bool

	// Proxy is an optional proxy URL for outbound requests.
	// Only honored in stealth mode.
	Proxy string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the watch list file.
	// If empty, the tool searches for .pricewatch in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// WatchList holds the products and per-site settings loaded from
	// the watch list file. Populated by LoadConfigFile.
	WatchList *File

	// HistoryDir is the directory path for storing the SQLite history
	// database. When empty, outcomes are not persisted.
	// Defaults to the XDG data directory.
	HistoryDir string

	// SaveHistory indicates whether to persist check outcomes.
	// Automatically set to true when HistoryDir is configured.
	SaveHistory bool

	// JSONReport enables JSON output for the history subcommand.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output for the history
	// subcommand. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for history reports.
	// When set, the report is written to this file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., interval,
// attempt bound). This also serves as documentation of the defaults.
func NewConfig() *Config {
	return &Config{
		CheckInterval: DefaultCheckInterval,
		MaxAttempts:   DefaultMaxAttempts,
		RetryDelay:    DefaultRetryDelay,
		FetchTimeout:  DefaultFetchTimeout,
		RequestDelay:  DefaultRequestDelay,
		Concurrency:   DefaultConcurrency,
		MaxBodySize:   DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for pricewatch.
// On Linux: ~/.local/share/pricewatch
// On macOS: ~/Library/Application Support/pricewatch
// On Windows: %LOCALAPPDATA%\pricewatch
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pricewatch.
// On Linux: ~/.config/pricewatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for pricewatch.
// On Linux: ~/.cache/pricewatch
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This runs once after CLI parsing, before any monitoring begins.
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.CheckInterval <= 0 {
		return ErrInvalidInterval
	}

	if c.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}

	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
