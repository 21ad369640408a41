package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/fumisakura/pricewatch/internal/model"
)

// Store provides SQLite-based storage for check outcomes.
//
// Design decision: We use a single database file for all monitored
// products rather than one file per product. This keeps cross-product
// queries (recent activity, alert history) simple and makes
// backup/restore a single-file operation.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Store at the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created. Otherwise a missing database is an error, which the history
// subcommand uses to tell "no history yet" from an I/O failure.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, "pricewatch.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// createTables creates the database schema if it doesn't exist.
// Prices are stored as their exact decimal string, never as REAL:
// binary floating point cannot represent most retail prices.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS check_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		target_price TEXT NOT NULL,
		fetched_at DATETIME NOT NULL,
		price TEXT,
		stock TEXT NOT NULL,
		alert_fired INTEGER NOT NULL DEFAULT 0,
		error_kind TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		attempts INTEGER NOT NULL DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_outcomes_url ON check_outcomes(url);
	CREATE INDEX IF NOT EXISTS idx_outcomes_fetched ON check_outcomes(fetched_at);
	CREATE INDEX IF NOT EXISTS idx_outcomes_alert ON check_outcomes(alert_fired);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveOutcome persists one check outcome.
func (s *Store) SaveOutcome(ctx context.Context, outcome model.CheckOutcome) error {
	var price any
	if outcome.Price != nil {
		price = outcome.Price.String()
	}

	query := `
	INSERT INTO check_outcomes (url, target_price, fetched_at, price, stock, alert_fired, error_kind, error_message, attempts)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		outcome.Product.URL,
		outcome.Product.TargetPrice.String(),
		outcome.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
		price,
		string(outcome.Stock),
		outcome.AlertFired,
		string(outcome.ErrorKind),
		outcome.ErrorMessage,
		outcome.Attempts,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}

	return nil
}

// Filter narrows history queries. Zero values mean "no filter".
type Filter struct {
	// URL restricts results to one product.
	URL string

	// AlertsOnly restricts results to fired alerts.
	AlertsOnly bool

	// Limit caps the number of results. Zero means no cap.
	Limit int
}

// Outcomes retrieves stored outcomes matching the filter, most recent
// first.
func (s *Store) Outcomes(ctx context.Context, filter Filter) ([]model.CheckOutcome, error) {
	query := `
	SELECT url, target_price, fetched_at, price, stock, alert_fired, error_kind, error_message, attempts
	FROM check_outcomes
	WHERE 1=1
	`
	args := make([]any, 0)

	if filter.URL != "" {
		query += " AND url = ?"
		args = append(args, filter.URL)
	}
	if filter.AlertsOnly {
		query += " AND alert_fired = 1"
	}

	query += " ORDER BY fetched_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var results []model.CheckOutcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, outcome)
	}

	return results, rows.Err()
}

// LatestByProduct retrieves the most recent outcome for a product URL.
// Returns sql.ErrNoRows wrapped when the product has no history.
func (s *Store) LatestByProduct(ctx context.Context, url string) (model.CheckOutcome, error) {
	outcomes, err := s.Outcomes(ctx, Filter{URL: url, Limit: 1})
	if err != nil {
		return model.CheckOutcome{}, err
	}
	if len(outcomes) == 0 {
		return model.CheckOutcome{}, fmt.Errorf("no history for %s: %w", url, sql.ErrNoRows)
	}
	return outcomes[0], nil
}

// AlertCount returns how many alerts have fired for a product URL.
func (s *Store) AlertCount(ctx context.Context, url string) (int, error) {
	query := `SELECT COUNT(*) FROM check_outcomes WHERE url = ? AND alert_fired = 1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, url).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}
	return count, nil
}

// TrackedURLs returns the distinct product URLs present in the history.
func (s *Store) TrackedURLs(ctx context.Context) ([]string, error) {
	query := `SELECT DISTINCT url FROM check_outcomes ORDER BY url`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list URLs: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan URL: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// scanOutcome reads one row into a CheckOutcome.
func scanOutcome(rows *sql.Rows) (model.CheckOutcome, error) {
	var (
		outcome     model.CheckOutcome
		targetPrice string
		fetchedAt   string
		price       sql.NullString
		stock       string
		errorKind   string
	)

	err := rows.Scan(
		&outcome.Product.URL,
		&targetPrice,
		&fetchedAt,
		&price,
		&stock,
		&outcome.AlertFired,
		&errorKind,
		&outcome.ErrorMessage,
		&outcome.Attempts,
	)
	if err != nil {
		return model.CheckOutcome{}, fmt.Errorf("failed to scan outcome: %w", err)
	}

	outcome.Product.TargetPrice, err = decimal.NewFromString(targetPrice)
	if err != nil {
		return model.CheckOutcome{}, fmt.Errorf("corrupt target price %q: %w", targetPrice, err)
	}
	if price.Valid {
		p, err := decimal.NewFromString(price.String)
		if err != nil {
			return model.CheckOutcome{}, fmt.Errorf("corrupt price %q: %w", price.String, err)
		}
		outcome.Price = &p
	}

	outcome.Stock = model.StockStatus(stock)
	outcome.ErrorKind = model.ErrorKind(errorKind)
	outcome.FetchedAt = parseTimestamp(fetchedAt)

	return outcome, nil
}

// IsNotFound reports whether an error means a product has no stored
// history.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// timestampFormats contains the timestamp formats that SQLite may
// return. The order matters: more specific formats come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending
// on configuration. Returns zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
