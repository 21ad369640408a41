// Package log provides secure logging functionality with automatic
// sanitization of sensitive information, built on top of the standard
// slog package.
//
// Monitoring retail sites means the request path carries session
// cookies and sometimes account tokens from the watch list's per-site
// settings. The SecureHandler masks those values before they reach the
// log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens)
//   - Session identifiers and authentication tokens
//
// Even in verbose mode, sensitive values are masked to prevent
// accidental exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // Will be sanitized to "***"
//	    "url", "https://shop.example.com/item",
//	)
//
//	slog.SetDefault(logger)
package log
