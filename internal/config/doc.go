// Package config provides configuration structures and utilities for
// pricewatch. It defines the main monitoring options, the YAML watch
// list with per-site settings, and environment variable overrides.
package config
