// Package history provides SQLite-based persistence for check
// outcomes. Stored outcomes back the history subcommand and let users
// review price movement and alert activity across monitoring sessions.
package history
