// Package sqlite provides SQLite-backed persistence for scrim records,
// per-channel sync cursors and scheduler state. A single database file
// backs all store interfaces; schema changes are applied through embedded
// migrations at open time.
package sqlite
