// Package store persists semester averages tables in SQLite using the
// pure-Go modernc.org/sqlite driver. Each saved table is an analysis run
// identified by a UUID.
package store
