// Package stores persists lint run history in SQLite. The schema is
// embedded and applied with golang-migrate; the database runs in WAL mode.
package stores
