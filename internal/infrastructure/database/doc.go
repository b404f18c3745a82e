// Package database provides SQLite access for the property-change
// history store.
//
// It wraps database/sql with WAL-mode setup, health checks, and an
// embedded-filesystem migration runner. Migrations live under
// migrations/ at the repository root and are compiled into the binary
// by the main package.
package database
