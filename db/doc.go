// Package db provides the sqlite backend for the launch dashboard.
// The launch dataset is copied into an in-memory (or file) sqlite database once at
// startup and every dashboard query is answered with SQL.
//
// This package is responsible for:
// - Establishing the database connection and applying migrations (`db.go`, `migrations/`).
// - Bulk loading a domain.Dataset into the `launches` table (`launch_repo.go`).
// - Implementing the domain repository interfaces (`LaunchRepository`, `StatsRepository`,
//   `LogRepository`) with results ordered exactly like the in-memory dataset store.
// - Providing common database utility types (`types.go`).
package db
