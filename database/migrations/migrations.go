// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// cmd/supplydesk imports this package for its side effects so the CLI
// sees every migration.
package migrations
