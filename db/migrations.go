// Package db embeds the schema migrations and seed fixtures.
package db

import "embed"

// Migrations holds one goose migration directory per SQL driver.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var Migrations embed.FS

// Migration directories inside Migrations.
const (
	PostgresMigrationsDir = "migrations/postgres"
	SQLiteMigrationsDir   = "migrations/sqlite"
)

// SeedBooks is the default fixture loaded by cmd/seed.
//
//go:embed seed/books.yaml
var SeedBooks []byte
