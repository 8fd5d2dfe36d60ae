package main

import (
	"fmt"
	"os"
	"path/filepath"

	"bookshelf/internal/config"
)

// migrationsDir is the on-disk directory new migrations are written to.
func migrationsDir(driver string) (string, error) {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v, nil
	}
	switch driver {
	case config.DriverPostgres, config.DriverSQLite:
		return filepath.Join("db", "migrations", driver), nil
	default:
		return "", fmt.Errorf("driver %q has no migrations", driver)
	}
}
