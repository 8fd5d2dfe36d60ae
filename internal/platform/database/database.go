// Package database opens the record store selected by configuration and
// applies its schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bookshelf/db"
	"bookshelf/internal/book"
	"bookshelf/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// ErrNoSchema is returned by migration calls on the memory driver.
var ErrNoSchema = errors.New("database: driver has no schema")

// Store is an open record store and the handle behind it.
type Store struct {
	Driver string
	Books  book.Repository

	pool *pgxpool.Pool
	sqlx *sqlx.DB
}

// Open connects to the configured driver and verifies the connection.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := openPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Driver,
			Books:  book.NewPostgresRepo(pool, cfg.QueryTimeout),
			pool:   pool,
		}, nil
	case config.DriverSQLite:
		sdb, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Store{
			Driver: cfg.Driver,
			Books:  book.NewSQLiteRepo(sdb, cfg.QueryTimeout),
			sqlx:   sdb,
		}, nil
	case config.DriverMemory:
		return &Store{Driver: cfg.Driver, Books: book.NewMemoryRepo()}, nil
	default:
		return nil, fmt.Errorf("database: unsupported driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: create pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: ping %s: %w", config.RedactDSN(dsn), err)
	}
	return pool, nil
}

// OpenSQLite opens the SQLite database at path, creating its directory.
// ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("database: empty sqlite path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("database: create sqlite dir: %w", err)
		}
	}

	sdb, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("database: open sqlite: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	sdb.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := sdb.Exec(stmt); err != nil {
			sdb.Close()
			return nil, fmt.Errorf("database: %s: %w", stmt, err)
		}
	}
	return sdb, nil
}

// Ping reports whether the store can serve queries.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return s.pool.Ping(ctx)
	case s.sqlx != nil:
		return s.sqlx.PingContext(ctx)
	default:
		return nil
	}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.sqlx != nil {
		_ = s.sqlx.Close()
	}
}

// withGoose points goose at the embedded migrations for the store's driver
// and hands fn a database/sql view of the connection.
func (s *Store) withGoose(fn func(sqlDB *sql.DB, dir string) error) error {
	var (
		sqlDB   *sql.DB
		dialect string
		dir     string
	)
	switch {
	case s.pool != nil:
		sqlDB = stdlib.OpenDBFromPool(s.pool)
		defer sqlDB.Close()
		dialect, dir = "postgres", db.PostgresMigrationsDir
	case s.sqlx != nil:
		sqlDB = s.sqlx.DB
		dialect, dir = "sqlite3", db.SQLiteMigrationsDir
	default:
		return ErrNoSchema
	}

	goose.SetBaseFS(db.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("database: goose dialect: %w", err)
	}
	return fn(sqlDB, dir)
}

// MigrateUp applies all pending migrations.
func (s *Store) MigrateUp(ctx context.Context) error {
	return s.withGoose(func(sqlDB *sql.DB, dir string) error {
		return goose.UpContext(ctx, sqlDB, dir)
	})
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown(ctx context.Context) error {
	return s.withGoose(func(sqlDB *sql.DB, dir string) error {
		return goose.DownContext(ctx, sqlDB, dir)
	})
}

// MigrateStatus logs the state of every migration.
func (s *Store) MigrateStatus(ctx context.Context) error {
	return s.withGoose(func(sqlDB *sql.DB, dir string) error {
		return goose.StatusContext(ctx, sqlDB, dir)
	})
}

// GooseLogger adapts slog to goose's logger.
type GooseLogger struct {
	Logger *slog.Logger
}

func (l GooseLogger) Printf(format string, v ...interface{}) {
	l.Logger.Info(fmt.Sprintf(format, v...), "component", "goose")
}

func (l GooseLogger) Fatalf(format string, v ...interface{}) {
	l.Logger.Error(fmt.Sprintf(format, v...), "component", "goose")
	os.Exit(1)
}
