package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"bookshelf/internal/config"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logging"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the bookshelf database schema",
		SilenceUsage: true,
	}

	cmd.AddCommand(newUpCommand())
	cmd.AddCommand(newDownCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newCreateCommand())

	return cmd
}

// withStore opens the configured store, runs fn and closes the store.
func withStore(ctx context.Context, fn func(ctx context.Context, store *database.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, "text")
	goose.SetLogger(database.GooseLogger{Logger: logger})

	store, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Debug("database connection OK", slog.String("driver", store.Driver))
	return fn(ctx, store)
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
				if err := store.MigrateUp(ctx); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
				return nil
			})
		},
	}
}

func newDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
				if err := store.MigrateDown(ctx); err != nil {
					return fmt.Errorf("failed to rollback migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back successfully")
				return nil
			})
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *database.Store) error {
				return store.MigrateStatus(ctx)
			})
		},
	}
}

func newCreateCommand() *cobra.Command {
	var driver string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnvFiles()
			if driver == "" {
				driver = os.Getenv("DB_DRIVER")
			}
			if driver == "" {
				driver = config.DriverPostgres
			}
			dir, err := migrationsDir(driver)
			if err != nil {
				return err
			}

			goose.SetSequential(true)
			if err := goose.Create(nil, dir, args[0], "sql"); err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migration created: %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", "", "migration set to add to (postgres|sqlite); defaults to DB_DRIVER")
	return cmd
}
