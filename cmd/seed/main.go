package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"bookshelf/db"
	"bookshelf/internal/book"
	"bookshelf/internal/config"
	"bookshelf/internal/platform/database"
	"bookshelf/internal/platform/logging"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	Books []fixtureBook `yaml:"books"`
}

type fixtureBook struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Rating *int   `yaml:"rating"`
}

func main() {
	if err := newSeedCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Insert fixture books into the configured store",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data := db.SeedBooks
			if file != "" {
				var err error
				if data, err = os.ReadFile(file); err != nil {
					return fmt.Errorf("read fixture: %w", err)
				}
			}
			books, err := parseFixture(data)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DB.Driver == config.DriverMemory {
				return errors.New("seeding the memory driver has no lasting effect")
			}
			logger := logging.New(os.Stderr, cfg.Log.Level, "text")

			store, err := database.Open(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := seed(cmd.Context(), store.Books, books, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Info("seed complete", "inserted", n, "driver", store.Driver)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to load (defaults to the embedded db/seed/books.yaml)")
	return cmd
}

// parseFixture decodes a YAML fixture and checks every book is complete.
func parseFixture(data []byte) ([]book.NewBook, error) {
	var fx fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	out := make([]book.NewBook, 0, len(fx.Books))
	for i, b := range fx.Books {
		if b.Title == "" || b.Author == "" || b.Rating == nil {
			return nil, fmt.Errorf("fixture book %d: title, author and rating are required", i+1)
		}
		out = append(out, book.NewBook{Title: b.Title, Author: b.Author, Rating: *b.Rating})
	}
	return out, nil
}

func seed(ctx context.Context, repo book.Repository, books []book.NewBook, out io.Writer) (int, error) {
	for i, b := range books {
		id, err := repo.Insert(ctx, b.Title, b.Author, b.Rating)
		if err != nil {
			return i, fmt.Errorf("insert %q: %w", b.Title, err)
		}
		fmt.Fprintf(out, "inserted book %d: %s\n", id, b.Title)
	}
	return len(books), nil
}
