package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"biodb-backend-go/internal/config"
	"biodb-backend-go/internal/db"
	"biodb-backend-go/internal/migrations"
	"biodb-backend-go/internal/seed"
	"biodb-backend-go/internal/services"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var (
		count      int
		storage    string
		driver     string
		randomSeed uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic tuberculosis samples",
		Long: `Insert synthetic tuberculosis samples into biological_data.

Each row gets a random "TB Sample" name, a collection date within the last
five years, a fake collector name and a tissue-source description. Rows go
through the same insert path as samples added by research partners; the
first failed insert aborts the run.

Example:
  seed --count 100 --db biological_database.db`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := storage
			if driver == db.DriverPostgres {
				dsn = cfg.DatabaseURL
			}
			return run(cmd.Context(), driver, dsn, count, randomSeed)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", seed.DefaultCount, "number of samples to insert")
	cmd.Flags().StringVar(&storage, "db", cfg.StoragePath, "SQLite database path")
	cmd.Flags().StringVar(&driver, "driver", cfg.DatabaseDriver, "database driver (sqlite or pgx)")
	cmd.Flags().Uint64Var(&randomSeed, "seed", 0, "random seed, 0 picks one at random")
	return cmd
}

func run(ctx context.Context, driver, dsn string, count int, randomSeed uint64) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := db.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()
	if err := migrations.Apply(ctx, conn, driver); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	seeder := seed.New(services.NewSampleRepository(conn, nil), gofakeit.New(randomSeed))
	inserted, err := seeder.Seed(ctx, count)
	if err != nil {
		slog.Error("seeding aborted", "inserted", inserted, "error", err)
		return err
	}
	slog.Info("seeding complete", "inserted", inserted, "driver", driver)
	return nil
}
