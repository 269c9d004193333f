package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahmad5farah/AmaKart/internal/app"
	"github.com/ahmad5farah/AmaKart/internal/config"
	"github.com/ahmad5farah/AmaKart/internal/seed"
	"github.com/ahmad5farah/AmaKart/migrations"
	"github.com/ahmad5farah/AmaKart/pkg/database"
	"github.com/ahmad5farah/AmaKart/pkg/logger"
)

func main() {
	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "amakart",
		Short:         "AmaKart storefront server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			log.Info("starting amakart storefront",
				slog.String("environment", cfg.Environment),
				slog.Int("http_port", cfg.HTTPPort),
				slog.String("storage_backend", cfg.StorageBackend),
			)

			application, err := app.NewApp(cfg, log)
			if err != nil {
				log.Error("failed to initialize application", slog.String("error", err.Error()))
				return err
			}

			// Run the application. This blocks until shutdown.
			if err := application.Run(cmd.Context()); err != nil {
				log.Error("application error", slog.String("error", err.Error()))
				return err
			}

			log.Info("amakart storefront stopped")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
				URL:             cfg.DatabaseURL,
				MaxConns:        2,
				ConnectAttempts: 5,
			}, log)
			if err != nil {
				log.Error("failed to connect to postgres", slog.String("error", err.Error()))
				return err
			}
			defer pool.Close()

			applied, err := database.RunMigrations(ctx, pool, migrations.FS, log)
			if err != nil {
				log.Error("migration failed", slog.String("error", err.Error()))
				return err
			}
			log.Info("database migrations completed", slog.Int("applied", len(applied)))
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	var count int
	var randSeed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
				URL:             cfg.DatabaseURL,
				MaxConns:        2,
				ConnectAttempts: 5,
			}, log)
			if err != nil {
				log.Error("failed to connect to postgres", slog.String("error", err.Error()))
				return err
			}
			defer pool.Close()

			now := time.Now().UTC()
			docs := seed.Sample(now)
			docs = append(docs, seed.Generate(count, rand.New(rand.NewSource(randSeed)), now)...)

			written, err := seed.Insert(ctx, pool, docs, log)
			if err != nil {
				log.Error("seeding failed", slog.String("error", err.Error()))
				return err
			}
			log.Info("demo catalog seeded", slog.Int("products", written))
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 200, "number of generated products on top of the sample catalog")
	cmd.Flags().Int64Var(&randSeed, "rand-seed", 42, "seed for the product generator")
	return cmd
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logger.New(app.ServiceName, cfg.LogLevel), nil
}
