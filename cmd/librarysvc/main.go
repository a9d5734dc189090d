// Command librarysvc runs the library management service: a REST API for
// borrowing and returning books, backed by PostgreSQL.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"librarysvc/auth"
	"librarysvc/config"
	"librarysvc/httpapi"
	"librarysvc/librarystore/postgresengine"
	"librarysvc/scheduler"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "librarysvc",
		Short:         "Library management service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API and the overdue loan sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pool, err := openPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	codec := auth.NewTokenCodec(cfg.TokenSecret, cfg.TokenTTL)
	server := httpapi.NewServer(store, codec, logger)

	sweeper := scheduler.NewOverdueSweeper(store, logger)
	if err := sweeper.Start(cfg.OverdueSweepSpec); err != nil {
		return fmt.Errorf("starting overdue sweep: %w", err)
	}
	defer sweeper.Stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start(cfg.HTTPAddr)
	}()

	logger.Info("service started", "addr", cfg.HTTPAddr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server stopped: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}

func runMigrate(ctx context.Context) error {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pool, err := openPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}

	if err := store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("schema created")

	return nil
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := config.PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, nil
}
