package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"library_catalog/internal/config"
	"library_catalog/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library",
		Short:         "Shared library catalog server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "No .env file found or error loading, relying on environment variables")
			}
			logging.Setup(os.Getenv("LOG_LEVEL"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				pool, err := openDB(cmd.Context())
				if err != nil {
					return err
				}
				defer pool.Close()
				slog.Info("schema is up to date")
				return nil
			},
		},
		newCreateAdminCmd(),
	)
	return root
}

// openDB connects and migrates; every command that touches the store goes through it
func openDB(ctx context.Context) (*pgxpool.Pool, error) {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load DB config: %w", err)
	}
	pool, err := config.ConnectDB(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := config.AutoMigrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return pool, nil
}
