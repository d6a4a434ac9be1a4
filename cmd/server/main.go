package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go-media-backend/internal/app"
	"go-media-backend/internal/config"
	"go-media-backend/internal/logger"
)

func main() {
	var envFiles []string

	load := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load config: %w", err)
		}
		log := logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
		slog.SetDefault(log)
		return cfg, log, nil
	}

	root := &cobra.Command{
		Use:           "media-backend",
		Short:         "Media sharing API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env file(s) to load before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg, log)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
