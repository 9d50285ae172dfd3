package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/actor"
	"github.com/stewardhq/steward/internal/auth"
	"github.com/stewardhq/steward/internal/cell"
	"github.com/stewardhq/steward/internal/config"
	"github.com/stewardhq/steward/internal/gateway"
	"github.com/stewardhq/steward/internal/observability"
	"github.com/stewardhq/steward/internal/telemetry"
	"github.com/stewardhq/steward/internal/tools/accounts"
)

// buildServeCmd creates the "serve" command that starts the runtime.
func buildServeCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the steward runtime",
		Long: `Start the steward runtime.

The server loads configuration, opens the durable session store, and
serves the tool catalog over HTTP with per-identity session actors.
Graceful shutdown is handled on SIGINT/SIGTERM.`,
		Example: `  # Start with default config
  steward serve --config steward.yaml

  # Start with debug logging
  steward serve --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "steward.yaml", "Path to YAML configuration file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func runServe(ctx context.Context, configPath string, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if debug {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:  level,
		Format: cfg.Logging.Format,
	})

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	manager := actor.NewManager(actor.Options{
		Builder: auth.NewBuilder(auth.Config{JWTSecret: cfg.Auth.JWTSecret}),
		Store:   store,
		Setup:   accounts.Toolset(accounts.NewStaticDirectory(directoryEntries(cfg))),
		Sink:    telemetry.NewMetricsSink(registry),
		Logger:  logger,
	})
	gateway.RegisterRuntimeMetrics(registry, manager)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go manager.Sweep(ctx, cfg.Actors.SweepInterval, cfg.Actors.IdleEviction)

	server := gateway.NewServer(gateway.Config{
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Registry: registry,
		Logger:   logger,
	}, manager)
	if err := server.Start(); err != nil {
		return err
	}

	logger.Info("steward running",
		"addr", server.Addr(),
		"storage", cfg.Storage.Driver,
		"accounts", len(cfg.Accounts),
	)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadConfig reads the file at path, falling back to defaults when the
// default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "steward.yaml" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (cell.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return cell.NewSQLiteStore(cfg.Storage.Path)
	case "postgres":
		return cell.NewPostgresStore(cfg.Storage.DSN)
	default:
		return cell.NewMemoryStore(), nil
	}
}

func directoryEntries(cfg *config.Config) []accounts.Account {
	entries := make([]accounts.Account, 0, len(cfg.Accounts))
	for _, entry := range cfg.Accounts {
		entries = append(entries, accounts.Account{ID: entry.ID, Name: entry.Name})
	}
	return entries
}
