// Package main provides the CLI entry point for the steward session actor
// runtime.
//
// Start the server:
//
//	steward serve --config steward.yaml
//
// List the tool catalog:
//
//	steward tools
//
// Mint development credentials:
//
//	steward token user --subject u1 --scope accounts:read
//	steward token service --account acct-1
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "steward",
		Short:        "Steward - per-identity session actor runtime",
		Long:         "Steward serves schema-validated tools through per-identity session actors\nwith durable session state and dual-mode authorization.",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildServeCmd(),
		buildToolsCmd(),
		buildTokenCmd(),
	)
	return rootCmd
}
