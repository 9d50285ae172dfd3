package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stewardhq/steward/internal/tools"
	"github.com/stewardhq/steward/internal/tools/accounts"
)

// buildToolsCmd creates the "tools" command that prints the catalog every
// actor serves.
func buildToolsCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tool catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			registry := tools.NewRegistry()
			setup := accounts.Toolset(accounts.NewStaticDirectory(directoryEntries(cfg)))
			if err := setup(registry); err != nil {
				return err
			}

			if asJSON {
				return printToolsJSON(cmd, registry)
			}
			for _, name := range registry.Names() {
				descriptor, _ := registry.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", descriptor.Name, descriptor.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "steward.yaml", "Path to YAML configuration file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the catalog as JSON, schemas included")
	return cmd
}

func printToolsJSON(cmd *cobra.Command, registry *tools.Registry) error {
	type entry struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		InputSchema json.RawMessage `json:"inputSchema"`
	}
	catalog := make([]entry, 0, registry.Len())
	for _, name := range registry.Names() {
		descriptor, _ := registry.Get(name)
		catalog = append(catalog, entry{
			Name:        descriptor.Name,
			Description: descriptor.Description,
			InputSchema: json.RawMessage(descriptor.Schema.Source()),
		})
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(catalog)
}
