package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap [uri]",
	Short: "Load a prebuilt index snapshot",
	Long: `Downloads a prebuilt index snapshot and loads it, skipping the
embedding work entirely. Without an argument, uses the bootstrap URI
from the config file.

A snapshot whose format version, dimensionality or metric does not
match the configured index is rejected; re-ingest from source instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBootstrap,
}

func init() {
	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	a, err := app()
	if err != nil {
		return err
	}
	if a.Close != nil {
		defer a.Close()
	}

	uri := a.BootstrapURI
	if len(args) > 0 {
		uri = args[0]
	}
	if uri == "" {
		return fmt.Errorf("no bootstrap URI given or configured")
	}

	if err := a.Ingest.Bootstrap(cmd.Context(), uri); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	if a.SnapshotPath != "" {
		if err := a.Index.Persist(cmd.Context(), a.SnapshotPath); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}

	cmd.Printf("Index bootstrapped: %d entries from %d documents\n", a.Index.Len(), a.Index.Documents())
	return nil
}
