package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/askdocs/ragserver/internal/core/domain"
)

var (
	ingestSnapshot bool
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [paths...]",
	Short: "Ingest documents into the index",
	Long: `Extracts, chunks, embeds and indexes the given documents.
Each document is processed independently; failures are reported
per document and do not abort the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestSnapshot, "snapshot", false, "persist the index snapshot after ingestion")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := app()
	if err != nil {
		return err
	}
	if a.Close != nil {
		defer a.Close()
	}

	report, err := a.Ingest.Ingest(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestSnapshot {
		if a.SnapshotPath == "" {
			return fmt.Errorf("no snapshot path configured")
		}
		if err := a.Index.Persist(cmd.Context(), a.SnapshotPath); err != nil {
			return fmt.Errorf("persist snapshot: %w", err)
		}
	}

	if ingestJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputReportTable(cmd, report)
}

func outputReportTable(cmd *cobra.Command, report *domain.IngestReport) error {
	cmd.Printf("Ingested %d documents: %d succeeded, %d failed\n",
		len(report.Documents), report.Succeeded(), report.Failed())
	cmd.Println()
	for _, d := range report.Documents {
		switch d.Status {
		case domain.DocumentStatusSuccess:
			cmd.Printf("  ok    %s (%d chunks)\n", d.URI, d.Chunks)
		default:
			cmd.Printf("  FAIL  %s: %s\n", d.URI, d.Error)
		}
	}

	if report.Failed() > 0 {
		return fmt.Errorf("%d documents failed", report.Failed())
	}
	return nil
}
