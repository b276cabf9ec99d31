package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library as JSON",
	Long: `Writes every document with its chunk texts as JSON. Embeddings are
omitted so the export stays portable; import re-embeds when a provider
is configured.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	items, err := libService.Export(ctx)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling export: %w", err)
	}

	if exportOutput == "" {
		cmd.Println(string(data))
		return nil
	}

	if err := os.WriteFile(exportOutput, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	cmd.Printf("Exported %d document(s) to %s\n", len(items), exportOutput)
	return nil
}
