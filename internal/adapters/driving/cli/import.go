package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import documents from a JSON export",
	Long: `Reads a JSON export and merges it into the library. Documents are
matched by path, so importing the same file twice updates in place.
Chunks are re-embedded when an embedding provider is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var items []domain.ExportDocument
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	result, err := libService.Import(ctx, items)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d document(s) (%d created, %d updated), %d chunks",
		result.Created+result.Updated, result.Created, result.Updated, result.ChunksWritten)
	if result.ChunksEmbedded > 0 {
		cmd.Printf(", %d embedded", result.ChunksEmbedded)
	}
	cmd.Println()
	return nil
}
