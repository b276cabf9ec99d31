package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var openCmd = &cobra.Command{
	Use:   "open [document-id]",
	Short: "Open a document with the default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := libService.Open(ctx, args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no document with ID %q (try 'arkive list')", args[0])
		}
		return err
	}
	return nil
}
