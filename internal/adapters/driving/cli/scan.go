package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/logger"
	"github.com/arkive-labs/arkive-cli/internal/watcher"
)

var (
	scanContractor string
	scanProject    string
	scanMode       string
	scanCutoff     string
	scanWatch      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [directory]",
	Short: "Ingest a directory tree into the library",
	Long: `Walks the directory, extracts and chunks file content, generates
descriptions and embeddings, and stores everything in the library.
Re-scanning updates existing entries in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanContractor, "contractor", "", "contractor tag applied to every file")
	scanCmd.Flags().StringVar(&scanProject, "project", "", "project tag applied to every file")
	scanCmd.Flags().StringVar(&scanMode, "mode", "concise", "description style: concise, detailed, or creative")
	scanCmd.Flags().StringVar(&scanCutoff, "cutoff", "", "skip files modified before this RFC 3339 timestamp")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "keep running and rescan on filesystem changes")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	opts := domain.ScanOptions{
		Root:       args[0],
		Contractor: scanContractor,
		Project:    scanProject,
		Mode:       domain.ParseDescribeMode(scanMode),
	}

	if scanCutoff != "" {
		cutoff, err := time.Parse(time.RFC3339, scanCutoff)
		if err != nil {
			return fmt.Errorf("invalid --cutoff value %q: %w", scanCutoff, err)
		}
		opts.Cutoff = &cutoff
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := scanOnce(ctx, cmd, opts); err != nil {
		return err
	}

	if !scanWatch {
		return nil
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	w := watcher.New(opts.Root, func(ctx context.Context) {
		if err := scanOnce(ctx, cmd, opts); err != nil {
			logger.Warn("Rescan failed: %v", err)
		}
	})
	err := w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func scanOnce(ctx context.Context, cmd *cobra.Command, opts domain.ScanOptions) error {
	result, err := scanService.Scan(ctx, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	cmd.Printf("Processed %d files (%d created, %d updated), %d chunks\n",
		result.Processed, result.Created, result.Updated, result.ChunksAdded)
	return nil
}
