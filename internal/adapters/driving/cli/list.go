package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listQuery string
	listLimit int
	listJSON  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "filter by name, description, project, or contractor")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of documents (0 = all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output documents as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := libService.List(ctx, listQuery, listLimit)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if listJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'arkive scan <directory>' first.")
		return nil
	}

	for _, d := range docs {
		cmd.Printf("%s  %s\n", d.ID, d.Name)
		if d.Project != "" || d.Contractor != "" {
			cmd.Printf("    project: %s  contractor: %s\n", d.Project, d.Contractor)
		}
		if d.Description != "" {
			cmd.Printf("    %s\n", d.Description)
		}
	}
	cmd.Printf("\n%d document(s)\n", len(docs))
	return nil
}
