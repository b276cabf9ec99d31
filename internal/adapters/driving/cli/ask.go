package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var (
	askTopK       int
	askProject    string
	askContractor string
	askJSON       bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the library",
	Long: `Embeds the question, retrieves the most similar chunks, and composes
a grounded answer. Generic questions fall back to a summary of what the
library contains.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 5, "number of chunks to retrieve")
	askCmd.Flags().StringVar(&askProject, "project", "", "prefer chunks from documents matching this project")
	askCmd.Flags().StringVar(&askContractor, "contractor", "", "prefer chunks from documents matching this contractor")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	answer, err := askService.Ask(ctx, args[0], domain.AskOptions{
		TopK:       askTopK,
		Project:    askProject,
		Contractor: askContractor,
	})
	if err != nil {
		return err
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Answer)
	if len(answer.Contexts) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, c := range answer.Contexts {
			cmd.Printf("  %s (%.2f)\n", c.FileName, c.Score)
		}
	}
	return nil
}
