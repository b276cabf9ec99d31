// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/ai"
	configfile "github.com/arkive-labs/arkive-cli/internal/adapters/driven/config/file"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/storage/sqlite"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/core/services"
	"github.com/arkive-labs/arkive-cli/internal/extractors"
	"github.com/arkive-labs/arkive-cli/internal/extractors/pdf"
	"github.com/arkive-labs/arkive-cli/internal/extractors/plaintext"
	"github.com/arkive-labs/arkive-cli/internal/index/flat"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Global flags.
var (
	verbose bool
	dataDir string
)

// Wired services, available to every command after PersistentPreRunE.
var (
	store       *sqlite.Store
	configStore *configfile.ConfigStore
	scanService driving.ScanService
	askService  driving.AskService
	libService  driving.LibraryService
	closeOnErr  []func() error
)

var rootCmd = &cobra.Command{
	Use:   "arkive",
	Short: "Index and query a local document library",
	Long: `Arkive ingests local files into a searchable library: it walks
directories, describes and chunks each file, embeds the chunks, and
answers questions grounded in the most similar content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		// config must work even when a configured provider is
		// unreachable, so it wires its own store.
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "config" {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		shutdown()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		shutdown()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.arkive)")
}

// initServices builds the adapter stack and core services.
func initServices() error {
	baseDir, err := resolveBaseDir()
	if err != nil {
		return err
	}
	configStore, err = configfile.NewConfigStore(baseDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	store, err = sqlite.NewStore(filepath.Join(baseDir, "data"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	closeOnErr = append(closeOnErr, store.Close)

	prompts, err := configfile.NewPromptStore(filepath.Join(baseDir, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompt store: %w", err)
	}

	index, err := flat.New(filepath.Join(baseDir, "index"))
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	closeOnErr = append(closeOnErr, index.Close)

	llmSettings := loadLLMSettings()
	embedSettings := loadEmbeddingSettings()

	llm, err := ai.CreateAndValidateLLMService(llmSettings)
	if err != nil {
		return err
	}
	if llm != nil {
		closeOnErr = append(closeOnErr, llm.Close)
	}

	embed, err := ai.CreateAndValidateEmbeddingService(embedSettings)
	if err != nil {
		logger.Warn("Embeddings disabled: %v", err)
		embed = nil
	}
	if embed != nil {
		closeOnErr = append(closeOnErr, embed.Close)
	}

	registry := extractors.NewRegistry(
		plaintext.New(),
		pdf.New(),
	)
	gateway := services.NewEmbeddingGateway(embed)

	scanService = services.NewScanService(store, registry, llm, prompts, gateway, index, configStore)
	askService = services.NewAskService(store, gateway, index, llm, prompts, configStore)
	libService = services.NewLibraryService(store, gateway, index)
	return nil
}

// resolveBaseDir returns the state directory, honouring --data-dir.
func resolveBaseDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".arkive"), nil
}

// loadLLMSettings reads the AI provider configuration, letting the
// OPENAI_API_KEY environment variable stand in for a stored key.
func loadLLMSettings() *domain.LLMSettings {
	provider := configStore.GetString("ai.provider")
	apiKey := configStore.GetString("ai.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if provider == "" && apiKey != "" {
		provider = domain.AIProviderOpenAI
	}

	return &domain.LLMSettings{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  configStore.GetString("ai.base_url"),
		Model:    configStore.GetString("ai.model"),
	}
}

// loadEmbeddingSettings mirrors loadLLMSettings for the embedding model.
func loadEmbeddingSettings() *domain.EmbeddingSettings {
	llm := loadLLMSettings()
	return &domain.EmbeddingSettings{
		Provider: llm.Provider,
		APIKey:   llm.APIKey,
		BaseURL:  llm.BaseURL,
		Model:    configStore.GetString("ai.embedding_model"),
	}
}

// shutdown closes wired resources in reverse order.
func shutdown() {
	for i := len(closeOnErr) - 1; i >= 0; i-- {
		if err := closeOnErr[i](); err != nil {
			logger.Debug("Close failed: %v", err)
		}
	}
	closeOnErr = nil
}
