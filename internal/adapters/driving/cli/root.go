// Package cli implements the askdoc command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdoc/internal/adapters/driven/config/file"
	embollama "github.com/custodia-labs/askdoc/internal/adapters/driven/embedding/ollama"
	embopenai "github.com/custodia-labs/askdoc/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/askdoc/internal/adapters/driven/llm/anthropic"
	llmollama "github.com/custodia-labs/askdoc/internal/adapters/driven/llm/ollama"
	llmopenai "github.com/custodia-labs/askdoc/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/askdoc/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/askdoc/internal/core/ports/driven"
	"github.com/custodia-labs/askdoc/internal/core/ports/driving"
	"github.com/custodia-labs/askdoc/internal/core/services"
	"github.com/custodia-labs/askdoc/internal/loader"
	"github.com/custodia-labs/askdoc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
	flagDataDir   string
)

// Shared service handles, built once by initServices.
var (
	appConfig   file.Config
	engine      driving.EngineService
	docLoader   *loader.Loader
	promptStore *file.PromptStore
)

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your documents",
	Long: `Askdoc indexes text documents from a local folder and answers
questions about them using retrieval-augmented generation.

Documents are split into overlapping chunks, embedded, and stored in a
local vector index. Questions retrieve the most relevant chunks and
feed them to an LLM as context.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.askdoc)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "document folder (default <config-dir>/data)")
}

// Execute runs the root command.
func Execute() error {
	defer shutdownServices()
	return rootCmd.Execute()
}

// initServices wires the engine from configuration. Commands that need
// the pipeline call this from their RunE; commands like version skip it
// so they work without any backend configured.
func initServices() error {
	if engine != nil {
		return nil
	}

	configDir, err := file.ConfigDir(flagConfigDir)
	if err != nil {
		return err
	}

	appConfig, err = file.LoadConfig(configDir)
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(appConfig.Embedding)
	if err != nil {
		return err
	}

	index, err := sqlite.NewIndex(filepath.Join(configDir, "index"), embedder)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}

	llm, err := buildLLM(appConfig.LLM)
	if err != nil {
		index.Close()
		return err
	}

	promptStore, err = file.NewPromptStore("")
	if err != nil {
		index.Close()
		llm.Close()
		return err
	}

	engine, err = services.NewEngine(index, llm,
		services.WithChunking(appConfig.Chunking.Size, appConfig.Chunking.Overlap),
		services.WithPromptStore(promptStore),
	)
	if err != nil {
		index.Close()
		llm.Close()
		return fmt.Errorf("building engine: %w", err)
	}

	docLoader, err = loader.New(engine, dataFolder(configDir))
	if err != nil {
		return err
	}

	logger.Debug("Services ready (llm=%s, embedding=%s)",
		appConfig.LLM.Provider, appConfig.Embedding.Provider)
	return nil
}

func shutdownServices() {
	if docLoader != nil {
		docLoader.Close()
	}
	if closer, ok := engine.(interface{ Close() error }); ok && closer != nil {
		closer.Close()
	}
}

// dataFolder resolves the document folder: the --data-dir flag wins,
// then the configured folder, relative paths resolved under configDir.
func dataFolder(configDir string) string {
	if flagDataDir != "" {
		return flagDataDir
	}
	folder := appConfig.DataFolder
	if folder == "" {
		folder = "data"
	}
	if !filepath.IsAbs(folder) {
		folder = filepath.Join(configDir, folder)
	}
	return folder
}

func buildLLM(cfg file.LLMConfig) (driven.LLMService, error) {
	switch cfg.Provider {
	case "", "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, errors.New("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.NewLLMService(anthropic.Config{
			APIKey:  key,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "openai":
		return llmopenai.NewLLMService(llmopenai.LLMConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	case "ollama":
		return llmollama.NewLLMService(llmollama.LLMConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}

func buildEmbedder(cfg file.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "", "ollama":
		return embollama.NewEmbeddingService(embollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		}), nil
	case "openai":
		return embopenai.NewEmbeddingService(embopenai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}
