// Package cli provides the slugline command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/sluglab/slugline/internal/adapters/driven/config/file"
	"github.com/sluglab/slugline/internal/adapters/driven/embedding"
	embedollama "github.com/sluglab/slugline/internal/adapters/driven/embedding/ollama"
	"github.com/sluglab/slugline/internal/adapters/driven/embedstore"
	llmollama "github.com/sluglab/slugline/internal/adapters/driven/llm/ollama"
	"github.com/sluglab/slugline/internal/adapters/driven/parser/jsonfile"
	"github.com/sluglab/slugline/internal/adapters/driven/state"
	"github.com/sluglab/slugline/internal/adapters/driven/storage/sqlite"
	"github.com/sluglab/slugline/internal/adapters/driven/vector"
	"github.com/sluglab/slugline/internal/core/ports/driven"
	"github.com/sluglab/slugline/internal/core/ports/driving"
	"github.com/sluglab/slugline/internal/core/services"
	"github.com/sluglab/slugline/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

// Wired services, populated by ensureServices on first use. The version
// and help commands run without touching storage.
var (
	appConfig      configfile.Config
	store          *sqlite.Store
	sceneStore     driven.SceneStore
	embedder       driven.EmbeddingService
	llmService     driven.LLMService
	indexerService driving.IndexerService
	searchService  driving.SearchService
	importService  driving.BulkImporter
)

var rootCmd = &cobra.Command{
	Use:   "slugline",
	Short: "Index and search screenplay content",
	Long: `slugline maintains a content-addressed index over screenplay scripts
and serves hybrid lexical/semantic search across scenes, dialogue and
characters. Re-indexing is incremental: only scenes whose content
actually changed are touched.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file path (default ~/.slugline/config.toml)")
}

// Execute runs the CLI and tears down wired services afterwards.
func Execute() error {
	defer teardown()
	return rootCmd.Execute()
}

// ensureServices loads configuration and wires storage and services.
// Idempotent; commands call it from their RunE.
func ensureServices() error {
	if store != nil {
		return nil
	}

	logger.SetVerbose(flagVerbose)

	configPath := flagConfig
	if configPath == "" {
		p, err := configfile.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}

	cfg, err := configfile.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg

	st, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	store = st
	sceneStore = st.SceneStore()
	logger.Debug("Index database: %s", st.Path())

	embedStore, err := embedstore.NewCached(st.EmbeddingStore(), cfg.Embedding.CacheSize)
	if err != nil {
		return fmt.Errorf("creating embedding cache: %w", err)
	}

	var vectorIndex driven.VectorIndex
	if cfg.Embedding.Enabled {
		embedder = embedding.NewResilient(
			embedollama.NewEmbeddingService(embedollama.Config{
				BaseURL: cfg.Embedding.BaseURL,
				Model:   cfg.Embedding.Model,
			}),
			embedding.ResilientConfig{RequestsPerSecond: cfg.Embedding.RequestsPerSecond},
		)
		vectorIndex = vector.NewIndex(embedStore, embedder.ModelName())
		logger.Debug("Embedding model: %s", embedder.ModelName())
	} else {
		logger.Debug("Embeddings disabled, running lexical-only")
	}

	if cfg.LLM.Enabled {
		llmService = llmollama.NewLLMService(llmollama.Config{
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
	}

	indexer := services.NewIndexer(sceneStore, embedStore, embedder)
	indexerService = indexer
	searchService = services.NewSearch(sceneStore, vectorIndex, embedder, nil, services.SearchConfig{
		DefaultLimit:          cfg.Search.DefaultLimit,
		SemanticTermThreshold: cfg.Search.SemanticTermThreshold,
		SemanticTopK:          20,
		SimilarityThreshold:   cfg.Search.SimilarityThreshold,
	})
	importService = services.NewImporter(jsonfile.NewParser(), sceneStore, state.NewFileStore(), indexer)

	return nil
}

// teardown closes wired services in reverse dependency order.
func teardown() {
	if embedder != nil {
		embedder.Close() //nolint:errcheck
	}
	if llmService != nil {
		llmService.Close() //nolint:errcheck
	}
	if store != nil {
		store.Close() //nolint:errcheck
	}
}
