// Package file loads and persists the application configuration as a
// TOML file. Configuration is typed: unknown keys are ignored on load
// and every field has a working default, so a missing or partial file
// is never an error.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where the SQLite index lives. Empty means the default
	// under the user's home directory.
	DataDir string `toml:"data_dir"`

	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Search    SearchConfig    `toml:"search"`
	Import    ImportConfig    `toml:"import"`
}

// LLMConfig configures the optional completion model used for character
// profile generation.
type LLMConfig struct {
	// Enabled turns profile generation on.
	Enabled bool `toml:"enabled"`

	// BaseURL is the Ollama API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the completion model name.
	Model string `toml:"model"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	// Enabled turns semantic indexing and search on. When false the
	// system runs lexical-only.
	Enabled bool `toml:"enabled"`

	// BaseURL is the Ollama API base URL.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// RequestsPerSecond throttles embedding calls during imports.
	RequestsPerSecond float64 `toml:"requests_per_second"`

	// CacheSize bounds the in-process vector cache.
	CacheSize int `toml:"cache_size"`
}

// SearchConfig configures search behaviour.
type SearchConfig struct {
	// DefaultLimit is the page size when the query does not set one.
	DefaultLimit int `toml:"default_limit"`

	// SemanticTermThreshold is the free-text term count at or above
	// which semantic search joins the lexical pass.
	SemanticTermThreshold int `toml:"semantic_term_threshold"`

	// SimilarityThreshold is the minimum cosine similarity for a
	// semantic hit.
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// ImportConfig configures bulk import defaults.
type ImportConfig struct {
	// BatchSize is the number of files per transaction.
	BatchSize int `toml:"batch_size"`

	// StateFile is where import progress is persisted. Empty means
	// alongside the data directory.
	StateFile string `toml:"state_file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Enabled:           true,
			BaseURL:           "http://localhost:11434",
			Model:             "nomic-embed-text",
			RequestsPerSecond: 10,
			CacheSize:         4096,
		},
		LLM: LLMConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.2",
		},
		Search: SearchConfig{
			DefaultLimit:          20,
			SemanticTermThreshold: 3,
			SimilarityThreshold:   0.35,
		},
		Import: ImportConfig{
			BatchSize: 10,
		},
	}
}

// DefaultPath returns ~/.slugline/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".slugline", "config.toml"), nil
}

// Load reads the configuration at path, layering the file's values over
// the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path with restricted permissions.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
