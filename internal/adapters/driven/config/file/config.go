// Package file provides file-based configuration and prompt storage.
// Configuration lives in a TOML file within the askdoc config directory;
// prompts are user-editable text files beside it.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigDirName is the directory under $HOME holding config,
// prompts and data.
const DefaultConfigDirName = ".askdoc"

// Config is the application configuration, persisted as TOML.
type Config struct {
	// DataFolder is where documents are loaded from and uploads are saved.
	DataFolder string `toml:"data_folder"`

	// Chunking controls the text splitter.
	Chunking ChunkingConfig `toml:"chunking"`

	// LLM selects and configures the generation service.
	LLM LLMConfig `toml:"llm"`

	// Embedding selects and configures the embedding service.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Server configures the HTTP API.
	Server ServerConfig `toml:"server"`
}

// ChunkingConfig controls the window splitter.
type ChunkingConfig struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// LLMConfig selects the generation backend.
type LLMConfig struct {
	// Provider is one of "anthropic", "openai", "ollama".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "openai".
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// ServerConfig configures the HTTP API listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		DataFolder: "data",
		Chunking:   ChunkingConfig{Size: 300, Overlap: 100},
		LLM:        LLMConfig{Provider: "anthropic"},
		Embedding:  EmbeddingConfig{Provider: "ollama"},
		Server:     ServerConfig{Addr: ":8000"},
	}
}

// ConfigDir resolves the config directory, defaulting to ~/.askdoc.
func ConfigDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDirName), nil
}

// LoadConfig reads config.toml from the given directory, filling any
// missing fields with defaults. A missing file is not an error: the
// defaults are returned so first runs need no setup.
func LoadConfig(configDir string) (Config, error) {
	cfg := DefaultConfig()

	dir, err := ConfigDir(configDir)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Chunking.Size <= 0 {
		cfg.Chunking.Size = 300
	}
	if cfg.Chunking.Overlap < 0 {
		cfg.Chunking.Overlap = 100
	}

	return cfg, nil
}

// SaveConfig writes the configuration to config.toml in the given
// directory, creating the directory if needed.
func SaveConfig(configDir string, cfg Config) error {
	dir, err := ConfigDir(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.toml"), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
