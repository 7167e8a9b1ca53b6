package internal

import (
	"fmt"
	"os"

	"github.com/kb2232/insightdex/internal/config"
)

// LoadConfig reads the YAML config from an explicit path or the default
// location.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample writes a YAML config example to stderr.
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.insightdex/config/insightdex.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

# Embedding service configuration (required)
embedding:
  # Provider: "openai" | "ollama"
  provider: openai
  api_key: your-openai-api-key
  model: text-embedding-3-small
  dimensions: 1536
  batch_size: 100

# Completion service configuration (required for synthesize)
completion:
  api_key: your-openai-api-key

# For a local Ollama embedder, use:
# embedding:
#   provider: ollama
#   base_url: http://localhost:11434
#   model: nomic-embed-text
#   dimensions: 768

Usage:
  1. Create the config file (or run: insightdex init)
  2. Ingest a transcript: insightdex ingest transcript.txt
  3. Search: insightdex search "your query"
`, configPath)
}
