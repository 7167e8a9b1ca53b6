package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Index      IndexConfig      `yaml:"index,omitempty"`
	Store      StoreConfig      `yaml:"store,omitempty"`
	Search     SearchConfig     `yaml:"search,omitempty"`
	Synthesis  SynthesisConfig  `yaml:"synthesis,omitempty"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "openai" | "ollama"

	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`

	Dimensions int `yaml:"dimensions"` // fixed output dimension per model
	BatchSize  int `yaml:"batch_size"` // provider-imposed batch ceiling
}

// CompletionConfig holds chat-completion provider configuration
type CompletionConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// IndexConfig holds embedding-index configuration
type IndexConfig struct {
	// Path to the index directory holding index.vec and metadata.json.
	// If empty, uses ~/.insightdex/data/index
	Path string `yaml:"path,omitempty"`

	FanOut        int     `yaml:"fan_out,omitempty"`        // candidate multiplier for dedupe
	Temperature   float64 `yaml:"temperature,omitempty"`    // sigmoid distance divisor
	MinSimilarity float64 `yaml:"min_similarity,omitempty"` // similarity floor
}

// StoreConfig holds the processed-interview store configuration
type StoreConfig struct {
	// Path to the directory of per-interview JSON documents.
	// If empty, uses ~/.insightdex/data/interviews
	Path string `yaml:"path,omitempty"`

	Exclude []string `yaml:"exclude,omitempty"` // glob patterns skipped when scanning

	// EmotionScaleMax is the divisor applied to raw emotion intensities
	// above 1.0 (legacy annotators wrote 0-3 scales; some wrote 0-5).
	EmotionScaleMax float64 `yaml:"emotion_scale_max,omitempty"`

	SynonymsFile string `yaml:"synonyms_file,omitempty"` // optional emotion synonym groups
}

// SearchConfig holds search-specific configuration
type SearchConfig struct {
	DefaultLimit      int     `yaml:"default_limit,omitempty"`
	SemanticThreshold float64 `yaml:"semantic_threshold,omitempty"` // noise floor for brute-force mode
}

// SynthesisConfig holds the summarization pipeline configuration
type SynthesisConfig struct {
	SummaryModel          string `yaml:"summary_model,omitempty"`
	SummaryMaxInputTokens int    `yaml:"summary_max_input_tokens,omitempty"`
	SummaryOutputTokens   int    `yaml:"summary_output_tokens,omitempty"`

	SynthesisModel          string `yaml:"synthesis_model,omitempty"`
	SynthesisMaxInputTokens int    `yaml:"synthesis_max_input_tokens,omitempty"`
	SynthesisOutputTokens   int    `yaml:"synthesis_output_tokens,omitempty"`

	FinalModel        string `yaml:"final_model,omitempty"`
	FinalContextLimit int    `yaml:"final_context_limit,omitempty"`
	FinalSafetyMargin int    `yaml:"final_safety_margin,omitempty"`
	FinalOutputCap    int    `yaml:"final_output_cap,omitempty"`
	FinalMinOutput    int    `yaml:"final_min_output,omitempty"`
}

// Load loads configuration from the default config file
// Default location: ~/.insightdex/config/insightdex.yaml
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".insightdex", "config", "insightdex.yaml")
	return LoadFromFile(configPath)
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			homeDir, _ := os.UserHomeDir()
			defaultPath := filepath.Join(homeDir, ".insightdex", "config", "insightdex.yaml")
			return nil, &ConfigNotFoundError{
				RequestedPath: path,
				DefaultPath:   defaultPath,
			}
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ConfigNotFoundError is returned when config file is not found
type ConfigNotFoundError struct {
	RequestedPath string
	DefaultPath   string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found at: %s\n\nDefault location: %s\n\nYou can:\n"+
		"  1. Create the config file at the default location\n"+
		"  2. Specify a custom path with -config flag\n"+
		"  3. Run 'insightdex init' to create a starter config file",
		e.RequestedPath, e.DefaultPath)
}

// IsConfigNotFound checks if error is config not found
func IsConfigNotFound(err error) bool {
	_, ok := err.(*ConfigNotFoundError)
	return ok
}

// expandPath expands ~ and $HOME to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "$HOME/") || path == "$HOME" {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			var err error
			homeDir, err = os.UserHomeDir()
			if err != nil {
				return path
			}
		}
		if path == "$HOME" {
			return homeDir
		}
		return filepath.Join(homeDir, path[6:])
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return homeDir
		}
		return filepath.Join(homeDir, path[2:])
	}

	return path
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.Model == "" {
		switch c.Embedding.Provider {
		case "ollama":
			c.Embedding.Model = "nomic-embed-text"
		default:
			c.Embedding.Model = "text-embedding-3-small"
		}
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 1536
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 100
	}
	if c.Embedding.APIKey == "" {
		c.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if c.Completion.APIKey == "" {
		c.Completion.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	homeDir, _ := os.UserHomeDir()
	if c.Index.Path == "" {
		c.Index.Path = filepath.Join(homeDir, ".insightdex", "data", "index")
	} else {
		c.Index.Path = expandPath(c.Index.Path)
	}
	if c.Index.FanOut == 0 {
		c.Index.FanOut = 10
	}
	if c.Index.Temperature == 0 {
		c.Index.Temperature = 15
	}
	if c.Index.MinSimilarity == 0 {
		c.Index.MinSimilarity = 0.05
	}

	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(homeDir, ".insightdex", "data", "interviews")
	} else {
		c.Store.Path = expandPath(c.Store.Path)
	}
	if c.Store.EmotionScaleMax == 0 {
		c.Store.EmotionScaleMax = 3
	}
	if c.Store.SynonymsFile != "" {
		c.Store.SynonymsFile = expandPath(c.Store.SynonymsFile)
	}

	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.SemanticThreshold == 0 {
		c.Search.SemanticThreshold = 0.3
	}

	if c.Synthesis.SummaryModel == "" {
		c.Synthesis.SummaryModel = "gpt-3.5-turbo"
	}
	if c.Synthesis.SummaryMaxInputTokens == 0 {
		c.Synthesis.SummaryMaxInputTokens = 15000
	}
	if c.Synthesis.SummaryOutputTokens == 0 {
		c.Synthesis.SummaryOutputTokens = 300
	}
	if c.Synthesis.SynthesisModel == "" {
		c.Synthesis.SynthesisModel = "gpt-4"
	}
	if c.Synthesis.SynthesisMaxInputTokens == 0 {
		c.Synthesis.SynthesisMaxInputTokens = 8000
	}
	if c.Synthesis.SynthesisOutputTokens == 0 {
		c.Synthesis.SynthesisOutputTokens = 500
	}
	if c.Synthesis.FinalModel == "" {
		c.Synthesis.FinalModel = "gpt-4-turbo"
	}
	if c.Synthesis.FinalContextLimit == 0 {
		c.Synthesis.FinalContextLimit = 128000
	}
	if c.Synthesis.FinalSafetyMargin == 0 {
		c.Synthesis.FinalSafetyMargin = 100
	}
	if c.Synthesis.FinalOutputCap == 0 {
		c.Synthesis.FinalOutputCap = 4000
	}
	if c.Synthesis.FinalMinOutput == 0 {
		c.Synthesis.FinalMinOutput = 500
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("openai embedding provider requires api_key (or OPENAI_API_KEY)")
		}
	case "ollama":
		// local provider, no key required
	default:
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got: %d", c.Embedding.Dimensions)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got: %d", c.Embedding.BatchSize)
	}
	if c.Index.FanOut <= 0 {
		return fmt.Errorf("fan_out must be positive, got: %d", c.Index.FanOut)
	}
	if c.Store.EmotionScaleMax < 1 {
		return fmt.Errorf("emotion_scale_max must be >= 1, got: %g", c.Store.EmotionScaleMax)
	}

	return nil
}

// SaveToFile saves the configuration to a specific file
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

const defaultConfigTemplate = `# InsightDex Configuration
#
# Copy and edit this file for your environment.
# Default location: $HOME/.insightdex/config/insightdex.yaml

embedding:
  # Provider: "openai" or "ollama"
  provider: openai
  api_key: your-openai-api-key
  model: text-embedding-3-small
  dimensions: 1536
  batch_size: 100

  # Ollama configuration (alternative, local)
  # provider: ollama
  # base_url: http://localhost:11434
  # model: nomic-embed-text
  # dimensions: 768
  # batch_size: 1

completion:
  api_key: your-openai-api-key

store:
  # Raw emotion intensities above 1.0 are divided by this scale.
  emotion_scale_max: 3
  # synonyms_file: emotion_groups.yaml

synthesis:
  summary_model: gpt-3.5-turbo
  synthesis_model: gpt-4
  final_model: gpt-4-turbo
`

// WriteDefaultTemplate creates a default configuration file if it does not exist.
// It returns true if a file was created, false if it already existed.
func WriteDefaultTemplate(path string) (bool, error) {
	if path == "" {
		return false, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config template: %w", err)
	}

	return true, nil
}
