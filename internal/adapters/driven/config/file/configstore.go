package file

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// Environment variables that override file-based secrets. Secrets are
// never required to live in the config file.
const (
	EnvOpenAIKey         = "OPENAI_API_KEY"
	EnvGroqKey           = "GROQ_API_KEY"
	EnvGoogleCredentials = "GOOGLE_CREDENTIALS_JSON"
)

// Config is the full application configuration, loaded from a TOML
// file once at startup.
type Config struct {
	Server    ServerConfig   `toml:"server"`
	Pipeline  PipelineConfig `toml:"pipeline"`
	Embedding ProviderConfig `toml:"embedding"`
	LLM       ProviderConfig `toml:"llm"`
	Sheets    SheetsConfig   `toml:"sheets"`
	Snapshot  SnapshotConfig `toml:"snapshot"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// PipelineConfig holds the retrieval pipeline parameters. Zero values
// fall back to the domain defaults.
type PipelineConfig struct {
	ChunkSize        int     `toml:"chunk_size"`
	ChunkOverlap     int     `toml:"chunk_overlap"`
	TopK             int     `toml:"top_k"`
	ScoreThreshold   float64 `toml:"score_threshold"`
	MaxContextChars  int     `toml:"max_context_chars"`
	EmbedBatchSize   int     `toml:"embed_batch_size"`
	MaxRetries       int     `toml:"max_retries"`
	RetryBaseDelayMS int     `toml:"retry_base_delay_ms"`
}

// ProviderConfig configures an external model endpoint.
type ProviderConfig struct {
	// Provider selects the adapter: "openai" or "ollama" for
	// embeddings, "openai" or "groq" for generation.
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

// SheetsConfig configures the spreadsheet usage log. Empty
// SpreadsheetID disables it.
type SheetsConfig struct {
	SpreadsheetID   string `toml:"spreadsheet_id"`
	CredentialsFile string `toml:"credentials_file"`
	Range           string `toml:"range"`
}

// SnapshotConfig configures index persistence and bootstrap.
type SnapshotConfig struct {
	// Path is where `ingest --snapshot` persists the index and where
	// `serve` looks for a local snapshot at startup.
	Path string `toml:"path"`

	// BootstrapURI is a remote prebuilt snapshot, optionally with a
	// "#sha256=..." fragment for verification.
	BootstrapURI string `toml:"bootstrap_uri"`

	// DataDir is where downloaded snapshots are stored.
	DataDir string `toml:"data_dir"`
}

// DefaultConfig returns a config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Server:    ServerConfig{Listen: ":8080"},
		Pipeline:  PipelineConfig{},
		Embedding: ProviderConfig{Provider: "openai"},
		LLM:       ProviderConfig{Provider: "openai"},
	}
}

// LoadConfig reads the TOML file at path and applies env-var
// overrides. A missing file is not an error: defaults plus environment
// are enough for a minimal setup.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fine, run on defaults.
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides secrets from the environment. Environment always
// wins over the file so deployments can keep keys out of it entirely.
func (c *Config) applyEnv() {
	if key := os.Getenv(EnvOpenAIKey); key != "" {
		if c.Embedding.Provider == "openai" {
			c.Embedding.APIKey = key
		}
		if c.LLM.Provider == "openai" {
			c.LLM.APIKey = key
		}
	}
	if key := os.Getenv(EnvGroqKey); key != "" && c.LLM.Provider == "groq" {
		c.LLM.APIKey = key
	}
}

// GoogleCredentials returns the service account key for the Sheets
// logger, preferring the environment over the credentials file.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if creds := os.Getenv(EnvGoogleCredentials); creds != "" {
		return []byte(creds), nil
	}
	if c.Sheets.CredentialsFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", c.Sheets.CredentialsFile, err)
	}
	return data, nil
}

// Settings converts the pipeline section into validated domain
// settings. Unset fields take the domain defaults; violations are
// rejected with ErrInvalidConfig.
func (c *Config) Settings() (domain.Settings, error) {
	s := domain.DefaultSettings()

	p := c.Pipeline
	if p.ChunkSize > 0 {
		s.ChunkSize = p.ChunkSize
	}
	if p.ChunkOverlap > 0 {
		s.ChunkOverlap = p.ChunkOverlap
	}
	if p.TopK > 0 {
		s.TopK = p.TopK
	}
	if p.ScoreThreshold != 0 {
		s.ScoreThreshold = p.ScoreThreshold
	}
	if p.MaxContextChars > 0 {
		s.MaxContextChars = p.MaxContextChars
	}
	if p.EmbedBatchSize > 0 {
		s.EmbedBatchSize = p.EmbedBatchSize
	}
	if p.MaxRetries > 0 {
		s.MaxRetries = p.MaxRetries
	}
	if p.RetryBaseDelayMS > 0 {
		s.RetryBaseDelay = time.Duration(p.RetryBaseDelayMS) * time.Millisecond
	}

	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}
