// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// File names under the data directory.
const (
	DBFile     = "corpus.db"
	IndexDir   = "index"
	IndexFile  = "vectors.gob"
	ReportFile = "build_report.json"
)

// Config holds the arxsearch configuration.
type Config struct {
	DataDir   string          `yaml:"data_dir"`
	Crawler   CrawlerConfig   `yaml:"crawler"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CrawlerConfig holds arXiv crawling settings.
type CrawlerConfig struct {
	Query      string `yaml:"query"`        // arXiv search query, e.g. "cat:cs.LG"
	MaxRecords int    `yaml:"max_records"`  // Upper bound on records per ingest run
	PageSize   int    `yaml:"page_size"`    // Entries requested per API page
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // ollama (default) or openai
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"` // openai only; supports ${VAR} expansion
	Workers    int    `yaml:"workers"` // Embedding concurrency during builds
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	Overfetch int `yaml:"overfetch"` // Over-fetch factor applied to k
	DefaultK  int `yaml:"default_k"`
}

// HTTPConfig holds the serve command's settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console (default) or json
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// Load reads configuration from a YAML file, substituting ${VAR} references
// from the environment. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	data = expandEnvVars(data)

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{DataDir: "data"}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Crawler.Query == "" {
		c.Crawler.Query = "cat:cs.LG"
	}
	if c.Crawler.MaxRecords == 0 {
		c.Crawler.MaxRecords = 500
	}
	if c.Crawler.PageSize == 0 {
		c.Crawler.PageSize = 100
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = 384
	}
	if c.Embedding.Workers == 0 {
		c.Embedding.Workers = 4
	}
	if c.Retrieval.Overfetch == 0 {
		c.Retrieval.Overfetch = 5
	}
	if c.Retrieval.DefaultK == 0 {
		c.Retrieval.DefaultK = 10
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec == 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec == 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec == 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate rejects configurations the rest of the system cannot honor.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("unknown embedding provider: %q", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Retrieval.Overfetch < 1 {
		return fmt.Errorf("overfetch factor must be at least 1, got %d", c.Retrieval.Overfetch)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTP.Port)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.Logging.Level)
	}
	return nil
}

// DBPath returns the SQLite database path under the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, DBFile)
}

// IndexPath returns the vector index file path.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, IndexDir, IndexFile)
}

// ReportPath returns the build report path, next to the index.
func (c *Config) ReportPath() string {
	return filepath.Join(c.DataDir, IndexDir, ReportFile)
}

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
