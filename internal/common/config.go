package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "90s" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig holds record-store configuration. Driver selects the
// database/sql driver: "sqlite" (default) or "pgx".
type DatabaseConfig struct {
	Driver      string   `yaml:"driver"`
	DSN         string   `yaml:"dsn"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// LLMConfig holds text-generation service configuration.
type LLMConfig struct {
	BaseURL       string   `yaml:"base_url"`
	Model         string   `yaml:"model"`
	Timeout       Duration `yaml:"timeout"`
	MaxTokens     int      `yaml:"max_tokens"`
	Deterministic bool     `yaml:"deterministic"`
}

// EmbeddingConfig holds embedding service configuration.
type EmbeddingConfig struct {
	BaseURL    string   `yaml:"base_url"`
	Model      string   `yaml:"model"`
	Timeout    Duration `yaml:"timeout"`
	Dimensions int      `yaml:"dimensions"`
}

// CatalogConfig selects where catalog entries are loaded from.
// Source is "json" or "xlsx"; Path points at the file.
type CatalogConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// ExtractionConfig tunes the field-extraction coordinator.
type ExtractionConfig struct {
	ChunkSize      int     `yaml:"chunk_size"`
	Workers        int     `yaml:"workers"`
	FieldMaxTokens int     `yaml:"field_max_tokens"`
	ItemMaxTokens  int     `yaml:"item_max_tokens"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // <=0 disables the limiter
}

// DocumentsConfig points at the acquired-documents directory and the
// source tag attached to extracted work items.
type DocumentsConfig struct {
	Dir       string `yaml:"dir"`
	SourceTag string `yaml:"source_tag"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig builds configuration from defaults, an optional YAML file,
// and environment variables, in that order of increasing precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "file:rfp.db?_pragma=busy_timeout(5000)", DialTimeout: Duration(3 * time.Second)},
		LLM: LLMConfig{
			BaseURL:       "http://localhost:11434",
			Model:         "mistral:7b-instruct",
			Timeout:       Duration(60 * time.Second),
			MaxTokens:     512,
			Deterministic: true,
		},
		Embedding: EmbeddingConfig{
			BaseURL:    "http://localhost:11434",
			Model:      "all-minilm",
			Timeout:    Duration(30 * time.Second),
			Dimensions: 384,
		},
		Catalog: CatalogConfig{Source: "json", Path: "data/product_catalog.json"},
		Extraction: ExtractionConfig{
			ChunkSize:      3000,
			Workers:        3,
			FieldMaxTokens: 256,
			ItemMaxTokens:  700,
		},
		Documents: DocumentsConfig{Dir: "./documents"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_DSN", cfg.Database.DSN)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.Timeout = Duration(getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout.Std()))
	cfg.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", cfg.LLM.MaxTokens)
	cfg.Embedding.BaseURL = getEnv("EMBEDDING_BASE_URL", cfg.Embedding.BaseURL)
	cfg.Embedding.Model = getEnv("EMBEDDING_MODEL", cfg.Embedding.Model)
	cfg.Embedding.Timeout = Duration(getEnvAsDuration("EMBEDDING_TIMEOUT", cfg.Embedding.Timeout.Std()))
	cfg.Catalog.Source = getEnv("CATALOG_SOURCE", cfg.Catalog.Source)
	cfg.Catalog.Path = getEnv("CATALOG_PATH", cfg.Catalog.Path)
	cfg.Extraction.ChunkSize = getEnvAsInt("EXTRACTION_CHUNK_SIZE", cfg.Extraction.ChunkSize)
	cfg.Extraction.Workers = getEnvAsInt("EXTRACTION_WORKERS", cfg.Extraction.Workers)
	cfg.Documents.Dir = getEnv("DOCUMENTS_DIR", cfg.Documents.Dir)
	cfg.Documents.SourceTag = getEnv("DOCUMENTS_SOURCE_TAG", cfg.Documents.SourceTag)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "database DSN is required", ErrInvalidInput)
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "pgx" {
		return NewAppError("CONFIG_ERROR", "database driver must be sqlite or pgx", ErrInvalidInput)
	}
	if c.LLM.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "LLM base URL is required", ErrInvalidInput)
	}
	if c.Extraction.ChunkSize <= 0 {
		return NewAppError("CONFIG_ERROR", "extraction chunk size must be positive", ErrInvalidInput)
	}
	if c.Extraction.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "extraction workers must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
