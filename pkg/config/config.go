// Package config loads the knowledge base server's configuration from a
// YAML file, environment variables, and defaults, using viper the same way
// the teacher project does.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	RestAPI    RestAPIConfig    `mapstructure:"rest_api"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	MCP        MCPConfig        `mapstructure:"mcp"`
}

// DatabaseConfig holds storage engine configuration.
type DatabaseConfig struct {
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RestAPIConfig holds the optional REST boundary's configuration.
type RestAPIConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	CORS         bool     `mapstructure:"cors"`
	APIKey       string   `mapstructure:"api_key"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RetrievalConfig holds Search & Ranking defaults (spec §4.7, §5).
type RetrievalConfig struct {
	EmbeddingDimension int           `mapstructure:"embedding_dimension"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	DefaultHybridWeights HybridWeights `mapstructure:"default_hybrid_weights"`
}

// HybridWeights are the default per-strategy weights for hybrid related-item
// scoring (spec §4.7.3).
type HybridWeights struct {
	Keywords  float64 `mapstructure:"keywords"`
	Concepts  float64 `mapstructure:"concepts"`
	Embedding float64 `mapstructure:"embedding"`
}

// EnrichmentConfig holds the Write Pipeline's enrichment capability
// configuration (spec §4.8 step 4, §5 timeouts).
type EnrichmentConfig struct {
	Provider       string        `mapstructure:"provider"` // "noop" or "ollama"
	Timeout        time.Duration `mapstructure:"timeout"`
	OllamaBaseURL  string        `mapstructure:"ollama_base_url"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	ChatModel      string        `mapstructure:"chat_model"`
}

// RateLimitConfig configures the tool-call boundary's token-bucket limiter.
// Disabled by default; a deployment serving untrusted clients opts in.
type RateLimitConfig struct {
	Enabled           bool             `mapstructure:"enabled"`
	RequestsPerSecond float64          `mapstructure:"requests_per_second"`
	BurstSize         float64          `mapstructure:"burst_size"`
	Tools             []ToolRateLimit  `mapstructure:"tools"`
}

// ToolRateLimit overrides the global rate for one named tool.
type ToolRateLimit struct {
	Name              string  `mapstructure:"name"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         float64 `mapstructure:"burst_size"`
}

// MCPConfig holds the stdio JSON-RPC server's own settings.
type MCPConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// DefaultConfig returns configuration with the spec's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        defaultDatabasePath(),
			AutoMigrate: true,
		},
		RestAPI: RestAPIConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    3002,
			CORS:    true,
			APIKey:  "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Retrieval: RetrievalConfig{
			EmbeddingDimension: 128,
			ReadTimeout:        10 * time.Second,
			DefaultHybridWeights: HybridWeights{
				Keywords:  0.3,
				Concepts:  0.1,
				Embedding: 0.6,
			},
		},
		Enrichment: EnrichmentConfig{
			Provider:       "noop",
			Timeout:        30 * time.Second,
			OllamaBaseURL:  "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			ChatModel:      "qwen2.5:3b",
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
		MCP: MCPConfig{
			ServerName:    "shirokuma-kb",
			ServerVersion: "0.1.0",
		},
	}
}

func defaultDatabasePath() string {
	if p := os.Getenv("MCP_DATABASE_PATH"); p != "" {
		return p
	}
	return filepath.Join(".shirokuma", "data")
}

// Load reads configuration from (in order of increasing precedence) the
// built-in defaults, an optional config file, and environment variables.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.shirokuma")
	}

	v.SetEnvPrefix("KB")
	v.AutomaticEnv()

	bindDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if envPath := os.Getenv("MCP_DATABASE_PATH"); envPath != "" {
		cfg.Database.Path = envPath
	}

	return cfg, nil
}

// bindDefaults seeds viper with the zero-config defaults so that Unmarshal
// falls back to them when a key is absent from both the file and the
// environment.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.auto_migrate", cfg.Database.AutoMigrate)
	v.SetDefault("rest_api.enabled", cfg.RestAPI.Enabled)
	v.SetDefault("rest_api.host", cfg.RestAPI.Host)
	v.SetDefault("rest_api.port", cfg.RestAPI.Port)
	v.SetDefault("rest_api.cors", cfg.RestAPI.CORS)
	v.SetDefault("rest_api.api_key", cfg.RestAPI.APIKey)
	v.SetDefault("rest_api.allow_origins", cfg.RestAPI.AllowOrigins)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("retrieval.embedding_dimension", cfg.Retrieval.EmbeddingDimension)
	v.SetDefault("retrieval.read_timeout", cfg.Retrieval.ReadTimeout)
	v.SetDefault("retrieval.default_hybrid_weights.keywords", cfg.Retrieval.DefaultHybridWeights.Keywords)
	v.SetDefault("retrieval.default_hybrid_weights.concepts", cfg.Retrieval.DefaultHybridWeights.Concepts)
	v.SetDefault("retrieval.default_hybrid_weights.embedding", cfg.Retrieval.DefaultHybridWeights.Embedding)
	v.SetDefault("enrichment.provider", cfg.Enrichment.Provider)
	v.SetDefault("enrichment.timeout", cfg.Enrichment.Timeout)
	v.SetDefault("enrichment.ollama_base_url", cfg.Enrichment.OllamaBaseURL)
	v.SetDefault("enrichment.embedding_model", cfg.Enrichment.EmbeddingModel)
	v.SetDefault("enrichment.chat_model", cfg.Enrichment.ChatModel)
	v.SetDefault("rate_limit.enabled", cfg.RateLimit.Enabled)
	v.SetDefault("rate_limit.requests_per_second", cfg.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst_size", cfg.RateLimit.BurstSize)
	v.SetDefault("mcp.server_name", cfg.MCP.ServerName)
	v.SetDefault("mcp.server_version", cfg.MCP.ServerVersion)
}
