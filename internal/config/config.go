package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Catalog   CatalogConfig   `yaml:"catalog" envPrefix:"CATALOG_"`
	LLM       LLMConfig       `yaml:"llm" envPrefix:"LLM_"`
	Ingest    IngestConfig    `yaml:"ingest" envPrefix:"INGEST_"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envPrefix:"RATE_LIMIT_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

type CatalogConfig struct {
	// Dir holds agents.yaml, rules.yaml, mcps.yaml and packs.yaml.
	Dir   string `yaml:"dir" env:"DIR"`
	Watch bool   `yaml:"watch" env:"WATCH"`
	// ReloadSchedule is a cron spec ("@every 10m"); empty disables scheduled reloads.
	ReloadSchedule string `yaml:"reload_schedule" env:"RELOAD_SCHEDULE"`
	// SeedDefaults copies the embedded starter catalog into Dir when files are missing.
	SeedDefaults bool `yaml:"seed_defaults" env:"SEED_DEFAULTS"`
}

type LLMConfig struct {
	Provider       string        `yaml:"provider" env:"PROVIDER"`
	Model          string        `yaml:"model" env:"MODEL"`
	APIKey         string        `yaml:"api_key" env:"API_KEY"`
	BaseURL        string        `yaml:"base_url" env:"BASE_URL"`
	Temperature    float64       `yaml:"temperature" env:"TEMPERATURE"`
	MaxTokens      int           `yaml:"max_tokens" env:"MAX_TOKENS"`
	Timeout        time.Duration `yaml:"timeout" env:"TIMEOUT"`
	BreakerTimeout time.Duration `yaml:"breaker_timeout" env:"BREAKER_TIMEOUT"`
}

type IngestConfig struct {
	BaseURL       string        `yaml:"base_url" env:"BASE_URL"`
	MaxFileSize   int           `yaml:"max_file_size" env:"MAX_FILE_SIZE"`
	ContextTokens int           `yaml:"context_tokens" env:"CONTEXT_TOKENS"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type RateLimitConfig struct {
	Enabled            bool `yaml:"enabled" env:"ENABLED"`
	RequestsPerMinute  int  `yaml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
	Burst              int  `yaml:"burst" env:"BURST"`
	RecommendPerMinute int  `yaml:"recommend_per_minute" env:"RECOMMEND_PER_MINUTE"`
}

type LogConfig struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

// EnvPrefix is prepended to every environment override, e.g. GITRULES_SERVER_PORT.
const EnvPrefix = "GITRULES_"

// LoadFromBytes loads configuration from YAML bytes with environment variable expansion
func LoadFromBytes(data []byte) (Config, error) {
	var c Config
	if err := c.Merge(data); err != nil {
		return c, err
	}
	return c, nil
}

// Merge decodes YAML on top of the current values. Keys absent from data keep their value.
func (c *Config) Merge(data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// MergeFile merges a YAML file on top of the current values.
func (c *Config) MergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return c.Merge(data)
}

// ApplyEnv overrides fields from GITRULES_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values the server cannot start without.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Catalog.Dir == "" {
		return fmt.Errorf("catalog.dir is required")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
