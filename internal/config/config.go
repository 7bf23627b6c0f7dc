package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the builder front ends
type Config struct {
	// Server
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`

	// Parts catalog (Rebrickable)
	RebrickableAPIKey  string        `yaml:"rebrickable_api_key"`
	RebrickableBaseURL string        `yaml:"rebrickable_base_url"`
	CatalogPageSize    int           `yaml:"catalog_page_size"`
	CatalogTimeout     time.Duration `yaml:"catalog_timeout"`

	// Generation service (OpenAI chat completions)
	OpenAIAPIKey      string        `yaml:"openai_api_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	Model             string        `yaml:"model"`
	GenerationTimeout time.Duration `yaml:"generation_timeout"`

	// Optional infrastructure
	RedisURL     string `yaml:"redis_url"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Port:               "8080",
		Environment:        "development",
		RebrickableBaseURL: "https://rebrickable.com/api/v3/lego",
		CatalogPageSize:    1000,
		CatalogTimeout:     30 * time.Second,
		OpenAIBaseURL:      "https://api.openai.com/v1",
		Model:              "gpt-4o-mini",
		GenerationTimeout:  60 * time.Second,
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE), then
// environment variables. A .env file in the working directory is honoured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("GO_ENV", cfg.Environment)
	cfg.RebrickableAPIKey = getEnv("REBRICKABLE_API_KEY", cfg.RebrickableAPIKey)
	cfg.RebrickableBaseURL = getEnv("REBRICKABLE_BASE_URL", cfg.RebrickableBaseURL)
	cfg.CatalogPageSize = getEnvInt("CATALOG_PAGE_SIZE", cfg.CatalogPageSize)
	cfg.CatalogTimeout = getEnvDuration("CATALOG_TIMEOUT", cfg.CatalogTimeout)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.Model = getEnv("OPENAI_MODEL", cfg.Model)
	cfg.GenerationTimeout = getEnvDuration("GENERATION_TIMEOUT", cfg.GenerationTimeout)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)

	return cfg, nil
}

// Validate checks that both service credentials are present
func (c *Config) Validate() error {
	var errs []error
	if c.RebrickableAPIKey == "" {
		errs = append(errs, errors.New("REBRICKABLE_API_KEY is not set"))
	}
	if c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}
	if c.CatalogTimeout <= 0 || c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
