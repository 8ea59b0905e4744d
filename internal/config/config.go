package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	// Ollama (or any OpenAI-compatible local endpoint) powers AI
	// assistance and semantic-search embeddings.
	OllamaURL           string `envconfig:"OLLAMA_URL"`
	OllamaModel         string `envconfig:"OLLAMA_MODEL" default:"llama3.1"`
	OllamaEmbedModel    string `envconfig:"OLLAMA_EMBED_MODEL" default:"nomic-embed-text"`
	EmbeddingDimensions int    `envconfig:"EMBEDDING_DIMENSIONS" default:"768"`

	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"promptuary-exports"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Optional YAML file overriding the embedded guardrail rules; watched
	// for changes while the server runs.
	GuardrailRulesPath string `envconfig:"GUARDRAIL_RULES_PATH"`

	// Bootstrap: create the initial library and API key on startup
	InitLibraryName string `envconfig:"INIT_LIBRARY_NAME"`
	InitAPIKey      string `envconfig:"INIT_API_KEY"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("PROMPTUARY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasOllama() bool {
	return c.OllamaURL != ""
}

func (c *Config) HasRedis() bool {
	return c.RedisAddr != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}
