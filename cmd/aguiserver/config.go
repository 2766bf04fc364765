package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration loaded from environment variables.
type Config struct {
	// Server
	Port     string
	LogLevel string // debug, info, warn, error

	// Model is a provider:model reference.
	Model string

	// API Keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string

	// Vertex AI (uses ADC for auth)
	VertexProject  string
	VertexLocation string

	AWSRegion string

	// Run config
	System          string
	MaxSteps        int
	Timeout         time.Duration
	EnableDemoTools bool
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := &Config{
		Port:            getEnvOrDefault("AGUI_PORT", "8000"),
		LogLevel:        getEnvOrDefault("AGUI_LOG_LEVEL", "info"),
		Model:           os.Getenv("STEPWISE_MODEL"),
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		GoogleKey:       os.Getenv("GOOGLE_API_KEY"),
		VertexProject:   os.Getenv("VERTEX_PROJECT"),
		VertexLocation:  os.Getenv("VERTEX_LOCATION"),
		AWSRegion:       getEnvOrDefault("AWS_REGION", "us-east-1"),
		System:          os.Getenv("STEPWISE_SYSTEM"),
		MaxSteps:        getEnvIntOrDefault("STEPWISE_MAX_STEPS", 10),
		Timeout:         getEnvDurationOrDefault("STEPWISE_TIMEOUT", 2*time.Minute),
		EnableDemoTools: getEnvBoolOrDefault("STEPWISE_DEMO_TOOLS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	provider, _, ok := strings.Cut(c.Model, ":")
	if !ok {
		return fmt.Errorf("STEPWISE_MODEL is required (provider:model, e.g. anthropic:claude-sonnet-4-5)")
	}

	switch provider {
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for anthropic provider")
		}
	case "openai":
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for openai provider")
		}
	case "google":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required for google provider")
		}
	case "vertex":
		if c.VertexProject == "" || c.VertexLocation == "" {
			return fmt.Errorf("VERTEX_PROJECT and VERTEX_LOCATION are required for vertex provider")
		}
	case "bedrock":
	default:
		return fmt.Errorf("unknown provider: %s (must be anthropic, openai, google, vertex or bedrock)", provider)
	}

	if c.MaxSteps < 1 {
		return fmt.Errorf("STEPWISE_MAX_STEPS must be at least 1")
	}
	return nil
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
