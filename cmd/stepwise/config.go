package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spetersoncode/stepwise/provider/anthropic"
)

// Config is the CLI configuration. It is read from a YAML file and then
// overlaid with environment variables, which win.
type Config struct {
	Model    string        `yaml:"model"`
	System   string        `yaml:"system"`
	MaxSteps int           `yaml:"maxSteps"`
	Timeout  time.Duration `yaml:"timeout"`
	// ActiveTools limits the tools offered to the model (names or globs).
	ActiveTools []string `yaml:"activeTools"`

	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Session   SessionConfig   `yaml:"session"`
	Tools     ToolsConfig     `yaml:"tools"`
	Retry     RetryConfig     `yaml:"retry"`
	RateLimit *RateLimit      `yaml:"rateLimit"`
	MCP       []MCPServer     `yaml:"mcp"`

	// Credentials come from the environment only.
	AnthropicKey   string `yaml:"-"`
	OpenAIKey      string `yaml:"-"`
	OpenAIBaseURL  string `yaml:"-"`
	GoogleKey      string `yaml:"-"`
	VertexProject  string `yaml:"-"`
	VertexLocation string `yaml:"-"`
	AWSRegion      string `yaml:"-"`
}

// LogConfig selects the log handler settings.
type LogConfig struct {
	Level   string `yaml:"level"`
	NoColor bool   `yaml:"noColor"`
}

// TelemetryConfig enables the OpenTelemetry listener.
type TelemetryConfig struct {
	Tracing  bool `yaml:"tracing"`
	RecordIO bool `yaml:"recordIO"`
}

// SessionConfig selects where conversations are persisted.
type SessionConfig struct {
	Dir string `yaml:"dir"`
}

// ToolsConfig enables the built-in tools.
type ToolsConfig struct {
	Files    bool     `yaml:"files"`
	Root     string   `yaml:"root"`
	HTTP     bool     `yaml:"http"`
	Hosts    []string `yaml:"hosts"`
	Search   bool     `yaml:"search"`
	Approval bool     `yaml:"approval"`
}

// RetryConfig overrides the retry defaults.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"maxAttempts"`
	InitialDelay time.Duration `yaml:"initialDelay"`
	MaxDelay     time.Duration `yaml:"maxDelay"`
}

// RateLimit enables adaptive per-provider rate limiting.
type RateLimit struct {
	InitialTPM float64 `yaml:"initialTPM"`
	MaxTPM     float64 `yaml:"maxTPM"`
}

// MCPServer is a stdio MCP server whose tools are added to the registry.
type MCPServer struct {
	Name     string            `yaml:"name"`
	Command  string            `yaml:"command"`
	Args     []string          `yaml:"args"`
	Env      map[string]string `yaml:"env"`
	Prefix   string            `yaml:"prefix"`
	Approval bool              `yaml:"approval"`
}

func defaultConfig() *Config {
	return &Config{
		Model:    "anthropic:" + anthropic.DefaultModel,
		MaxSteps: 10,
		Timeout:  2 * time.Minute,
		Log:      LogConfig{Level: "info"},
		Session:  SessionConfig{Dir: ".stepwise/sessions"},
		Tools:    ToolsConfig{Files: true, Root: ".", Search: true, Approval: true},
	}
}

// LoadConfig loads .env (if present), the YAML file at path (if present),
// and the environment.
func LoadConfig(path string) (*Config, error) {
	godotenv.Load() // Load .env file if present

	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Model, "STEPWISE_MODEL")
	setString(&c.Log.Level, "STEPWISE_LOG_LEVEL")
	setString(&c.Session.Dir, "STEPWISE_SESSION_DIR")
	if v := os.Getenv("STEPWISE_MAX_STEPS"); v != "" {
		fmt.Sscanf(v, "%d", &c.MaxSteps)
	}
	if v := os.Getenv("STEPWISE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}

	c.AnthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.GoogleKey = os.Getenv("GOOGLE_API_KEY")
	c.VertexProject = os.Getenv("VERTEX_PROJECT")
	c.VertexLocation = os.Getenv("VERTEX_LOCATION")
	c.AWSRegion = os.Getenv("AWS_REGION")
	if c.AWSRegion == "" {
		c.AWSRegion = "us-east-1"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if !strings.Contains(c.Model, ":") {
		return fmt.Errorf("model %q must be of the form provider:model", c.Model)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("maxSteps must be at least 1, got %d", c.MaxSteps)
	}
	for _, s := range c.MCP {
		if s.Command == "" {
			return fmt.Errorf("mcp server %q has no command", s.Name)
		}
	}
	return nil
}

// LogLevel parses the configured level, defaulting to info.
func (c *Config) LogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
