package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/stepwise"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stepwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.MaxSteps)
		assert.Equal(t, 2*time.Minute, cfg.Timeout)
		assert.True(t, strings.HasPrefix(cfg.Model, "anthropic:"))
	})

	t.Run("yaml values", func(t *testing.T) {
		path := writeConfig(t, `
model: openai:gpt-5.2
maxSteps: 4
timeout: 30s
activeTools: ["read_*"]
log:
  level: debug
tools:
  http: true
  hosts: [example.com]
retry:
  maxAttempts: 5
mcp:
  - name: local
    command: ./server
    prefix: local_
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "openai:gpt-5.2", cfg.Model)
		assert.Equal(t, 4, cfg.MaxSteps)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"read_*"}, cfg.ActiveTools)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel())
		assert.True(t, cfg.Tools.HTTP)
		assert.Equal(t, 5, cfg.Retry.MaxAttempts)
		require.Len(t, cfg.MCP, 1)
		assert.Equal(t, "local_", cfg.MCP[0].Prefix)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("STEPWISE_MODEL", "google:gemini-2.5-flash")
		t.Setenv("STEPWISE_MAX_STEPS", "7")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		cfg, err := LoadConfig(writeConfig(t, "model: openai:gpt-5.2\n"))
		require.NoError(t, err)
		assert.Equal(t, "google:gemini-2.5-flash", cfg.Model)
		assert.Equal(t, 7, cfg.MaxSteps)
		assert.Equal(t, "sk-test", cfg.OpenAIKey)
	})

	t.Run("invalid model", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "model: gpt-5\n"))
		assert.Error(t, err)
	})

	t.Run("mcp server without command", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "mcp:\n  - name: broken\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "model: [\n"))
		assert.Error(t, err)
	})
}

func TestClientConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Retry.MaxAttempts = 6
	cfg.RateLimit = &RateLimit{InitialTPM: 1000, MaxTPM: 5000}
	cfg.AWSRegion = "eu-west-1"

	cc := clientConfig(cfg, nil)
	require.NotNil(t, cc.Retry)
	assert.Equal(t, 6, cc.Retry.MaxAttempts)
	require.NotNil(t, cc.RateLimit)
	assert.Equal(t, 5000.0, cc.RateLimit.MaxTPM)
	assert.Equal(t, "eu-west-1", cc.AWS.Region)

	assert.Nil(t, clientConfig(defaultConfig(), nil).Retry)
}

func TestApprover(t *testing.T) {
	requests := []ai.ApprovalRequest{
		{ApprovalID: "a1", ToolCall: ai.ToolCall{Name: "write_file", Arguments: `{}`}},
		{ApprovalID: "a2", ToolCall: ai.ToolCall{Name: "write_file", Arguments: `{}`}},
		{ApprovalID: "a3", ToolCall: ai.ToolCall{Name: "write_file", Arguments: `{}`}},
	}

	t.Run("reads answers", func(t *testing.T) {
		var out strings.Builder
		a := newApprover(strings.NewReader("y\nn\n"), &out, false)
		got, err := a.decide(requests)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.True(t, got[0].Approved)
		assert.False(t, got[1].Approved)
		assert.False(t, got[2].Approved)
		assert.Equal(t, "no answer", got[2].Reason)
		assert.Contains(t, out.String(), "Allow write_file")
	})

	t.Run("auto approve", func(t *testing.T) {
		a := newApprover(strings.NewReader(""), io.Discard, true)
		got, err := a.decide(requests)
		require.NoError(t, err)
		for _, r := range got {
			assert.True(t, r.Approved)
		}
	})
}

func TestBuildRegistry(t *testing.T) {
	registry, err := buildRegistry(ToolsConfig{Files: true, Root: t.TempDir(), Search: true, HTTP: true})
	require.NoError(t, err)
	assert.Contains(t, registry.Names(), "current_time")
	assert.Greater(t, registry.Len(), 3)

	registry, err = buildRegistry(ToolsConfig{})
	require.NoError(t, err)
	assert.Equal(t, []string{"current_time"}, registry.Names())
}
