// Package main provides a reference AG-UI HTTP server that exposes a
// tool-calling agent via the AG-UI protocol over Server-Sent Events (SSE).
//
// This server demonstrates how to connect runs to AG-UI compatible
// frontends like CopilotKit. Tools that need approval emit a CUSTOM
// "tool_approval_request" event; the frontend answers in the next request's
// forwarded props.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	AGUI_PORT           - Server port (default: 8000)
//	AGUI_LOG_LEVEL      - debug, info, warn or error (default: info)
//	STEPWISE_MODEL      - Model reference, e.g. anthropic:claude-sonnet-4-5 (required)
//	STEPWISE_SYSTEM     - System prompt (optional)
//	STEPWISE_MAX_STEPS  - Max steps per run (default: 10)
//	STEPWISE_TIMEOUT    - Run timeout (default: 2m)
//	STEPWISE_DEMO_TOOLS - Enable demo tools (default: true)
//	ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY, VERTEX_PROJECT,
//	VERTEX_LOCATION, AWS_REGION
//
// Usage:
//
//	STEPWISE_MODEL=anthropic:claude-sonnet-4-5 go run ./cmd/aguiserver
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/lmittmann/tint"

	"github.com/spetersoncode/stepwise/client"
	"github.com/spetersoncode/stepwise/provider/bedrock"
	"github.com/spetersoncode/stepwise/telemetry"
	"github.com/spetersoncode/stepwise/tool"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Level(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)

	c := client.New(client.Config{
		APIKeys: client.APIKeys{
			Anthropic: cfg.AnthropicKey,
			OpenAI:    cfg.OpenAIKey,
			Google:    cfg.GoogleKey,
		},
		Vertex: client.VertexConfig{
			Project:  cfg.VertexProject,
			Location: cfg.VertexLocation,
		},
		AWS: aws.Config{
			Region:      cfg.AWSRegion,
			Credentials: bedrock.EnvCredentials(),
		},
	})
	model, err := c.Model(context.Background(), cfg.Model)
	if err != nil {
		logger.Error("failed to create model", "model", cfg.Model, "error", err)
		os.Exit(1)
	}

	registry := tool.NewRegistry()
	if cfg.EnableDemoTools {
		SetupDemoTools(registry)
		logger.Info("registered demo tools", "count", registry.Len())
	}

	// Every run on this server logs through the global registry.
	unregister := telemetry.Register(telemetry.NewLogListener(logger))
	defer unregister()

	handler := NewAgentHandler(model, registry, cfg)

	mux := http.NewServeMux()
	mux.Handle("/api/agent", corsMiddleware(handler))
	mux.HandleFunc("/health", healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("AG-UI server starting",
		"port", cfg.Port,
		"model", cfg.Model,
		"endpoint", "POST http://localhost:"+cfg.Port+"/api/agent",
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
