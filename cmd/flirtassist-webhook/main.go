// Package main provides the reference suggestion webhook for flirtassist.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/config"
	"github.com/raphaelgruber/flirtassist/internal/llm"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/server"
)

const version = "0.1.0"

func main() {
	// Parse flags
	port := flag.String("port", "", "listen port (default FLIRTASSIST_WEBHOOK_PORT or 8585)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != "" {
		cfg.WebhookPort = *port
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(os.Stderr, cfg.LogFile, cfg.LogLevel)
	defer func() { _ = cleanup() }()

	logger.Info("flirtassist-webhook starting",
		"version", version,
		"port", cfg.WebhookPort,
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
	)

	// Create context with cancellation on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	gen, err := llm.NewGenerator(initCtx, cfg, llm.WithMetrics(collector), llm.WithLogger(logger))
	cancel()
	if err != nil {
		logger.Error("failed to create generator", "error", err)
		os.Exit(1)
	}

	srv := server.New(gen, collector, logger)
	if err := srv.Run(ctx, ":"+cfg.WebhookPort); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
