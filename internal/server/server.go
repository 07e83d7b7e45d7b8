// Package server provides the HTTP suggestion webhook with lifecycle management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raphaelgruber/flirtassist/internal/client"
	"github.com/raphaelgruber/flirtassist/internal/llm"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
)

// maxBodyBytes bounds a request body; screenshots arrive base64 encoded.
const maxBodyBytes = 20 << 20

// Generator produces suggestions for a webhook request. *llm.Generator
// implements it.
type Generator interface {
	Generate(ctx context.Context, req client.Request) (*client.Response, error)
}

// Server serves the suggestion webhook.
type Server struct {
	generator Generator
	metrics   *metrics.Collector
	logger    *slog.Logger
	handler   http.Handler
}

// New creates a server. collector may be nil.
func New(gen Generator, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		generator: gen,
		metrics:   collector,
		logger:    logger,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewPrometheusCollector(collector))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /suggest", s.handleSuggest)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.handler = LoggingMiddleware(logger)(mux)
	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on addr and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // Long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("suggestion webhook listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req client.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !req.Mood.Valid() {
		http.Error(w, fmt.Sprintf("invalid mood %q", req.Mood), http.StatusBadRequest)
		return
	}

	start := time.Now()
	resp, err := s.generator.Generate(r.Context(), req)
	s.metrics.Since(metrics.OpWebhookRequest, start, err)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyRequest) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("generate suggestions", "mood", req.Mood, "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("write response", "error", err)
	}
}
