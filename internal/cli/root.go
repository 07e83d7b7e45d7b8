// Package cli provides the command-line interface for flirtassist.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/flirtassist/internal/client"
	"github.com/raphaelgruber/flirtassist/internal/config"
	"github.com/raphaelgruber/flirtassist/internal/kv"
	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/service"
	"github.com/raphaelgruber/flirtassist/internal/store"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	backend    string
	dataDir    string
	webhookURL string

	// Global config and storage, set up per invocation
	cfg           config.Config
	logger        *slog.Logger
	closeLogger   func() error
	kvStore       kv.Store
	stats         *metrics.Collector
	threadStore   *store.ThreadStore
	threadService *service.ThreadService
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "flirtassist",
	Short: "Reply suggestions for your chats",
	Long: `Flirtassist turns a chat screenshot or pasted text into reply suggestions
in the mood you pick (Funny, Romantic, Mysterious, Sexy).

Conversations are kept as threads on this machine so you can add context,
browse your history and regenerate suggestions later.

Suggestions come from a webhook (FLIRTASSIST_WEBHOOK_URL); flirtassist-webhook
is a local implementation of it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip storage for version, help and static commands
		switch cmd.Name() {
		case "version", "help", "moods", "completion", "__complete":
			return nil
		}

		cfg = config.Load()
		applyFlagOverrides(cmd)

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cmd.ErrOrStderr(), cfg.LogFile, level)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var err error
		kvStore, err = kv.Open(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		stats = metrics.NewCollector()
		threadStore = store.New(kvStore, logger, store.WithMetrics(stats))
		threadService = service.NewThreadService(threadStore, service.WithLogger(logger))

		logger.Debug("storage ready", "backend", cfg.StorageBackend, "data_dir", cfg.DataDir)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeResources(cmd)
	},
}

// applyFlagOverrides lets explicit flags win over the environment.
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.StorageBackend = backend
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("webhook-url") {
		cfg.WebhookURL = webhookURL
	}
}

func closeResources(cmd *cobra.Command) {
	if stats != nil {
		logStats(logger, stats.Snapshot())
		stats = nil
	}
	if kvStore != nil {
		if err := kvStore.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close storage: %v\n", err)
		}
		kvStore = nil
	}
	if closeLogger != nil {
		_ = closeLogger()
		closeLogger = nil
	}
}

// logStats reports the timings of this invocation at debug level.
func logStats(l *slog.Logger, snap metrics.Snapshot) {
	if l == nil {
		return
	}
	for _, op := range metrics.Operations {
		s := snap.Op(op)
		if s == nil {
			continue
		}
		l.Debug("timing", "op", op, "count", s.Count, "avg_ms", s.AvgTimeMs, "max_ms", s.MaxTimeMs, "failures", snap.Failures[op])
	}
}

// newSuggester wires the webhook client and thread store into a Suggester.
func newSuggester(opts ...service.Option) *service.Suggester {
	c := client.New(cfg.WebhookURL, client.WithMetrics(stats))
	opts = append([]service.Option{service.WithLogger(logger)}, opts...)
	return service.NewSuggester(threadStore, c, opts...)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// PersistentPostRun is skipped when RunE fails.
		closeResources(rootCmd)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend (memory, file, badger, sqlite, redis, surreal)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for local storage")
	rootCmd.PersistentFlags().StringVar(&webhookURL, "webhook-url", "", "suggestion webhook URL")

	// Add subcommands
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(moodsCmd)
}
