package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLIRTASSIST_STORAGE_BACKEND", "")
	t.Setenv("FLIRTASSIST_WEBHOOK_URL", "")
	t.Setenv("FLIRTASSIST_LLM_PROVIDER", "")

	cfg := Load()

	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "", cfg.WebhookURL)
	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "8585", cfg.WebhookPort)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLIRTASSIST_WEBHOOK_URL", "https://hook.example.com/abc")
	t.Setenv("FLIRTASSIST_STORAGE_BACKEND", "Badger")
	t.Setenv("FLIRTASSIST_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "https://hook.example.com/abc", cfg.WebhookURL)
	assert.Equal(t, BackendBadger, cfg.StorageBackend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadDotEnvDoesNotOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("FLIRTASSIST_WEBHOOK_PORT=9999\nFLIRTASSIST_REDIS_PREFIX=fromfile\n"), 0o600))
	t.Setenv("FLIRTASSIST_WEBHOOK_PORT", "7000")
	require.NoError(t, os.Unsetenv("FLIRTASSIST_REDIS_PREFIX"))
	t.Cleanup(func() { os.Unsetenv("FLIRTASSIST_REDIS_PREFIX") })

	cfg := Load()

	assert.Equal(t, "7000", cfg.WebhookPort)
	assert.Equal(t, "fromfile", cfg.RedisPrefix)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
