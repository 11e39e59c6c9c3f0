package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.BatchInterval != 0 {
		t.Errorf("BatchInterval = %v, want 0 (scheduler disabled)", cfg.BatchInterval)
	}
	if cfg.MaxBatchSize != 500 {
		t.Errorf("MaxBatchSize = %d, want 500", cfg.MaxBatchSize)
	}
	if cfg.DefaultFeeRate != 0.003 {
		t.Errorf("DefaultFeeRate = %v, want 0.003", cfg.DefaultFeeRate)
	}
	if cfg.WebhookTimeout != 5*time.Second {
		t.Errorf("WebhookTimeout = %v, want 5s", cfg.WebhookTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("BATCH_INTERVAL", "250ms")
	t.Setenv("MAX_BATCH_SIZE", "16")
	t.Setenv("DEFAULT_FEE_RATE", "0.01")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
	if cfg.BatchInterval != 250*time.Millisecond {
		t.Errorf("BatchInterval = %v, want 250ms", cfg.BatchInterval)
	}
	if cfg.MaxBatchSize != 16 {
		t.Errorf("MaxBatchSize = %d, want 16", cfg.MaxBatchSize)
	}
	if cfg.DefaultFeeRate != 0.01 {
		t.Errorf("DefaultFeeRate = %v, want 0.01", cfg.DefaultFeeRate)
	}
	if cfg.WebhookTimeout != 3*time.Second {
		t.Errorf("WebhookTimeout = %v, want 3s", cfg.WebhookTimeout)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PORT", "not-a-number"},
		{"LOG_LEVEL", "verbose"},
		{"MAX_BATCH_SIZE", "0"},
		{"MAX_BATCH_SIZE", "many"},
		{"DEFAULT_FEE_RATE", "1"},
		{"DEFAULT_FEE_RATE", "-0.1"},
		{"DEFAULT_FEE_RATE", "NaN"},
		{"DEFAULT_FEE_RATE", "cheap"},
		{"BATCH_INTERVAL", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	for _, key := range durationEnvKeys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for level, want := range tests {
		cfg := &Config{LogLevel: level}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", level, got, want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"WARN", 0, true},
		{"warning", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLogLevel(%q) accepted", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseLogLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}
