package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the batch settlement service.
type Config struct {
	Port            int
	LogLevel        string
	BatchInterval   time.Duration // 0 disables the scheduler
	MaxBatchSize    int
	DefaultFeeRate  float64
	WebhookTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// durationVar binds an env key to a Config duration field.
type durationVar struct {
	key    string
	dst    *time.Duration
	defVal time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	cfg := &Config{LogLevel: getStr("LOG_LEVEL", "info")}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	if cfg.MaxBatchSize, err = getInt("MAX_BATCH_SIZE", 500); err != nil {
		return nil, fmt.Errorf("invalid MAX_BATCH_SIZE: %w", err)
	}
	if cfg.DefaultFeeRate, err = getFloat("DEFAULT_FEE_RATE", 0.003); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_FEE_RATE: %w", err)
	}

	for _, d := range []durationVar{
		{"BATCH_INTERVAL", &cfg.BatchInterval, 0},
		{"WEBHOOK_TIMEOUT", &cfg.WebhookTimeout, 5 * time.Second},
		{"READ_TIMEOUT", &cfg.ReadTimeout, 5 * time.Second},
		{"WRITE_TIMEOUT", &cfg.WriteTimeout, 10 * time.Second},
		{"IDLE_TIMEOUT", &cfg.IdleTimeout, 60 * time.Second},
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout, 10 * time.Second},
	} {
		if *d.dst, err = getDuration(d.key, d.defVal); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.MaxBatchSize < 1 {
		return fmt.Errorf("invalid MAX_BATCH_SIZE: %d, must be at least 1", c.MaxBatchSize)
	}
	if math.IsNaN(c.DefaultFeeRate) || c.DefaultFeeRate < 0 || c.DefaultFeeRate >= 1 {
		return fmt.Errorf("invalid DEFAULT_FEE_RATE: %v, must be in [0, 1)", c.DefaultFeeRate)
	}
	if c.BatchInterval < 0 {
		return fmt.Errorf("invalid BATCH_INTERVAL: %v, must not be negative", c.BatchInterval)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level. Load has already rejected
// unknown names, so anything else falls back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps one of debug, info, warn or error onto a slog.Level.
// Matching is exact and lower case.
func ParseLogLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%q, must be one of: debug, info, warn, error", name)
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseFloat(v, 64)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}
