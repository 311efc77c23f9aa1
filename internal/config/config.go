package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth. Empty disables bearer-token checks on /api routes.
	APIKey string

	// Batch directories
	InputDir  string
	OutputDir string

	// Worker pool
	Workers      int // Documents processed concurrently in a batch
	WorkerCount  int // Async analyze jobs processed concurrently by the server
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Ranking
	TopN             int
	RefineMaxChars   int
	RefineMinOverlap int
	PersonasFile     string

	// Logging
	LogLevel string
	LogFile  string

	// Job state and caches
	JobTTL   time.Duration
	CacheTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCOUTLINE_API_KEY"),

		InputDir:  envOr("INPUT_DIR", "/app/input"),
		OutputDir: envOr("OUTPUT_DIR", "/app/output"),

		Workers:      envInt("WORKERS", runtime.NumCPU()),
		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		TopN:             envInt("TOP_N", 5),
		RefineMaxChars:   envInt("REFINE_MAX_CHARS", 1000),
		RefineMinOverlap: envInt("REFINE_MIN_OVERLAP", 1),
		PersonasFile:     os.Getenv("PERSONAS_FILE"),

		LogLevel: envOr("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		JobTTL:   envDuration("JOB_TTL", 1*time.Hour),
		CacheTTL: envDuration("CACHE_TTL", 10*time.Minute),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	if cfg.RefineMaxChars <= 0 {
		cfg.RefineMaxChars = 1000
	}
	if cfg.RefineMinOverlap <= 0 {
		cfg.RefineMinOverlap = 1
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	return cfg
}

// LoadEnvFile sets variables from a dotenv file without overriding ones
// already in the environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PersonasFile != "" {
		if _, err := os.Stat(c.PersonasFile); err != nil {
			return fmt.Errorf("PERSONAS_FILE: %w", err)
		}
	}
	return nil
}

// ParseLevel maps LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("LOG_LEVEL: unknown level %q", s)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
