package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Draft backends
const (
	DraftBackendBadger = "badger"
	DraftBackendRedis  = "redis"
)

// ClientConfig configures the workspace client.
type ClientConfig struct {
	APIURL          string        `yaml:"api_url"`
	SupabaseURL     string        `yaml:"supabase_url"`
	SupabaseAnonKey string        `yaml:"supabase_anon_key"`
	DataDir         string        `yaml:"data_dir"`
	AutoSaveDelay   time.Duration `yaml:"autosave_delay"`
	SnapshotRefresh time.Duration `yaml:"snapshot_refresh"`
	DraftBackend    string        `yaml:"draft_backend"`
	RedisURL        string        `yaml:"redis_url"`
	LogLevel        string        `yaml:"log_level"`
}

// DefaultClientConfigPath returns ~/.prompthub/workspace.yaml.
func DefaultClientConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".prompthub", "workspace.yaml")
	}
	return filepath.Join(home, ".prompthub", "workspace.yaml")
}

func defaultClientConfig() *ClientConfig {
	dataDir := filepath.Join(".prompthub", "data")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".prompthub", "data")
	}
	return &ClientConfig{
		APIURL:          "http://localhost:8080",
		DataDir:         dataDir,
		AutoSaveDelay:   500 * time.Millisecond,
		SnapshotRefresh: 45 * time.Second,
		DraftBackend:    DraftBackendBadger,
		LogLevel:        "warn",
	}
}

// LoadClient reads the YAML file at path (a missing file is fine) and applies
// environment overrides on top.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := defaultClientConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.APIURL = getEnv("PROMPTHUB_API_URL", cfg.APIURL)
	cfg.SupabaseURL = getEnv("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabaseAnonKey = getEnv("SUPABASE_ANON_KEY", cfg.SupabaseAnonKey)
	cfg.DataDir = getEnv("PROMPTHUB_DATA_DIR", cfg.DataDir)
	cfg.RedisURL = getEnv("PROMPTHUB_REDIS_URL", cfg.RedisURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *ClientConfig) Validate() error {
	if c.AutoSaveDelay <= 0 {
		return fmt.Errorf("autosave_delay must be positive")
	}
	if c.SnapshotRefresh <= 0 {
		return fmt.Errorf("snapshot_refresh must be positive")
	}
	switch c.DraftBackend {
	case DraftBackendBadger:
	case DraftBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("draft_backend redis requires redis_url")
		}
	default:
		return fmt.Errorf("unknown draft_backend %q", c.DraftBackend)
	}
	return nil
}

// SlogLevel maps log_level to a slog level, defaulting to warn.
func (c *ClientConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
