package config

import (
	"os"
	"strconv"
)

// Config is the API server configuration, read from the environment.
type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseDBURL   string
	SupabaseJWKSURL string
	CORSOrigins     string
	TablePrefix     string
	RunMigrations   bool
	// Per-user token bucket for PUT /documents/{id}/content.
	AutoSaveRPS   float64
	AutoSaveBurst int
	Debug         bool
}

// Load reads the server configuration. Debug defaults on outside prod.
func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	supabaseURL := getEnv("SUPABASE_URL", "")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: supabaseURL + "/auth/v1/.well-known/jwks.json",
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     getTablePrefix(env),
		RunMigrations:   getEnvBool("RUN_MIGRATIONS", true),
		AutoSaveRPS:     getEnvFloat("AUTOSAVE_RPS", 10),
		AutoSaveBurst:   getEnvInt("AUTOSAVE_BURST", 20),
		Debug:           getEnvBool("DEBUG", env != "prod"),
	}
}

var tablePrefixes = map[string]string{
	"prod": "prod_",
	"test": "test_",
}

// getTablePrefix honours TABLE_PREFIX, then maps the environment, defaulting
// to dev_.
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	if prefix, ok := tablePrefixes[env]; ok {
		return prefix
	}
	return "dev_"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}
