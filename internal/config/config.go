package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the Instagram relay service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string
	AdminToken       string

	LogLevel  string
	LogPretty bool
	LogFile   string

	PageAccessToken string
	VerifyToken     string
	AppSecret       string
	InstagramObject string
	GraphAPIURL     string

	CompletionAPIKey      string
	CompletionBaseURL     string
	CompletionModel       string
	CompletionMode        string
	CompletionTemperature float64
	CompletionTimeout     time.Duration

	RelayWorkers   int
	RelayQueueSize int

	DatabaseURL string
	SQLitePath  string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	port := envOrDefault("PORT", "3000")
	cfg := Config{
		BindAddr:              envOrDefault("APP_BIND_ADDR", ":"+port),
		MetricsNamespace:      envOrDefault("APP_METRICS_NAMESPACE", "luna"),
		AdminToken:            stringsTrimSpace("APP_ADMIN_TOKEN"),
		LogLevel:              envOrDefault("LOG_LEVEL", "info"),
		LogFile:               stringsTrimSpace("LOG_FILE"),
		PageAccessToken:       stringsTrimSpace("PAGE_ACCESS_TOKEN"),
		VerifyToken:           stringsTrimSpace("VERIFY_TOKEN"),
		AppSecret:             stringsTrimSpace("APP_SECRET"),
		InstagramObject:       envOrDefault("INSTAGRAM_OBJECT", "instagram"),
		GraphAPIURL:           envOrDefault("GRAPH_API_URL", "https://graph.facebook.com/v19.0/me/messages"),
		CompletionAPIKey:      stringsTrimSpace("DEEPSEEK_API_KEY"),
		CompletionBaseURL:     envOrDefault("COMPLETION_BASE_URL", "https://api.deepseek.com"),
		CompletionModel:       envOrDefault("COMPLETION_MODEL", "deepseek-chat"),
		CompletionMode:        envOrDefault("COMPLETION_MODE", "openai"),
		CompletionTemperature: 0.7,
		RelayWorkers:          8,
		RelayQueueSize:        1024,
		DatabaseURL:           stringsTrimSpace("DATABASE_URL"),
		SQLitePath:            stringsTrimSpace("SQLITE_PATH"),
		ShutdownTimeout:       15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTimeout, err = durationFromEnv("COMPLETION_TIMEOUT", cfg.CompletionTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTemperature, err = floatFromEnv("COMPLETION_TEMPERATURE", cfg.CompletionTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.RelayWorkers, err = intFromEnv("RELAY_WORKERS", cfg.RelayWorkers)
	if err != nil {
		return Config{}, err
	}
	cfg.RelayQueueSize, err = intFromEnv("RELAY_QUEUE_SIZE", cfg.RelayQueueSize)
	if err != nil {
		return Config{}, err
	}
	cfg.LogPretty, err = boolFromEnv("LOG_PRETTY", cfg.LogPretty)
	if err != nil {
		return Config{}, err
	}

	if _, err := strconv.Atoi(port); err != nil {
		return Config{}, fmt.Errorf("PORT parse error: %w", err)
	}
	if cfg.RelayWorkers <= 0 {
		return Config{}, fmt.Errorf("RELAY_WORKERS must be positive")
	}
	if cfg.RelayQueueSize <= 0 {
		return Config{}, fmt.Errorf("RELAY_QUEUE_SIZE must be positive")
	}
	if cfg.CompletionTimeout < 0 {
		return Config{}, fmt.Errorf("COMPLETION_TIMEOUT must be >= 0")
	}
	if cfg.CompletionTemperature < 0 || cfg.CompletionTemperature > 2 {
		return Config{}, fmt.Errorf("COMPLETION_TEMPERATURE must be within [0, 2]")
	}
	switch strings.ToLower(cfg.CompletionMode) {
	case "openai", "mock":
		cfg.CompletionMode = strings.ToLower(cfg.CompletionMode)
	default:
		return Config{}, fmt.Errorf("invalid COMPLETION_MODE: %q (expected openai|mock)", cfg.CompletionMode)
	}

	return cfg, nil
}

// MissingCredentials lists the credential variables that are unset. The
// service still starts without them but cannot relay correctly.
func (c Config) MissingCredentials() []string {
	var missing []string
	if c.PageAccessToken == "" {
		missing = append(missing, "PAGE_ACCESS_TOKEN")
	}
	if c.VerifyToken == "" {
		missing = append(missing, "VERIFY_TOKEN")
	}
	if c.CompletionAPIKey == "" && c.CompletionMode != "mock" {
		missing = append(missing, "DEEPSEEK_API_KEY")
	}
	return missing
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
