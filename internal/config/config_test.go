package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.BindAddr)
	assert.Equal(t, "deepseek-chat", cfg.CompletionModel)
	assert.Equal(t, 0.7, cfg.CompletionTemperature)
	assert.Zero(t, cfg.CompletionTimeout, "no completion timeout by default")
	assert.Equal(t, "instagram", cfg.InstagramObject)
	assert.Equal(t, "https://graph.facebook.com/v19.0/me/messages", cfg.GraphAPIURL)
	assert.Equal(t, "openai", cfg.CompletionMode)
	assert.Equal(t, 8, cfg.RelayWorkers)
	assert.Equal(t, 1024, cfg.RelayQueueSize)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
}

func TestLoadUsesPortWhenBindAddrUnset(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "8081")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.BindAddr)
}

func TestLoadExplicitBindAddrWins(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "8081")
	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9191")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", cfg.BindAddr)
}

func TestLoadParsesOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COMPLETION_TEMPERATURE", "0.2")
	t.Setenv("COMPLETION_TIMEOUT", "45s")
	t.Setenv("RELAY_WORKERS", "3")
	t.Setenv("COMPLETION_MODE", "MOCK")
	t.Setenv("LOG_PRETTY", "yes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.CompletionTemperature)
	assert.Equal(t, 45*time.Second, cfg.CompletionTimeout)
	assert.Equal(t, 3, cfg.RelayWorkers)
	assert.Equal(t, "mock", cfg.CompletionMode)
	assert.True(t, cfg.LogPretty)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"RELAY_WORKERS":          "0",
		"RELAY_QUEUE_SIZE":       "-1",
		"COMPLETION_TEMPERATURE": "hot",
		"COMPLETION_MODE":        "gemini",
		"PORT":                   "http",
		"LOG_PRETTY":             "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setCoreEnvEmpty(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err, "%s=%q", key, value)
		})
	}
}

func TestMissingCredentialsDoesNotFailLoad(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("VERIFY_TOKEN", "hub-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"PAGE_ACCESS_TOKEN", "DEEPSEEK_API_KEY"}, cfg.MissingCredentials())
}

func TestMissingCredentialsMockModeNeedsNoKey(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("COMPLETION_MODE", "mock")
	t.Setenv("VERIFY_TOKEN", "hub-secret")
	t.Setenv("PAGE_ACCESS_TOKEN", "page-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MissingCredentials())
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ADMIN_TOKEN",
		"LOG_LEVEL",
		"LOG_PRETTY",
		"LOG_FILE",
		"PAGE_ACCESS_TOKEN",
		"VERIFY_TOKEN",
		"APP_SECRET",
		"INSTAGRAM_OBJECT",
		"GRAPH_API_URL",
		"DEEPSEEK_API_KEY",
		"COMPLETION_BASE_URL",
		"COMPLETION_MODEL",
		"COMPLETION_MODE",
		"COMPLETION_TEMPERATURE",
		"COMPLETION_TIMEOUT",
		"RELAY_WORKERS",
		"RELAY_QUEUE_SIZE",
		"DATABASE_URL",
		"SQLITE_PATH",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
