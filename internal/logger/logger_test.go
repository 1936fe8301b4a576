package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)
	defer l.Close()

	l.Info().Str("user_id", "U1").Msg("relay completed")

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"user_id":"U1"`)
	assert.Contains(t, out, `"message":"relay completed"`)
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "chatty", Output: &buf})
	require.NoError(t, err)

	l.Debug().Msg("debug line")
	l.Info().Msg("info line")

	assert.NotContains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "info line")
}

func TestNewWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "luna.log")
	var console bytes.Buffer
	l, err := New(Config{Level: "info", File: logFile, Output: &console})
	require.NoError(t, err)

	l.Info().Msg("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Contains(t, console.String(), "to file")
}

func TestRedactorMasksCredentials(t *testing.T) {
	r := NewRedactor()
	cases := []struct {
		in     string
		secret  string
	}{
		{"Authorization: Bearer abc.def-123", "abc.def-123"},
		{"POST /me/messages?access_token=EAAGm0PX4ZCpsBA", "EAAGm0PX4ZCpsBA"},
		{"key sk-0123456789abcdefghijklmn", "sk-0123456789abcdefghijklmn"},
		{"GET /webhook?hub.verify_token=hunter2&hub.mode=subscribe", "hunter2"},
	}
	for _, tc := range cases {
		out := r.Redact(tc.in)
		assert.NotContains(t, out, tc.secret)
		assert.Contains(t, out, "[REDACTED]")
	}
}

func TestLoggerRedactsFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Output: &buf})
	require.NoError(t, err)

	l.Error().Str("url", "https://graph.facebook.com/v19.0/me/messages?access_token=secret-token").Msg("send failed")

	assert.NotContains(t, buf.String(), "secret-token")
}
