package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientMessageFilter(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"client_filter","user_id":"U1"}`))
	require.NoError(t, err)
	filter, ok := msg.(ClientFilter)
	require.True(t, ok, "message type = %T, want ClientFilter", msg)
	assert.Equal(t, "U1", filter.UserID)
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestParseClientMessageRejectsInvalidJSON(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{`))
	assert.Error(t, err)
	_, err = ParseClientMessage([]byte(`{}`))
	assert.Error(t, err, "missing type")
}

func TestNewRelayEvent(t *testing.T) {
	ev := NewRelayEvent(TypeRelayCompleted, "U1", "mid.1", 1500*time.Millisecond)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, int64(1500), ev.LatencyMS)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, TypeRelayCompleted, env.Type)
	assert.NotContains(t, string(raw), "text")
}
