package completion

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antoniostano/luna/internal/reliability"
	"github.com/antoniostano/luna/internal/session"
)

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

func completionBody(content string) string {
	raw, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "deepseek-chat",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(raw)
}

func TestOpenAIProviderSendsChatRequest(t *testing.T) {
	var got wireRequest
	var raw map[string]any
	var auth, path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_ = json.Unmarshal(body, &raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("¡Hola! ¿Cómo estás?")))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("sk-test", ts.URL)
	out, err := p.Complete(context.Background(), Request{
		Model:        "deepseek-chat",
		SystemPrompt: "persona",
		Temperature:  0.7,
		Messages: []session.Turn{
			{Role: session.RoleUser, Content: "Hola"},
			{Role: session.RoleAssistant, Content: "¿Qué tal?"},
			{Role: session.RoleUser, Content: "Bien"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "¡Hola! ¿Cómo estás?", out)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 0.7, got.Temperature)
	require.Contains(t, raw, "stream")
	assert.Equal(t, false, raw["stream"])
	assert.Equal(t, []wireMessage{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "Hola"},
		{Role: "assistant", Content: "¿Qué tal?"},
		{Role: "user", Content: "Bien"},
	}, got.Messages)
}

func TestOpenAIProviderNon2xxIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("sk-test", ts.URL)
	_, err := p.Complete(context.Background(), Request{Model: "deepseek-chat", Messages: []session.Turn{{Role: session.RoleUser, Content: "Hola"}}})

	var statusErr *reliability.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("sk-test", ts.URL)
	_, err := p.Complete(context.Background(), Request{Model: "deepseek-chat"})
	assert.ErrorIs(t, err, reliability.ErrEmptyResponse)
}

func TestOpenAIProviderMalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("sk-test", ts.URL)
	_, err := p.Complete(context.Background(), Request{Model: "deepseek-chat"})
	require.ErrorIs(t, err, reliability.ErrMalformedResponse)
	assert.Equal(t, reliability.ClassDecode, reliability.Classify(err))
}

func TestOpenAIProviderUnreachableIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	p := NewOpenAIProvider("sk-test", url)
	_, err := p.Complete(context.Background(), Request{Model: "deepseek-chat"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, reliability.ErrMalformedResponse)
	assert.Equal(t, reliability.ClassNetwork, reliability.Classify(err))
}

// A blank top choice is rejected rather than delivered as an empty message.
func TestOpenAIProviderBlankContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  \n ")))
	}))
	defer ts.Close()

	p := NewOpenAIProvider("sk-test", ts.URL)
	_, err := p.Complete(context.Background(), Request{Model: "deepseek-chat"})
	assert.ErrorIs(t, err, reliability.ErrEmptyResponse)
}

func TestOpenAIProviderWithoutKey(t *testing.T) {
	p := NewOpenAIProvider("", "http://127.0.0.1:1")
	assert.False(t, p.Configured())
	_, err := p.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestClientEndToEndWithOpenAIProvider(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	ctx := context.Background()
	store := session.NewMemoryStore()
	c := newTestClient(t, NewOpenAIProvider("sk-test", ts.URL), store)

	reply := c.GenerateReply(ctx, "U2", "Hola")
	assert.Equal(t, FallbackCircuitBreaker, reply.Text)
	history, err := store.History(ctx, "U2")
	require.NoError(t, err)
	assert.Empty(t, history)
}
