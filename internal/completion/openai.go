package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/antoniostano/luna/internal/reliability"
	"github.com/antoniostano/luna/internal/session"
)

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint,
// DeepSeek by default.
type OpenAIProvider struct {
	client openai.Client
	apiKey string
}

// NewOpenAIProvider builds a provider for baseURL. The SDK's automatic
// retries are disabled: a failed call is answered with a fallback reply.
func NewOpenAIProvider(apiKey, baseURL string, opts ...option.RequestOption) *OpenAIProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{}),
	}
	if baseURL != "" {
		base = append(base, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		client: openai.NewClient(append(base, opts...)...),
		apiKey: apiKey,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Configured() bool { return strings.TrimSpace(p.apiKey) != "" }

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (string, error) {
	if !p.Configured() {
		return "", ErrMissingCredential
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	for _, turn := range req.Messages {
		switch turn.Role {
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(turn.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			return "", fmt.Errorf("unsupported turn role %q", turn.Role)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, option.WithJSONSet("stream", false))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &reliability.StatusError{
				Upstream: "completion",
				Code:     apiErr.StatusCode,
				Body:     reliability.Truncate(apiErr.Message, 400),
			}
		}
		// Transport failures surface as *url.Error; anything else came back
		// with a 2xx status and failed to decode.
		var urlErr *url.Error
		if ctx.Err() == nil && !errors.As(err, &urlErr) {
			return "", fmt.Errorf("%w: %v", reliability.ErrMalformedResponse, err)
		}
		return "", fmt.Errorf("completion request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned: %w", reliability.ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("top choice has no content: %w", reliability.ErrEmptyResponse)
	}
	return content, nil
}
