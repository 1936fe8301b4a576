package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/antoniostano/luna/internal/observability"
	"github.com/antoniostano/luna/internal/reliability"
	"github.com/antoniostano/luna/internal/session"
)

// Config holds the fixed request settings shared by every user.
type Config struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	// Timeout bounds one completion call. Zero means no timeout.
	Timeout time.Duration
}

// Reply is the text to deliver to the user plus how it was produced.
type Reply struct {
	Text       string
	Fallback   bool
	ErrorClass string
	Latency    time.Duration
	// Abandoned is set when the caller's context ended before the call
	// finished. The session is left as it was and nothing should be sent.
	Abandoned bool
}

// Client turns an inbound user message into a reply, keeping the user's
// session in sync with what was sent to the completion endpoint.
type Client struct {
	cfg      Config
	store    session.Store
	provider Provider
	metrics  *observability.Metrics
	log      zerolog.Logger
}

func NewClient(cfg Config, store session.Store, provider Provider, metrics *observability.Metrics, log zerolog.Logger) *Client {
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = SystemPrompt
	}
	return &Client{
		cfg:      cfg,
		store:    store,
		provider: provider,
		metrics:  metrics,
		log:      log.With().Str("component", "completion").Str("provider", provider.Name()).Logger(),
	}
}

// GenerateReply never returns an error: every failure degrades to one of the
// fixed fallback texts. A failed call resets the user's whole session and is
// not retried, unless ctx itself was cancelled.
func (c *Client) GenerateReply(ctx context.Context, userID, text string) Reply {
	if !c.provider.Configured() {
		c.log.Error().Err(ErrMissingCredential).Str("user_id", userID).Msg("completion credential missing")
		c.metrics.ObserveIndicator(observability.IndicatorFallbackReply)
		return Reply{Text: FallbackMissingCredential, Fallback: true, ErrorClass: "missing_credential"}
	}

	start := time.Now()
	content, err := c.complete(ctx, userID, text)
	latency := time.Since(start)
	if err == nil {
		c.metrics.ObserveCompletion(latency, "")
		return Reply{Text: content, Latency: latency}
	}

	class := reliability.Classify(err)
	if ctx.Err() != nil {
		// The relay is shutting down; this is not an upstream failure and the
		// stored history must survive. The unanswered user turn stays.
		c.log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("class", class).
			Msg("completion abandoned, session kept")
		return Reply{Text: FallbackCircuitBreaker, Fallback: true, ErrorClass: class, Latency: latency, Abandoned: true}
	}

	c.metrics.ObserveCompletion(latency, class)
	c.metrics.ObserveIndicator(observability.IndicatorFallbackReply)
	c.log.Error().
		Err(err).
		Str("user_id", userID).
		Str("class", class).
		Bool("transient", reliability.IsTransient(err)).
		Dur("latency", latency).
		Msg("completion failed, resetting session")

	resetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if resetErr := c.store.Reset(resetCtx, userID); resetErr != nil {
		c.log.Error().Err(resetErr).Str("user_id", userID).Msg("session reset failed")
	} else {
		c.metrics.ObserveReset("completion_failure")
	}
	return Reply{Text: FallbackCircuitBreaker, Fallback: true, ErrorClass: class, Latency: latency}
}

func (c *Client) complete(ctx context.Context, userID, text string) (string, error) {
	if err := c.store.AppendUserTurn(ctx, userID, text); err != nil {
		return "", fmt.Errorf("append user turn: %w", err)
	}
	history, err := c.store.History(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}

	callCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	content, err := c.provider.Complete(callCtx, Request{
		Model:        c.cfg.Model,
		SystemPrompt: c.cfg.SystemPrompt,
		Messages:     history,
		Temperature:  c.cfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	if err := c.store.AppendAssistantTurn(ctx, userID, content); err != nil {
		return "", fmt.Errorf("append assistant turn: %w", err)
	}
	return content, nil
}
