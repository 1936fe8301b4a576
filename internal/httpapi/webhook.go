package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/antoniostano/luna/internal/webhook"
)

const (
	maxWebhookBody = 1 << 20
	eventReceived  = "EVENT_RECEIVED"
)

// handleVerify answers the Meta subscription handshake.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	challenge, err := webhook.Verify(q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"), s.cfg.VerifyToken)
	switch {
	case err == nil:
		s.log.Info().Msg("webhook verified")
		s.metrics.ObserveWebhook("verify", "ok")
		respondText(w, http.StatusOK, challenge)
	case errors.Is(err, webhook.ErrMissingParams):
		s.metrics.ObserveWebhook("verify", "bad_request")
		respondText(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
	default:
		s.log.Warn().Str("mode", q.Get("hub.mode")).Msg("webhook verification rejected")
		s.metrics.ObserveWebhook("verify", "forbidden")
		respondText(w, http.StatusForbidden, http.StatusText(http.StatusForbidden))
	}
}

// handleEvent acknowledges a webhook delivery once its messages are queued.
// Relaying happens after the response is written.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		s.metrics.ObserveWebhook("event", "bad_request")
		respondText(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	if s.cfg.AppSecret != "" {
		if err := webhook.VerifySignature(body, r.Header.Get(webhook.SignatureHeader), s.cfg.AppSecret); err != nil {
			s.log.Warn().Err(err).Msg("webhook signature rejected")
			s.metrics.ObserveWebhook("event", "unauthorized")
			respondText(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
			return
		}
	}

	var payload webhook.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.metrics.ObserveWebhook("event", "bad_request")
		respondText(w, http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
		return
	}

	msgs, err := webhook.ParseEvent(payload, s.cfg.InstagramObject)
	if err != nil {
		s.log.Debug().Str("object", payload.Object).Msg("ignoring webhook for unsupported object")
		s.metrics.ObserveWebhook("event", "not_found")
		respondText(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
		return
	}

	for _, msg := range msgs {
		// Rejections are reported by the dispatcher; the delivery is still acknowledged.
		_ = s.relay.Submit(msg)
	}
	s.metrics.ObserveWebhook("event", "ok")
	respondText(w, http.StatusOK, eventReceived)
}
