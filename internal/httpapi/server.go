package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/antoniostano/luna/internal/config"
	"github.com/antoniostano/luna/internal/observability"
	"github.com/antoniostano/luna/internal/session"
	"github.com/antoniostano/luna/internal/webhook"
)

// Submitter accepts inbound messages for asynchronous relaying.
type Submitter interface {
	Submit(msg webhook.Message) error
}

type Server struct {
	cfg      config.Config
	store    session.Store
	relay    Submitter
	hub      *Hub
	metrics  *observability.Metrics
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func New(cfg config.Config, store session.Store, relay Submitter, hub *Hub, metrics *observability.Metrics, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		store:   store,
		relay:   relay,
		hub:     hub,
		metrics: metrics,
		log:     log.With().Str("component", "httpapi").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Operator tools usually omit Origin; browsers must be same-origin.
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/webhook", s.handleVerify)
	r.Post("/webhook", s.handleEvent)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/status", s.handleStatus)

	if s.cfg.AdminToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/v1/sessions", s.handleListSessions)
			r.Get("/v1/sessions/{userID}", s.handleGetSession)
			r.Delete("/v1/sessions/{userID}", s.handleResetSession)
			r.Get("/v1/perf/latency", s.handlePerfLatency)
			r.Get("/v1/relay/events", s.handleEventsWS)
		})
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"session_store": session.Backend(s.store),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session store not ready")
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":        "unavailable",
			"session_store": session.Backend(s.store),
			"error":         err.Error(),
		})
		return
	}

	missing := s.cfg.MissingCredentials()
	status := "ready"
	if len(missing) > 0 {
		status = "degraded"
	}
	if missing == nil {
		missing = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":              status,
		"session_store":       session.Backend(s.store),
		"missing_credentials": missing,
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
