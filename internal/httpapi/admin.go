package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/antoniostano/luna/internal/session"
)

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.cfg.AdminToken)) != 1 {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid admin token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type sessionResponse struct {
	UserID string         `json:"user_id"`
	Turns  []session.Turn `json:"turns"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("list sessions failed")
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if users == nil {
		users = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"backend": session.Backend(s.store),
		"users":   users,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	turns, err := s.store.History(r.Context(), userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("load session failed")
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if len(turns) == 0 {
		respondError(w, http.StatusNotFound, "session_not_found", session.ErrNotFound.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{UserID: userID, Turns: turns})
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if err := s.store.Reset(r.Context(), userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("reset session failed")
		respondError(w, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	s.metrics.ObserveReset("admin")
	s.log.Info().Str("user_id", userID).Msg("session reset by operator")
	w.WriteHeader(http.StatusNoContent)
}
