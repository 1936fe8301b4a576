package httpapi

import (
	"net/http"
	"slices"

	"github.com/antoniostano/luna/internal/session"
)

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	CompletionMode  string        `json:"completion_mode"`
	CompletionModel string        `json:"completion_model"`
	SessionStore    string        `json:"session_store"`
	Checks          []statusCheck `json:"checks"`
}

// handleStatus lists configuration checks an operator needs to fix before
// the relay can answer users. Secret values are never echoed.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	missing := s.cfg.MissingCredentials()
	checks := make([]statusCheck, 0, 6)

	checks = append(checks, credentialCheck("verify_token", "Webhook verification", "VERIFY_TOKEN", missing,
		"Set VERIFY_TOKEN to the value configured in the Meta app dashboard."))
	checks = append(checks, credentialCheck("page_access_token", "Instagram delivery", "PAGE_ACCESS_TOKEN", missing,
		"Set PAGE_ACCESS_TOKEN to a page token with instagram_manage_messages."))
	if s.cfg.CompletionMode == "mock" {
		checks = append(checks, statusCheck{
			ID:     "completion",
			Status: "warn",
			Label:  "Completion provider",
			Detail: "mock replies",
			Fix:    "Set COMPLETION_MODE=openai and DEEPSEEK_API_KEY for real replies.",
		})
	} else {
		checks = append(checks, credentialCheck("completion", "Completion provider", "DEEPSEEK_API_KEY", missing,
			"Set DEEPSEEK_API_KEY."))
	}

	if s.cfg.AppSecret == "" {
		checks = append(checks, statusCheck{
			ID:     "signature",
			Status: "warn",
			Label:  "Webhook signature",
			Detail: "not enforced",
			Fix:    "Set APP_SECRET to reject unsigned webhook deliveries.",
		})
	} else {
		checks = append(checks, statusCheck{ID: "signature", Status: "ok", Label: "Webhook signature", Detail: "enforced"})
	}

	backend := session.Backend(s.store)
	if backend == "memory" {
		checks = append(checks, statusCheck{
			ID:     "session_store",
			Status: "warn",
			Label:  "Session persistence",
			Detail: "in-memory only",
			Fix:    "Set DATABASE_URL or SQLITE_PATH to keep conversations across restarts.",
		})
	} else {
		checks = append(checks, statusCheck{ID: "session_store", Status: "ok", Label: "Session persistence", Detail: backend})
	}

	respondJSON(w, http.StatusOK, statusResponse{
		CompletionMode:  s.cfg.CompletionMode,
		CompletionModel: s.cfg.CompletionModel,
		SessionStore:    backend,
		Checks:          checks,
	})
}

func credentialCheck(id, label, envVar string, missing []string, fix string) statusCheck {
	if slices.Contains(missing, envVar) {
		return statusCheck{ID: id, Status: "error", Label: label, Detail: envVar + " is not set", Fix: fix}
	}
	return statusCheck{ID: id, Status: "ok", Label: label, Detail: "configured"}
}
