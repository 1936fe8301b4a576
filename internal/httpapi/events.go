package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/antoniostano/luna/internal/protocol"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 120 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleEventsWS streams relay outcome events to an operator. Clients may
// send a client_filter message to follow a single user.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "event feed not configured")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer sub.Close()
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		sub.SetFilter(userID)
	}
	s.log.Info().Int("subscribers", s.hub.Subscribers()).Msg("event feed connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(wsPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(ev); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	conn.SetReadLimit(4 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		parsed, err := protocol.ParseClientMessage(data)
		if err != nil {
			s.log.Debug().Err(err).Msg("ignoring invalid feed client message")
			continue
		}
		if f, ok := parsed.(protocol.ClientFilter); ok {
			sub.SetFilter(f.UserID)
		}
	}

	cancel()
	<-writerDone
	s.log.Info().Int("dropped", sub.Dropped()).Msg("event feed disconnected")
}
