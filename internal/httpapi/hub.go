package httpapi

import (
	"sync"

	"github.com/antoniostano/luna/internal/protocol"
)

// Hub fans relay events out to websocket subscribers. Publish never blocks:
// a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

type Subscription struct {
	hub    *Hub
	events chan protocol.RelayEvent

	mu      sync.Mutex
	userID  string
	dropped int
}

func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, events: make(chan protocol.RelayEvent, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Publish(ev protocol.RelayEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		sub.offer(ev)
	}
}

// Subscribers reports the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (s *Subscription) Events() <-chan protocol.RelayEvent { return s.events }

// SetFilter limits the subscription to one user; empty clears it.
func (s *Subscription) SetFilter(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

// Dropped reports events skipped because the buffer was full.
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close unsubscribes and closes the events channel. Safe to call twice.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.events)
}

// offer runs under the hub read lock, so events is never closed concurrently.
func (s *Subscription) offer(ev protocol.RelayEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID != "" && s.userID != ev.UserID {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.dropped++
	}
}
