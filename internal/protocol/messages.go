package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies relay event feed payload variants.
type MessageType string

const (
	TypeRelayCompleted MessageType = "relay_completed"
	TypeRelayFallback  MessageType = "relay_fallback"
	TypeDeliveryFailed MessageType = "delivery_failed"
	TypeEventDropped   MessageType = "event_dropped"
	TypeRelayAbandoned MessageType = "relay_abandoned"

	TypeClientFilter MessageType = "client_filter"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// RelayEvent describes the outcome of relaying one inbound Instagram
// message. Message text is never included.
type RelayEvent struct {
	Type       MessageType `json:"type"`
	EventID    string      `json:"event_id"`
	UserID     string      `json:"user_id"`
	MessageID  string      `json:"message_id,omitempty"`
	ErrorClass string      `json:"error_class,omitempty"`
	LatencyMS  int64       `json:"latency_ms"`
	TSMs       int64       `json:"ts_ms"`
}

// NewRelayEvent stamps an event with a fresh id and the current time.
func NewRelayEvent(t MessageType, userID, messageID string, latency time.Duration) RelayEvent {
	return RelayEvent{
		Type:      t,
		EventID:   uuid.NewString(),
		UserID:    userID,
		MessageID: messageID,
		LatencyMS: latency.Milliseconds(),
		TSMs:      time.Now().UnixMilli(),
	}
}

// ClientFilter restricts a feed subscriber to one user. An empty UserID
// clears the filter.
type ClientFilter struct {
	Type   MessageType `json:"type"`
	UserID string      `json:"user_id"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientFilter:
		var msg ClientFilter
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		return msg, nil
	case "":
		return nil, errors.New("missing message type")
	default:
		return nil, ErrUnsupportedType
	}
}
