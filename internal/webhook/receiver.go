// Package webhook implements the Instagram side of the Meta webhook
// contract: subscription verification and unpacking of message deliveries.
package webhook

import (
	"crypto/subtle"
	"errors"
)

const ModeSubscribe = "subscribe"

var (
	ErrMissingParams      = errors.New("hub.mode and hub.verify_token are required")
	ErrVerificationFailed = errors.New("webhook verification failed")
	ErrUnsupportedObject  = errors.New("unsupported webhook object")
)

// Verify answers a subscription challenge. The challenge is returned
// unmodified only when mode is "subscribe" and token equals expected. An
// empty expected token never matches.
func Verify(mode, token, challenge, expected string) (string, error) {
	if mode == "" || token == "" {
		return "", ErrMissingParams
	}
	if mode != ModeSubscribe || expected == "" {
		return "", ErrVerificationFailed
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return "", ErrVerificationFailed
	}
	return challenge, nil
}

// ParseEvent extracts the text messages of a delivery payload. Only the first
// messaging item of each entry is considered. Entries without text and
// echoes of the page's own messages are skipped.
func ParseEvent(p Payload, object string) ([]Message, error) {
	if p.Object != object {
		return nil, ErrUnsupportedObject
	}

	var out []Message
	for _, entry := range p.Entry {
		if len(entry.Messaging) == 0 {
			continue
		}
		ev := entry.Messaging[0]
		if ev.Message == nil || ev.Message.Text == "" || ev.Message.IsEcho {
			continue
		}
		if ev.Sender.ID == "" {
			continue
		}
		out = append(out, Message{
			SenderID: ev.Sender.ID,
			Text:     ev.Message.Text,
			MID:      ev.Message.MID,
		})
	}
	return out, nil
}
