// Package messenger delivers replies through the Instagram Graph API.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/antoniostano/luna/internal/reliability"
)

// MessagingTypeResponse tags a reply to a message the user sent.
const MessagingTypeResponse = "RESPONSE"

var ErrMissingToken = errors.New("page access token is not configured")

type Recipient struct {
	ID string `json:"id"`
}

type Message struct {
	Text string `json:"text"`
}

// SendRequest is the Send API body.
type SendRequest struct {
	Recipient     Recipient `json:"recipient"`
	Message       Message   `json:"message"`
	MessagingType string    `json:"messaging_type"`
}

// Sender posts replies to the Send API. It never retries.
type Sender struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewSender(endpoint, pageAccessToken string, client *http.Client) *Sender {
	if client == nil {
		client = &http.Client{}
	}
	return &Sender{
		endpoint: strings.TrimSpace(endpoint),
		token:    strings.TrimSpace(pageAccessToken),
		client:   client,
	}
}

func (s *Sender) Send(ctx context.Context, recipientID, text string) error {
	if s.token == "" {
		return ErrMissingToken
	}

	payload, err := json.Marshal(SendRequest{
		Recipient:     Recipient{ID: recipientID},
		Message:       Message{Text: text},
		MessagingType: MessagingTypeResponse,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return fmt.Errorf("parse send endpoint: %w", err)
	}
	q := u.Query()
	q.Set("access_token", s.token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, which carries the token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("send request: %w", urlErr.Err)
		}
		return fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return &reliability.StatusError{
			Upstream: "graph",
			Code:     res.StatusCode,
			Body:     reliability.Truncate(strings.TrimSpace(string(body)), 400),
		}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
