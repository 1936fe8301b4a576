package reliability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

// Error classes reported in logs and metrics. They never drive retries: the
// relay answers every upstream failure with a fallback reply.
const (
	ClassTimeout     = "timeout"
	ClassCanceled    = "canceled"
	ClassRateLimited = "rate_limited"
	ClassUpstream5xx = "upstream_5xx"
	ClassUpstream4xx = "upstream_4xx"
	ClassNetwork     = "network"
	ClassDecode      = "decode"
	ClassEmpty       = "empty"
	ClassUnknown     = "unknown"
)

var (
	// ErrMalformedResponse marks an upstream 2xx body that could not be used.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrEmptyResponse marks an upstream reply without any choice or content.
	ErrEmptyResponse = errors.New("empty upstream response")
)

// StatusError is a non-2xx answer from an upstream HTTP API.
type StatusError struct {
	Upstream string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s http status %d", e.Upstream, e.Code)
	}
	return fmt.Sprintf("%s http status %d: %s", e.Upstream, e.Code, e.Body)
}

// IsRetryableHTTPStatus classifies HTTP status codes that usually succeed
// when repeated.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err would likely clear on its own. It is
// logged for operators; calls are never repeated.
func IsTransient(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return IsRetryableHTTPStatus(statusErr.Code)
	}
	switch Classify(err) {
	case ClassTimeout, ClassNetwork:
		return true
	default:
		return false
	}
}

// Classify maps an upstream error to one of the Class constants.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Code == 429:
			return ClassRateLimited
		case statusErr.Code >= 500:
			return ClassUpstream5xx
		default:
			return ClassUpstream4xx
		}
	}

	if errors.Is(err, ErrEmptyResponse) {
		return ClassEmpty
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.Is(err, ErrMalformedResponse) || errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ClassDecode
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ClassTimeout
		}
		return ClassNetwork
	}
	return ClassUnknown
}

// Truncate shortens upstream bodies kept in error messages.
func Truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
