package reliability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRetryableHTTPStatus(tc.code), "status %d", tc.code)
	}
}

func TestClassify(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), ClassTimeout},
		{"canceled", context.Canceled, ClassCanceled},
		{"429", &StatusError{Code: 429}, ClassRateLimited},
		{"502", fmt.Errorf("wrapped: %w", &StatusError{Code: 502}), ClassUpstream5xx},
		{"401", &StatusError{Code: 401}, ClassUpstream4xx},
		{"empty", ErrEmptyResponse, ClassEmpty},
		{"malformed", fmt.Errorf("decode: %w", ErrMalformedResponse), ClassDecode},
		{"json syntax", syntaxErr, ClassDecode},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ClassNetwork},
		{"other", errors.New("boom"), ClassUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.err), tc.name)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &StatusError{Code: 429}, true},
		{"bad request", &StatusError{Code: 400}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"empty", ErrEmptyResponse, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsTransient(tc.err), tc.name)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Upstream: "graph", Code: 400, Body: `{"error":"bad"}`}
	assert.Equal(t, `graph http status 400: {"error":"bad"}`, err.Error())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "¡Ho", Truncate("¡Hola!", 3))
	assert.Equal(t, "short", Truncate("short", 10))
}
