package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries the HMAC of the raw body keyed by the app secret.
const SignatureHeader = "X-Hub-Signature-256"

var ErrInvalidSignature = errors.New("invalid webhook signature")

// VerifySignature checks a "sha256=<hex>" header against body.
func VerifySignature(body []byte, header, appSecret string) error {
	sig, ok := strings.CutPrefix(strings.TrimSpace(header), "sha256=")
	if !ok || sig == "" {
		return ErrInvalidSignature
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, computeHMACSHA256(body, appSecret)) {
		return ErrInvalidSignature
	}
	return nil
}

// Sign returns the header value Meta would send for body.
func Sign(body []byte, appSecret string) string {
	return "sha256=" + hex.EncodeToString(computeHMACSHA256(body, appSecret))
}

func computeHMACSHA256(body []byte, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return h.Sum(nil)
}
