package embedding

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrRateLimited marks a provider failure that is worth retrying after a pause
// (HTTP 429, quota exhaustion).
var ErrRateLimited = errors.New("embedding provider rate limited")

// IsRateLimit reports whether err belongs to the rate-limit class. Providers
// wrap ErrRateLimited where they can tell; SDK errors that only carry a message
// are classified by their text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted")
}

// StatusError converts a non-200 provider response into an error, tagging
// 429 responses as rate limited.
func StatusError(provider string, status int, body []byte) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w (status %d): %s", provider, ErrRateLimited, status, string(body))
	}
	return fmt.Errorf("%s embedding error (status %d): %s", provider, status, string(body))
}
