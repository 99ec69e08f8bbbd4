// Package provider implements translation backends: Google Translate,
// OpenAI and Gemini chat models, and a mock for tests and dry runs.
package provider

import (
	"errors"
	"net"
	"strings"

	"github.com/ZaguanLabs/sitelai"
)

// Provider is an alias to the main package interface.
type Provider = sitelai.Provider

// TranslateRequest is an alias to the main package type.
type TranslateRequest = sitelai.TranslateRequest

func isRetryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"unavailable",
		"503",
		"502",
		"500",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// retryableStatus reports whether an HTTP status is worth retrying.
func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}
