package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
)

// ProviderError is a failure reported by the completion endpoint itself.
type ProviderError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func newProviderError(status int, body *errorBody) *ProviderError {
	pe := &ProviderError{StatusCode: status}
	if body == nil {
		return pe
	}

	pe.Message = body.Message
	pe.Type = body.Type
	if len(body.Code) > 0 && string(body.Code) != "null" {
		if unquoted, err := strconv.Unquote(string(body.Code)); err == nil {
			pe.Code = unquoted
		} else {
			pe.Code = string(body.Code)
		}
	}
	return pe
}

func (e *ProviderError) Error() string {
	parts := []string{fmt.Sprintf("llm provider error (status %d)", e.StatusCode)}
	if e.Code != "" {
		parts = append(parts, "code="+e.Code)
	}
	if e.Type != "" {
		parts = append(parts, "type="+e.Type)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, " ")
}

// IsQuota reports billing or credit exhaustion.
func (e *ProviderError) IsQuota() bool {
	if e.Code == "insufficient_quota" || e.Type == "insufficient_quota" || e.Code == "402" {
		return true
	}
	if e.StatusCode == http.StatusPaymentRequired {
		return true
	}
	msg := strings.ToLower(e.Message)
	return strings.Contains(msg, "quota") || strings.Contains(msg, "insufficient credits")
}

// IsAuth reports rejected credentials. A 403 alone is not enough: OpenRouter
// also answers 403 for moderation refusals and region blocks.
func (e *ProviderError) IsAuth() bool {
	if e.Code == "invalid_api_key" || e.Type == "authentication_error" {
		return true
	}
	return e.StatusCode == http.StatusUnauthorized
}

// Temporary reports failures worth retrying.
func (e *ProviderError) Temporary() bool {
	if e.IsQuota() || e.IsAuth() {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Temporary()
	}

	// Transport failures (connection refused, reset) surface as net.Error,
	// *url.Error included. Malformed payloads do not.
	var netErr net.Error
	return errors.As(err, &netErr)
}
