package tenantflow

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoCredential is returned by a CredentialStore when no credential
// is persisted. It means "logged out", not a failure.
var ErrNoCredential = errors.New("tenantflow: no stored credential")

// ErrUnauthorized marks a request rejected with HTTP 401. Any API call
// failing with it forces a session logout.
var ErrUnauthorized = errors.New("tenantflow: unauthorized")

// APIError is a non-2xx response from the TenantFlow API. Message is
// the server's user-displayable error text when the body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tenantflow: api error (status %d)", e.Status)
	}
	return fmt.Sprintf("tenantflow: api error (status %d): %s", e.Status, e.Message)
}

// Is makes APIError with status 401 match ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage extracts a message suitable for direct display. It
// prefers the server-provided text and falls back to the given generic
// message for network failures and silent rejections.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsUnauthorized reports whether err is (or wraps) a 401 rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
