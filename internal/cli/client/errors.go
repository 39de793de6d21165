package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired is returned once the refresh token has been rejected.
	// The local session is cleared before it is returned.
	ErrSessionExpired = errors.New("session expired. Please run 'pixelshop login' again")

	// ErrInvalidID is returned for resource IDs that are not UUIDs
	ErrInvalidID = errors.New("invalid id")
)

// APIError is a non-successful API response
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
