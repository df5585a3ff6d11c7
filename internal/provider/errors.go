package provider

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable is returned once retries against the provider are exhausted.
	ErrUnavailable = errors.New("league provider unavailable")
	// ErrSeasonNotStarted is returned when the provider has no data for the season yet.
	ErrSeasonNotStarted = errors.New("season has not started")
)

// StatusError captures a non-200 upstream response.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, msg)
}

// Retryable reports whether repeating the request could succeed. Client errors
// other than rate limiting (bad league id, expired cookies) are permanent.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr, true
	}
	return nil, false
}

func isPermanent(err error) bool {
	if errors.Is(err, ErrSeasonNotStarted) {
		return true
	}
	if statusErr, ok := AsStatusError(err); ok {
		return !statusErr.Retryable()
	}
	return false
}
