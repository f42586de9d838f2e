package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when TMDB has no resource at the requested path.
	ErrNotFound = errors.New("tmdb: not found")
	// ErrUnauthorized is returned when TMDB rejects the configured credential.
	ErrUnauthorized = errors.New("tmdb: unauthorized")
	// ErrRateLimited is returned when TMDB answers 429.
	ErrRateLimited = errors.New("tmdb: rate limited")
	// ErrMalformedResponse is returned when a 2xx body cannot be decoded into the expected shape.
	ErrMalformedResponse = errors.New("tmdb: malformed response")
)

// APIError carries a non-2xx TMDB reply. TMDB reports its own status_code and
// status_message alongside the HTTP status.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb: upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("tmdb: upstream returned %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// Is lets callers match an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}
