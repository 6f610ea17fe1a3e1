package gemini

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the generative language API.
// The status string mirrors Google's canonical codes so callers can
// classify failures without string-matching full messages.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error (status %d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err is a quota/rate-limit failure.
// A stage hitting this should stop trying sibling models: they share
// the same quota bucket.
func IsRateLimited(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == 429 || ae.Status == "RESOURCE_EXHAUSTED"
}

// IsNotFound reports whether err means the requested model or endpoint
// does not exist; the caller should move on to the next candidate.
func IsNotFound(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == 404 || ae.Status == "NOT_FOUND"
}
