package api

import (
	"errors"
	"fmt"
)

// ErrNoBaseURL is wrapped by every call on a Client built without a base URL.
var ErrNoBaseURL = errors.New("api: base URL not configured")

// Error is the single failure type returned by Client methods. StatusCode
// is the HTTP status for non-2xx responses and 0 when no response was
// received or the body could not be decoded.
type Error struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		body := e.Body
		if body == "" {
			body = e.Err.Error()
		}
		return fmt.Sprintf("%s: request failed with status %d: %s", e.Op, e.StatusCode, body)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an
// *Error or no response was received.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
