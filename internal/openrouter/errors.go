package openrouter

import "fmt"

// StatusError is returned when the completion or catalog endpoint answers
// with a non-success HTTP status. No streamed output precedes it.
type StatusError struct {
	// Status is the HTTP status code of the failed request.
	Status int

	// Body is a short excerpt of the response body, if any.
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("openrouter request failed: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("openrouter request failed: status %d", e.Status)
}

// Recoverable reports whether the status is worth retrying with another
// credential: auth failures, rate limits, and server-side errors.
func (e *StatusError) Recoverable() bool {
	switch e.Status {
	case 401, 403, 429:
		return true
	}
	return e.Status >= 500 && e.Status <= 599
}
