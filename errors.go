package bimrag

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request failed validation.
	ErrValidation = errors.New("validation error")

	// ErrStreamRequestFailed indicates the backend rejected the request or
	// the transport broke before the stream finished. Both *RequestError and
	// ErrTransport match it with errors.Is.
	ErrStreamRequestFailed = errors.New("stream request failed")

	// ErrTransport indicates the underlying connection failed outside of
	// explicit cancellation (connect error, dropped connection mid-read).
	ErrTransport = fmt.Errorf("transport interrupted: %w", ErrStreamRequestFailed)

	// ErrStreamAborted indicates the caller cancelled the stream. It is not
	// a data error and should not be shown to users as a failure.
	ErrStreamAborted = errors.New("stream aborted")

	// ErrNoContent is returned by a Streamer when the backend answers with
	// 204 No Content: no relevant documents were found.
	ErrNoContent = errors.New("no content")

	// ErrFrameSkipped marks a frame whose payload could not be interpreted.
	// It is reported for diagnostics only and never ends a stream.
	ErrFrameSkipped = errors.New("frame skipped")
)

// RequestError is returned when the backend answers with a non-success HTTP
// status. Message holds the server-supplied error text when one could be
// parsed from the response body.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Is reports whether target is ErrStreamRequestFailed.
func (e *RequestError) Is(target error) bool {
	return target == ErrStreamRequestFailed
}
