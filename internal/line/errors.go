package line

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is reported by New when no channel access token is set.
	ErrMissingCredential = errors.New("channel access token is required")

	// ErrInvalidArgument is returned before any network I/O when a recipient,
	// a text body or the message sequence is empty.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConfigError is a fatal construction-time error. It is never returned by a
// send operation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("line: invalid configuration %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// APIError is returned when the Messaging API answered with a non-2xx status.
type APIError struct {
	Op         Operation
	StatusCode int
	Body       []byte
	// RequestID is the X-Line-Request-Id response header, if any.
	RequestID string
}

func (e *APIError) Error() string {
	body := bytes.TrimSpace(e.Body)
	if len(body) == 0 {
		return fmt.Sprintf("failed to %s: request failed with status code %d", e.Op.summary(), e.StatusCode)
	}
	return fmt.Sprintf("failed to %s: request failed with status code %d: %s", e.Op.summary(), e.StatusCode, body)
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("line: %w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
