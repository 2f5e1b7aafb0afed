package client

import (
	"errors"
	"fmt"

	"github.com/claude/atlas/internal/models"
)

// RequestError is a non-2xx response. Message is the server-supplied error
// text, or a generic fallback when the body had none.
type RequestError struct {
	Path    string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// NetworkError is a transport failure where no response was received.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// StreamError is an error envelope received during streamed generation.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// IsNetwork reports whether err is (or wraps) a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// StatusCode returns the HTTP status of a RequestError, or 0.
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// UserMessage returns the text to show for err. Server and validation
// messages are shown verbatim; anything else becomes fallback.
func UserMessage(err error, fallback string) string {
	var (
		re *RequestError
		se *StreamError
		ve *models.ValidationError
	)
	switch {
	case errors.As(err, &re) && re.Message != "":
		return re.Message
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	case errors.As(err, &ve):
		return ve.Message
	default:
		return fallback
	}
}
