package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/colonyops/lightbox/internal/core/image"
)

var (
	// ErrMalformedResponse is returned when a response body cannot be
	// decoded or lacks a required field.
	ErrMalformedResponse = image.ErrMalformedResponse
	// ErrUnauthorized is returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	// Message is the server's error message, if it sent one.
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, msg)
}

// Is maps well known status codes onto sentinel errors so callers can use
// errors.Is without knowing about HTTP.
func (e *StatusError) Is(target error) bool {
	switch target {
	case image.ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	case image.ErrInvalidInput:
		return e.Code == http.StatusBadRequest
	default:
		return false
	}
}
