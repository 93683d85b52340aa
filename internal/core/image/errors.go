package image

import "errors"

var (
	// ErrNotFound is returned when an image id is unknown to the backend or
	// absent from a local collection.
	ErrNotFound = errors.New("image not found")

	// ErrMalformedResponse is returned when a backend response does not match
	// the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrInvalidInput is returned for caller supplied values that can never
	// succeed, such as a zero page size.
	ErrInvalidInput = errors.New("invalid input")
)
