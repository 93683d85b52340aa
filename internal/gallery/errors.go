package gallery

import (
	"errors"
	"fmt"

	"github.com/colonyops/lightbox/internal/core/image"
)

// Kind classifies a gallery failure.
type Kind string

const (
	KindNetwork    Kind = "network"
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not-found"
	// KindNoOp marks an operation that had nothing to do. It is never
	// returned as an error.
	KindNoOp Kind = "no-op"
)

// Failure is the error value returned by gallery operations. By the time a
// caller sees it the user has already been notified.
type Failure struct {
	Kind Kind
	Op   string
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Message is the human readable notice shown for the failure.
func (f *Failure) Message() string {
	return fmt.Sprintf("Error while %s: %v", f.Op, f.Err)
}

// IsKind reports whether err is a *Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == kind
}

func classify(op string, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}

	kind := KindNetwork
	switch {
	case errors.Is(err, image.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, image.ErrMalformedResponse), errors.Is(err, image.ErrInvalidInput):
		kind = KindValidation
	}

	return &Failure{Kind: kind, Op: op, Err: err}
}

func invalid(op, format string, args ...any) *Failure {
	return &Failure{Kind: KindValidation, Op: op, Err: fmt.Errorf("%w: %s", image.ErrInvalidInput, fmt.Sprintf(format, args...))}
}

func malformed(op, format string, args ...any) *Failure {
	return &Failure{Kind: KindValidation, Op: op, Err: fmt.Errorf("%w: %s", image.ErrMalformedResponse, fmt.Sprintf(format, args...))}
}

func validateRecords(op string, records []image.Record) *Failure {
	for i, r := range records {
		if r.ID == "" {
			return malformed(op, "record %d has no id", i)
		}
	}
	return nil
}
