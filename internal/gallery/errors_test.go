package gallery

import (
	"errors"
	"fmt"
	"testing"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "transport", err: errOffline, want: KindNetwork},
		{name: "not found", err: fmt.Errorf("get x: %w", image.ErrNotFound), want: KindNotFound},
		{name: "malformed", err: fmt.Errorf("decode: %w", image.ErrMalformedResponse), want: KindValidation},
		{name: "invalid input", err: image.ErrInvalidInput, want: KindValidation},
		{name: "already classified", err: &Failure{Kind: KindNotFound, Op: "x", Err: errOffline}, want: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classify("loading image", tt.err)
			assert.Equal(t, tt.want, f.Kind)
			assert.True(t, errors.Is(f, tt.err) || errors.Is(f, errOffline))
		})
	}
}

func TestFailure_Message(t *testing.T) {
	f := classify("deleting images", errOffline)

	assert.Equal(t, "Error while deleting images: connection refused", f.Message())
	assert.Equal(t, "deleting images: connection refused", f.Error())
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", f), KindNetwork))
	assert.False(t, IsKind(errOffline, KindNetwork))
}
