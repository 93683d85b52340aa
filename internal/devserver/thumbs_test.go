package devserver

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestThumbnail(t *testing.T) {
	t.Run("scales wide images", func(t *testing.T) {
		out, err := thumbnail(pngBytes(t, 600, 400), 300)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 300, cfg.Width)
		assert.Equal(t, 200, cfg.Height)
	})

	t.Run("keeps narrow images", func(t *testing.T) {
		out, err := thumbnail(pngBytes(t, 120, 80), 300)
		require.NoError(t, err)

		cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.Width)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := thumbnail([]byte("not an image"), 300)
		assert.Error(t, err)
	})
}
