package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttach(t *testing.T) {
	var buf bytes.Buffer

	logger := Attach(zerolog.New(&buf), "gallery-store")
	ctx := WithModalSession(WithMode(context.Background(), "shared"), "abc123")
	logger.Info().Ctx(ctx).Msg("page loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "gallery-store", entry["component"])
	assert.Equal(t, "page loaded", entry["message"])
	assert.Equal(t, "shared", entry["gallery_mode"])
	assert.Equal(t, "abc123", entry["modal_session"])
}

func TestAttach_NoContext(t *testing.T) {
	var buf bytes.Buffer

	logger := Attach(zerolog.New(&buf), "share")
	logger.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "gallery_mode")
	assert.NotContains(t, entry, "modal_session")
}
