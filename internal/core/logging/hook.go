package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts gallery_mode and modal_session from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if mode := GetMode(ctx); mode != "" {
		e.Str("gallery_mode", mode)
	}

	if id := GetModalSession(ctx); id != "" {
		e.Str("modal_session", id)
	}
}
