package logging

import "context"

type contextKey string

const (
	modeKey         contextKey = "gallery_mode"
	modalSessionKey contextKey = "modal_session"
)

// WithMode adds the active gallery mode to the context.
func WithMode(ctx context.Context, mode string) context.Context {
	return context.WithValue(ctx, modeKey, mode)
}

// WithModalSession adds a modal viewer session ID to the context.
func WithModalSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, modalSessionKey, sessionID)
}

// GetMode retrieves the gallery mode from the context.
// Returns empty string if not present.
func GetMode(ctx context.Context) string {
	if m, ok := ctx.Value(modeKey).(string); ok {
		return m
	}
	return ""
}

// GetModalSession retrieves the modal session ID from the context.
// Returns empty string if not present.
func GetModalSession(ctx context.Context) string {
	if id, ok := ctx.Value(modalSessionKey).(string); ok {
		return id
	}
	return ""
}
