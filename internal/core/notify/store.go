// Package notify defines the user-facing notification channel.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single transient notice shown to the user.
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Notifier delivers a human readable message to the user. Implementations
// must not block for long and must be safe for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, level Level, message string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, level Level, message string) {
	f(ctx, level, message)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, Level, string) {})

// Errorf is shorthand for an error level notification.
func Errorf(ctx context.Context, n Notifier, format string, args ...any) {
	n.Notify(ctx, LevelError, fmt.Sprintf(format, args...))
}

// Infof is shorthand for an info level notification.
func Infof(ctx context.Context, n Notifier, format string, args ...any) {
	n.Notify(ctx, LevelInfo, fmt.Sprintf(format, args...))
}

// Recorder keeps every notification in memory. It backs the TUI toast
// history and is handy in tests.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
	now   func() time.Time
}

var _ Notifier = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Notify records the notification.
func (r *Recorder) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Level: level, Message: message, CreatedAt: r.now()})
}

// List returns a copy of all recorded notifications, oldest first.
func (r *Recorder) List() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Count returns the number of recorded notifications.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Clear drops all recorded notifications.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}
