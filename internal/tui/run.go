package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/rs/zerolog"
)

// Bridge subscribes a notification buffer to the bus so notices published
// from any goroutine reach the running program.
func Bridge(bus *eventbus.EventBus) *NotificationBuffer {
	buffer := NewNotificationBuffer()
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		buffer.Push(notify.Notification{Level: p.Level, Message: p.Message})
	})
	return buffer
}

// Run starts the browser and blocks until the user quits or ctx is done.
func Run(ctx context.Context, app *gallery.App, bus *eventbus.EventBus, opts Options, log zerolog.Logger) error {
	m := New(ctx, app, Bridge(bus), opts, log)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}
