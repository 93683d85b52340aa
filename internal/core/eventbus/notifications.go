package eventbus

import (
	"context"
	"fmt"

	"github.com/colonyops/lightbox/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeImagesUploaded(func(p ImagesUploadedPayload) {
		if len(p.IDs) == 0 {
			return
		}
		r.notifyf(notify.LevelInfo, "Images uploaded!")
	})

	r.bus.SubscribeImagesDeleted(func(p ImagesDeletedPayload) {
		if p.Count == 0 {
			return
		}
		r.notifyf(notify.LevelInfo, "Images deleted!")
	})

	r.bus.SubscribeImagesShared(func(p ImagesSharedPayload) {
		if p.Partial {
			return
		}
		r.notifyf(notify.LevelInfo, "Sharing settings saved")
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// Notifier adapts the bus to notify.Notifier by publishing every notice as a
// NotificationPublished event.
type Notifier struct {
	bus *EventBus
}

var _ notify.Notifier = (*Notifier)(nil)

// NewNotifier returns a notifier that publishes onto bus.
func NewNotifier(bus *EventBus) *Notifier {
	return &Notifier{bus: bus}
}

func (n *Notifier) Notify(_ context.Context, level notify.Level, message string) {
	n.bus.PublishNotificationPublished(NotificationPublishedPayload{Level: level, Message: message})
}
