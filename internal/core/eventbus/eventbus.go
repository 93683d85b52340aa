package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

// EventBus delivers published events to subscribers on a single dispatch
// goroutine started with Start. Publishing never blocks; when the buffer is
// full the event is dropped and OnDrop hooks fire.
//
// A nil *EventBus is valid: publishing to it is a no-op.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	if bus == nil {
		return
	}
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func (bus *EventBus) PublishImagesDeleted(p ImagesDeletedPayload) { bus.send(EventImagesDeleted, p) }
func (bus *EventBus) PublishImagesShared(p ImagesSharedPayload)   { bus.send(EventImagesShared, p) }
func (bus *EventBus) PublishImagesUpdated(p ImagesUpdatedPayload) { bus.send(EventImagesUpdated, p) }
func (bus *EventBus) PublishImagesUploaded(p ImagesUploadedPayload) {
	bus.send(EventImagesUploaded, p)
}
func (bus *EventBus) PublishModalClosed(p ModalClosedPayload) { bus.send(EventModalClosed, p) }
func (bus *EventBus) PublishModalNavigated(p ModalNavigatedPayload) {
	bus.send(EventModalNavigated, p)
}
func (bus *EventBus) PublishModeChanged(p ModeChangedPayload) { bus.send(EventModeChanged, p) }
func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}
func (bus *EventBus) PublishPageLoaded(p PageLoadedPayload) { bus.send(EventPageLoaded, p) }
func (bus *EventBus) PublishSelectionChanged(p SelectionChangedPayload) {
	bus.send(EventSelectionChanged, p)
}

func (bus *EventBus) SubscribeImagesDeleted(fn func(ImagesDeletedPayload)) {
	bus.subscribe(EventImagesDeleted, func(p any) { fn(p.(ImagesDeletedPayload)) })
}

func (bus *EventBus) SubscribeImagesShared(fn func(ImagesSharedPayload)) {
	bus.subscribe(EventImagesShared, func(p any) { fn(p.(ImagesSharedPayload)) })
}

func (bus *EventBus) SubscribeImagesUpdated(fn func(ImagesUpdatedPayload)) {
	bus.subscribe(EventImagesUpdated, func(p any) { fn(p.(ImagesUpdatedPayload)) })
}

func (bus *EventBus) SubscribeImagesUploaded(fn func(ImagesUploadedPayload)) {
	bus.subscribe(EventImagesUploaded, func(p any) { fn(p.(ImagesUploadedPayload)) })
}

func (bus *EventBus) SubscribeModalClosed(fn func(ModalClosedPayload)) {
	bus.subscribe(EventModalClosed, func(p any) { fn(p.(ModalClosedPayload)) })
}

func (bus *EventBus) SubscribeModalNavigated(fn func(ModalNavigatedPayload)) {
	bus.subscribe(EventModalNavigated, func(p any) { fn(p.(ModalNavigatedPayload)) })
}

func (bus *EventBus) SubscribeModeChanged(fn func(ModeChangedPayload)) {
	bus.subscribe(EventModeChanged, func(p any) { fn(p.(ModeChangedPayload)) })
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) SubscribePageLoaded(fn func(PageLoadedPayload)) {
	bus.subscribe(EventPageLoaded, func(p any) { fn(p.(PageLoadedPayload)) })
}

func (bus *EventBus) SubscribeSelectionChanged(fn func(SelectionChangedPayload)) {
	bus.subscribe(EventSelectionChanged, func(p any) { fn(p.(SelectionChangedPayload)) })
}
