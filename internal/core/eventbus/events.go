// Package eventbus provides a typed publish/subscribe event bus that carries
// gallery state changes to renderers and notification sinks.
package eventbus

import (
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
)

// Event names a class of payloads on the bus.
type Event string

// Keep list sorted A-Z.
const (
	EventImagesDeleted         Event = "images.deleted"
	EventImagesShared          Event = "images.shared"
	EventImagesUpdated         Event = "images.updated"
	EventImagesUploaded        Event = "images.uploaded"
	EventModalClosed           Event = "modal.closed"
	EventModalNavigated        Event = "modal.navigated"
	EventModeChanged           Event = "gallery.mode-changed"
	EventNotificationPublished Event = "notification.published"
	EventPageLoaded            Event = "gallery.page-loaded"
	EventSelectionChanged      Event = "gallery.selection-changed"
)

// ImagesDeletedPayload is emitted after a bulk delete succeeds.
type ImagesDeletedPayload struct {
	Count int
}

// ImagesSharedPayload is emitted after a share change was submitted.
type ImagesSharedPayload struct {
	ImageID  string
	IsPublic bool
	OpenedTo []string
	// Partial is set when one of the two share writes failed.
	Partial bool
}

// ImagesUpdatedPayload is emitted after the server confirmed metadata edits.
type ImagesUpdatedPayload struct {
	IDs []string
}

// ImagesUploadedPayload is emitted after an upload succeeds.
type ImagesUploadedPayload struct {
	IDs []string
}

// ModalClosedPayload is emitted when a modal viewer session ends.
type ModalClosedPayload struct {
	Session string
}

// ModalNavigatedPayload is emitted when the modal viewer shows a new image.
type ModalNavigatedPayload struct {
	Session string
	ImageID string
	Index   int
	Total   int
}

// ModeChangedPayload is emitted when the gallery switches visibility mode.
type ModeChangedPayload struct {
	Mode image.Mode
}

// NotificationPublishedPayload carries a user-facing notice.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// PageLoadedPayload is emitted when a fetched page was applied to the store.
type PageLoadedPayload struct {
	Mode       image.Mode
	Pagination image.Pagination
	Count      int
}

// SelectionChangedPayload is emitted when the selection set changes.
type SelectionChangedPayload struct {
	Count int
}
