package tui

import (
	"testing"
	"time"

	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/pkg/tuitest"
	"github.com/stretchr/testify/assert"
)

func TestToastController_Push_evicts_oldest_at_max(t *testing.T) {
	c := NewToastController()

	for i := range defaultMaxToasts + 2 {
		c.Push(notify.Notification{Level: notify.LevelInfo, Message: time.Duration(i).String()})
	}

	assert.Len(t, c.Toasts(), defaultMaxToasts)
	assert.Equal(t, "2ns", c.Toasts()[0].notification.Message)
}

func TestToastController_Tick_removes_expired(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "expires"})
	c.Tick(time.Second)
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "survives"})

	c.Tick(defaultToastTTL - time.Second)

	assert.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].notification.Message)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Dismiss()
	assert.False(t, c.HasToasts())

	c.Push(notify.Notification{Level: notify.LevelError, Message: "boom"})
	c.Dismiss()
	assert.False(t, c.HasToasts())
}

func TestToastController_View(t *testing.T) {
	c := NewToastController()
	assert.Empty(t, c.View())

	c.Push(notify.Notification{Level: notify.LevelError, Message: "Error while fetching images: offline"})
	out := tuitest.StripANSI(c.View())

	assert.Contains(t, out, "✘ Error while fetching images")
	assert.Equal(t, 0, toastLines(""))
}
