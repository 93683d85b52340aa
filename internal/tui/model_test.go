package tui

import (
	"bytes"
	"context"
	goimage "image"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/colonyops/lightbox/internal/api"
	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/eventbus/testbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/internal/devserver"
	"github.com/colonyops/lightbox/internal/gallery"
	"github.com/colonyops/lightbox/pkg/tuitest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	m   *Model
	app *gallery.App
	bus *testbus.Bus
}

func newHarness(t *testing.T, uploads int) *harness {
	t.Helper()
	ctx := context.Background()

	srv := httptest.NewServer(devserver.New(devserver.Options{}, devserver.NewCatalog(), devserver.NewMemoryBlobs(), zerolog.Nop()).Router())
	t.Cleanup(srv.Close)

	anon := api.New(srv.URL+devserver.BasePath, 0, zerolog.Nop())
	acc, err := anon.Register(ctx, api.Registration{UserName: "ann", Password: "secret"})
	require.NoError(t, err)
	client := anon.WithSession(acc.Session())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, goimage.NewRGBA(goimage.Rect(0, 0, 4, 4))))
	files := make([]image.Upload, uploads)
	for i := range files {
		files[i] = image.Upload{Name: string(rune('1'+i)) + ".png", Data: buf.Bytes()}
	}
	if uploads > 0 {
		_, err = client.Upload(ctx, files)
		require.NoError(t, err)
	}

	acc, err = client.CurrentAccount(ctx)
	require.NoError(t, err)

	tb := testbus.New(t)
	app := gallery.NewApp(client, gallery.Account{
		UserName: acc.UserName,
		Owned:    acc.UserOwnedImages,
		OpenedTo: acc.UserOpenedToImages,
	}, eventbus.NewNotifier(tb.EventBus), tb.EventBus, gallery.Options{PageSize: 2}, zerolog.Nop())

	m := New(ctx, app, Bridge(tb.EventBus), Options{Mode: image.ModePersonal}, zerolog.Nop())
	m.Update(tuitest.WindowSize(100, 40))
	runOp(t, m, m.initialize())

	return &harness{m: m, app: app, bus: tb}
}

// runOp executes a gallery command synchronously and feeds its result back.
func runOp(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	done, ok := cmd().(opDoneMsg)
	require.True(t, ok, "expected a gallery operation")
	m.Update(done)
}

// pressOp sends a key that starts a gallery operation and waits for it.
func (h *harness) pressOp(t *testing.T, msg tea.Msg) {
	t.Helper()
	_, cmd := h.m.Update(msg)
	runOp(t, h.m, cmd)
}

func (h *harness) press(msgs ...tea.Msg) {
	for _, msg := range msgs {
		h.m.Update(msg)
	}
}

func (h *harness) view() string {
	return tuitest.StripANSI(h.m.View())
}

func TestModel_InitLoadsFirstPage(t *testing.T) {
	h := newHarness(t, 5)

	snap := h.app.Store.Snapshot()
	assert.Len(t, snap.Images, 2)
	assert.Equal(t, 0, h.m.pending)

	out := h.view()
	assert.Contains(t, out, "page 1/3")
	assert.Contains(t, out, "> 1.png")
	assert.Contains(t, out, "@ann")
}

func TestModel_Paging(t *testing.T) {
	h := newHarness(t, 5)

	h.pressOp(t, tuitest.KeyPress('l'))
	assert.Equal(t, uint(1), h.app.Store.Snapshot().Pagination.Page)
	assert.Contains(t, h.view(), "3.png")

	h.pressOp(t, tuitest.KeyPress('h'))
	assert.Equal(t, uint(0), h.app.Store.Snapshot().Pagination.Page)

	_, cmd := h.m.Update(tuitest.KeyPress('h'))
	assert.Nil(t, cmd, "no page before the first")
}

func TestModel_ModalNavigatesAcrossPages(t *testing.T) {
	h := newHarness(t, 5)

	h.press(tuitest.KeyDown())
	h.pressOp(t, tuitest.KeyEnter())
	require.Equal(t, stateModal, h.m.state)

	cur, ok := h.app.Navigator.Current()
	require.True(t, ok)
	assert.Equal(t, "2.png", cur.Info.Title)

	h.pressOp(t, tuitest.Key(tea.KeyRight))
	cur, _ = h.app.Navigator.Current()
	assert.Equal(t, "3.png", cur.Info.Title)
	assert.Equal(t, uint(1), h.app.Store.Snapshot().Pagination.Page)
	assert.Contains(t, h.view(), "3/5")

	h.press(tuitest.KeyPress('q'))
	assert.Equal(t, stateGrid, h.m.state)
	assert.Equal(t, gallery.PhaseClosed, h.app.Navigator.Phase())
}

func TestModel_AddTagsFromModal(t *testing.T) {
	h := newHarness(t, 1)

	h.pressOp(t, tuitest.KeyEnter())
	h.press(tuitest.KeyPress('t'))
	require.Equal(t, stateInput, h.m.state)
	h.press(tuitest.Type("sea, sky")...)

	h.pressOp(t, tuitest.KeyEnter())
	assert.Equal(t, stateModal, h.m.state)

	cur, _ := h.app.Navigator.Current()
	assert.Equal(t, []string{"sea", "sky"}, cur.Info.Tags)
	assert.Contains(t, h.view(), "sea, sky")
}

func TestModel_ToggleLinkSharing(t *testing.T) {
	h := newHarness(t, 1)

	h.pressOp(t, tuitest.KeyEnter())
	h.pressOp(t, tuitest.KeyPress('o'))

	cur, _ := h.app.Navigator.Current()
	assert.True(t, cur.Info.SharedByLink)
	assert.Contains(t, h.view(), "/public/standaloneShare/"+cur.ID)
}

func TestModel_GroupSelectDelete(t *testing.T) {
	h := newHarness(t, 3)

	h.press(tuitest.KeyPress('g'), tuitest.KeyPress(' '))
	assert.Equal(t, 1, h.app.Store.Selection().Len())
	assert.Contains(t, h.view(), "[x] 1.png")

	h.press(tuitest.KeyPress('d'))
	require.Equal(t, stateConfirmDelete, h.m.state)
	assert.Contains(t, h.view(), "Delete 1 image(s)?")

	h.pressOp(t, tuitest.KeyPress('y'))
	assert.Equal(t, uint(2), h.app.Store.Snapshot().Pagination.Total)
	assert.Equal(t, 0, h.app.Store.Selection().Len())
}

func TestModel_DeleteCancelled(t *testing.T) {
	h := newHarness(t, 1)

	h.press(tuitest.KeyPress('g'), tuitest.KeyPress(' '), tuitest.KeyPress('d'))
	_, cmd := h.m.Update(tuitest.KeyPress('n'))

	assert.Nil(t, cmd)
	assert.Equal(t, stateGrid, h.m.state)
	assert.Equal(t, uint(1), h.app.Store.Snapshot().Pagination.Total)
}

func TestModel_Filter(t *testing.T) {
	h := newHarness(t, 5)

	h.press(tuitest.KeyPress('/'))
	h.press(tuitest.Type("4.png")...)
	h.pressOp(t, tuitest.KeyEnter())

	snap := h.app.Store.Snapshot()
	assert.Equal(t, "4.png", snap.Filter)
	require.Len(t, snap.Images, 1)
	assert.Contains(t, h.view(), "filter: 4.png")

	h.press(tuitest.KeyPress('/'), tuitest.Key(tea.KeyEsc))
	assert.Equal(t, stateGrid, h.m.state)
	assert.Equal(t, "4.png", h.app.Store.Snapshot().Filter)
}

func TestModel_NextModeReinitializes(t *testing.T) {
	h := newHarness(t, 2)

	h.pressOp(t, tuitest.Key(tea.KeyTab))

	snap := h.app.Store.Snapshot()
	assert.Equal(t, image.ModeShared, snap.Mode)
	assert.Empty(t, snap.Images)
	assert.Contains(t, h.view(), "No images")
}

func TestModel_PageSize(t *testing.T) {
	h := newHarness(t, 5)

	h.pressOp(t, tuitest.KeyPress('+'))
	assert.Len(t, h.app.Store.Snapshot().Images, 5)

	h.pressOp(t, tuitest.KeyPress('-'))
	assert.Equal(t, uint(2), h.app.Store.Snapshot().Pagination.PageSize)
}

func TestModel_NotificationsBecomeToasts(t *testing.T) {
	h := newHarness(t, 0)

	notify.Errorf(context.Background(), eventbus.NewNotifier(h.bus.EventBus), "Error while %s: %s", "testing", "boom")

	msg := h.m.buffer.WaitForSignal()()
	_, cmd := h.m.Update(msg)
	assert.NotNil(t, cmd)
	assert.True(t, h.m.toasts.HasToasts())
	assert.Contains(t, h.view(), "Error while testing: boom")

	h.m.toasts.Tick(defaultToastTTL)
	h.m.Update(toastTickMsg(time.Now()))
	assert.False(t, h.m.toasts.HasToasts())
	assert.False(t, h.m.toasts.ticking)
}
