package gallery

import (
	"context"
	"strings"
	"testing"

	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/eventbus/testbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sharedRecord(id string, openedTo ...string) image.Record {
	r := record(id)
	r.Info.OpenedTo = openedTo
	return r
}

func TestShareDraft(t *testing.T) {
	d := NewShareDraft(sharedRecord("a", "bob", "cid"))

	d.Add("dan")
	d.Add("bob")
	d.Remove("cid")
	d.Remove("nobody")

	assert.Equal(t, []image.ShareAction{
		{Name: "bob", Action: image.ShareAdd},
		{Name: "cid", Action: image.ShareRemove},
		{Name: "dan", Action: image.ShareAdd},
	}, d.Users())
	assert.Equal(t, []string{"bob", "dan"}, d.Names())
	assert.Equal(t, "a", d.ImageID)
}

func TestShareService_SetSharing(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend()
	backend.images = []image.Record{sharedRecord("a", "bob", "cid")}
	tb := testbus.New(t)
	notes := notify.NewRecorder()
	app := NewApp(backend, Account{UserName: "ann", Owned: []string{"a"}}, notes, tb.EventBus, Options{}, zerolog.Nop())
	require.NoError(t, app.Store.Initialize(ctx, image.ModePersonal))

	rec, ok := app.Store.GetByID("a")
	require.True(t, ok)
	d := NewShareDraft(rec)
	d.IsPublic = true
	d.Remove("bob")
	d.Add("dan")

	require.NoError(t, app.Share.SetSharing(ctx, "a", d.Sharing()))

	require.Len(t, backend.updateCalls, 1)
	patch := backend.updateCalls[0][0].Info
	require.NotNil(t, patch.OpenedTo)
	assert.Equal(t, []string{"cid", "dan"}, *patch.OpenedTo)
	assert.True(t, *patch.IsPublic)
	assert.False(t, *patch.SharedByLink)
	assert.Nil(t, patch.Tags)

	require.Len(t, backend.shareCalls, 1)
	assert.Equal(t, []string{"a"}, backend.shareCalls[0].ids)
	assert.Equal(t, []image.ShareAction{
		{Name: "bob", Action: image.ShareRemove},
		{Name: "dan", Action: image.ShareAdd},
	}, backend.shareCalls[0].users)

	got, _ := app.Store.GetByID("a")
	assert.True(t, got.Info.IsPublic)
	assert.Equal(t, []string{"cid", "dan"}, got.Info.OpenedTo)
	assert.Equal(t, 0, notes.Count())
	tb.AssertPublished(t, eventbus.EventImagesShared)
}

func TestShareService_PartialFailure(t *testing.T) {
	tests := []struct {
		name          string
		updateErr     error
		shareErr      error
		wantPublic    bool
		wantShareCall bool
	}{
		{name: "user sync fails", shareErr: errOffline, wantPublic: true, wantShareCall: true},
		{name: "visibility fails", updateErr: errOffline, wantPublic: false, wantShareCall: true},
		{name: "both fail", updateErr: errOffline, shareErr: errOffline, wantPublic: false, wantShareCall: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := newFakeBackend("a")
			h := newHarness(backend, 10)
			require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))
			backend.updateErr = tt.updateErr
			backend.shareErr = tt.shareErr

			err := h.share.SetSharing(ctx, "a", image.Sharing{
				IsPublic: true,
				Users:    []image.ShareAction{{Name: "bob", Action: image.ShareAdd}},
			})

			require.Error(t, err)
			assert.Equal(t, 1, h.notes.Count(), "one notification per share attempt")
			assert.Len(t, backend.shareCalls, 1)

			got, _ := h.store.GetByID("a")
			assert.Equal(t, tt.wantPublic, got.Info.IsPublic, "no rollback")
		})
	}
}

func TestShareService_AddUser(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend("a")
	backend.users["bob"] = true
	h := newHarness(backend, 10)

	t.Run("existing user", func(t *testing.T) {
		d := NewShareDraft(record("a"))
		require.NoError(t, h.share.AddUser(ctx, d, " bob "))
		assert.Equal(t, []string{"bob"}, d.Names())
	})

	t.Run("self", func(t *testing.T) {
		d := NewShareDraft(record("a"))
		err := h.share.AddUser(ctx, d, "ann")
		assert.True(t, IsKind(err, KindValidation))
		assert.Empty(t, d.Names())
	})

	t.Run("unknown user", func(t *testing.T) {
		d := NewShareDraft(record("a"))
		err := h.share.AddUser(ctx, d, "zed")
		assert.True(t, IsKind(err, KindNotFound))
		assert.Empty(t, d.Names())
	})
}

func TestShareService_ShareLink(t *testing.T) {
	h := newHarness(newFakeBackend(), 10)
	assert.Equal(t, "https://gallery.test/api/v1/public/standaloneShare/abc", h.share.ShareLink("abc"))
}

func TestShareService_ShareLinkQR(t *testing.T) {
	h := newHarness(newFakeBackend(), 10)

	out, err := h.share.ShareLinkQR("abc")
	require.NoError(t, err)

	code, err := qrcode.New("https://gallery.test/api/v1/public/standaloneShare/abc", qrcode.Medium)
	require.NoError(t, err)
	assert.Equal(t, code.ToSmallString(false), out)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	side := len(code.Bitmap())
	assert.Len(t, lines, (side+1)/2)

	_, err = h.share.ShareLinkQR("")
	assert.True(t, IsKind(err, KindValidation))

	_, err = h.share.ShareLinkQR(strings.Repeat("x", 4000))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
}
