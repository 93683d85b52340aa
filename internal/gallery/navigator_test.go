package gallery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openedHarness(t *testing.T, pageSize uint, target string, all ...string) *harness {
	t.Helper()
	ctx := context.Background()
	h := newHarness(newFakeBackend(all...), pageSize)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))
	require.NoError(t, h.nav.Open(ctx, target))
	return h
}

func TestNavigator_CrossPageScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(newFakeBackend("a", "b", "c", "d", "e"), 2)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))
	require.Equal(t, []string{"a", "b"}, pageIDs(h.store.Snapshot()))

	// Opening on c loads page 1.
	require.NoError(t, h.nav.Open(ctx, "c"))
	assert.Equal(t, PhaseReady, h.nav.Phase())
	assert.Equal(t, 2, h.nav.Index())
	assert.Equal(t, []string{"c", "d"}, pageIDs(h.store.Snapshot()))
	cur, ok := h.nav.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)

	// d is already loaded: no page fetch.
	calls := h.backend.listCount()
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	assert.Equal(t, 3, h.nav.Index())
	assert.Equal(t, calls, h.backend.listCount())
	assert.False(t, h.nav.IsLast())

	// e is on page 2.
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	assert.Equal(t, 4, h.nav.Index())
	assert.Equal(t, calls+1, h.backend.listCount())
	assert.Equal(t, []string{"e"}, pageIDs(h.store.Snapshot()))
	assert.Equal(t, uint(2), h.store.Snapshot().Pagination.Page)
	assert.True(t, h.nav.IsLast())

	cur, _ = h.nav.Current()
	assert.Equal(t, "e", cur.ID)

	// Walking back crosses into page 1 again.
	require.NoError(t, h.nav.GoAdjacent(ctx, Prev))
	assert.Equal(t, 3, h.nav.Index())
	assert.Equal(t, uint(1), h.store.Snapshot().Pagination.Page)
}

func TestNavigator_BoundariesAreNoops(t *testing.T) {
	tests := []struct {
		name   string
		target string
		dir    Direction
	}{
		{name: "prev at first", target: "a", dir: Prev},
		{name: "next at last", target: "c", dir: Next},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := openedHarness(t, 10, tt.target, "a", "b", "c")
			index := h.nav.Index()
			gets := len(h.backend.getCalls)
			lists := h.backend.listCount()

			require.NoError(t, h.nav.GoAdjacent(ctx, tt.dir))

			cur, _ := h.nav.Current()
			assert.Equal(t, tt.target, cur.ID)
			assert.Equal(t, index, h.nav.Index())
			assert.Equal(t, PhaseReady, h.nav.Phase())
			assert.Len(t, h.backend.getCalls, gets)
			assert.Equal(t, lists, h.backend.listCount())
		})
	}
}

func TestNavigator_FirstAndLast(t *testing.T) {
	h := openedHarness(t, 10, "a", "a", "b", "c")
	assert.True(t, h.nav.IsFirst())
	assert.False(t, h.nav.IsLast())

	require.NoError(t, h.nav.GoAdjacent(context.Background(), Next))
	assert.False(t, h.nav.IsFirst())
	assert.False(t, h.nav.IsLast())
}

func TestNavigator_TargetOutsideOrdering(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend("a", "b")
	backend.images = append(backend.images, record("stray"))
	h := newHarness(backend, 10)
	h.dir.ReplaceOwned([]string{"a", "b"})
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))

	require.NoError(t, h.nav.Open(ctx, "stray"))

	assert.Equal(t, -1, h.nav.Index())
	assert.True(t, h.nav.IsFirst())
	assert.True(t, h.nav.IsLast())

	gets := len(h.backend.getCalls)
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	require.NoError(t, h.nav.GoAdjacent(ctx, Prev))
	assert.Len(t, h.backend.getCalls, gets)
	cur, _ := h.nav.Current()
	assert.Equal(t, "stray", cur.ID)
}

func TestNavigator_EmptyOrdering(t *testing.T) {
	ctx := context.Background()
	h := newHarness(newFakeBackend(), 10)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))

	assert.True(t, h.nav.IsFirst())
	assert.True(t, h.nav.IsLast())
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	assert.Equal(t, PhaseClosed, h.nav.Phase())
}

func TestNavigator_OpenFailureCloses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(newFakeBackend("a"), 10)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))

	err := h.nav.Open(ctx, "missing")

	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
	assert.Equal(t, PhaseClosed, h.nav.Phase())
	_, ok := h.nav.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, h.notes.Count())
}

func TestNavigator_LoadFailureKeepsPreviousRecord(t *testing.T) {
	ctx := context.Background()
	h := openedHarness(t, 10, "a", "a", "b", "c")

	h.backend.getFn = func(context.Context, string) (image.Record, error) {
		return image.Record{}, errOffline
	}

	err := h.nav.GoAdjacent(ctx, Next)

	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork))
	cur, ok := h.nav.Current()
	require.True(t, ok)
	assert.Equal(t, "a", cur.ID)
	assert.Equal(t, 0, h.nav.Index())
	assert.Equal(t, PhaseReady, h.nav.Phase())
	assert.Equal(t, 1, h.notes.Count())
}

func TestNavigator_LastIntentWins(t *testing.T) {
	ctx := context.Background()
	h := openedHarness(t, 10, "a", "a", "b", "c", "d")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.backend.getFn = func(_ context.Context, id string) (image.Record, error) {
		if id == "b" {
			once.Do(func() { close(started) })
			<-release
		}
		return h.backend.lookup(id)
	}

	done := make(chan error, 1)
	go func() { done <- h.nav.GoAdjacent(ctx, Next) }()
	<-started

	require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	cur, _ := h.nav.Current()
	assert.Equal(t, "c", cur.ID)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "superseded navigation never returned")
	}

	cur, _ = h.nav.Current()
	assert.Equal(t, "c", cur.ID)
	assert.Equal(t, 2, h.nav.Index())
	assert.Equal(t, PhaseReady, h.nav.Phase())
}

func TestNavigator_RapidNavigationAcrossPagesConverges(t *testing.T) {
	ctx := context.Background()
	h := openedHarness(t, 2, "a", "a", "b", "c", "d", "e", "f")

	for range 5 {
		require.NoError(t, h.nav.GoAdjacent(ctx, Next))
	}

	cur, _ := h.nav.Current()
	assert.Equal(t, "f", cur.ID)
	assert.Equal(t, 5, h.nav.Index())
	assert.Equal(t, uint(2), h.store.Snapshot().Pagination.Page)
	assert.True(t, h.nav.IsLast())
}

func TestNavigator_FilteredOrdering(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend("a", "b", "c", "d")
	backend.images[1].Info.Tags = []string{"sea"}
	backend.images[3].Info.Tags = []string{"sea"}
	h := newHarness(backend, 10)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))
	require.NoError(t, h.store.SetFilter(ctx, "sea"))

	require.NoError(t, h.nav.Open(ctx, "b"))
	assert.Equal(t, 2, h.nav.Len())
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))

	cur, _ := h.nav.Current()
	assert.Equal(t, "d", cur.ID)
	assert.True(t, h.nav.IsLast())
}

func TestNavigator_EpochChangeClosesSession(t *testing.T) {
	ctx := context.Background()
	h := openedHarness(t, 10, "a", "a", "b")

	require.NoError(t, h.store.SetFilter(ctx, "nothing"))
	gets := len(h.backend.getCalls)

	require.NoError(t, h.nav.GoAdjacent(ctx, Next))

	assert.Equal(t, PhaseClosed, h.nav.Phase())
	assert.Len(t, h.backend.getCalls, gets)
}

func TestNavigator_Close(t *testing.T) {
	h := openedHarness(t, 10, "b", "a", "b")

	h.nav.Close()

	assert.Equal(t, PhaseClosed, h.nav.Phase())
	assert.Equal(t, 0, h.nav.Len())
	assert.Equal(t, -1, h.nav.Index())
	require.NoError(t, h.nav.GoAdjacent(context.Background(), Prev))
	assert.Equal(t, PhaseClosed, h.nav.Phase())
}

func TestNavigator_InputChannels(t *testing.T) {
	tests := []struct {
		name    string
		input   func(ctx context.Context, n *Navigator) error
		wantIdx int
	}{
		{name: "button next", input: func(ctx context.Context, n *Navigator) error { return n.Button(ctx, Next) }, wantIdx: 2},
		{name: "button prev", input: func(ctx context.Context, n *Navigator) error { return n.Button(ctx, Prev) }, wantIdx: 0},
		{name: "arrow right", input: func(ctx context.Context, n *Navigator) error { _, err := n.Key(ctx, "ArrowRight"); return err }, wantIdx: 2},
		{name: "left", input: func(ctx context.Context, n *Navigator) error { _, err := n.Key(ctx, "left"); return err }, wantIdx: 0},
		{name: "other key", input: func(ctx context.Context, n *Navigator) error { _, err := n.Key(ctx, "Space"); return err }, wantIdx: 1},
		{name: "swipe left past threshold", input: func(ctx context.Context, n *Navigator) error { return n.Swipe(ctx, 400, 150) }, wantIdx: 2},
		{name: "swipe right past threshold", input: func(ctx context.Context, n *Navigator) error { return n.Swipe(ctx, 100, 350) }, wantIdx: 0},
		{name: "swipe at threshold", input: func(ctx context.Context, n *Navigator) error { return n.Swipe(ctx, 300, 100) }, wantIdx: 1},
		{name: "short swipe", input: func(ctx context.Context, n *Navigator) error { return n.Swipe(ctx, 100, 120) }, wantIdx: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := openedHarness(t, 10, "b", "a", "b", "c")
			require.NoError(t, tt.input(context.Background(), h.nav))
			assert.Equal(t, tt.wantIdx, h.nav.Index())
		})
	}
}

func TestNavigator_EditCurrent(t *testing.T) {
	ctx := context.Background()
	h := openedHarness(t, 10, "a", "a", "b")

	require.NoError(t, h.nav.ToggleLike(ctx))
	cur, _ := h.nav.Current()
	assert.Equal(t, []string{"ann"}, cur.Info.Likes)

	require.NoError(t, h.nav.AddTags(ctx, "sea, sky"))
	cur, _ = h.nav.Current()
	assert.Equal(t, []string{"sea", "sky"}, cur.Info.Tags)

	require.NoError(t, h.nav.RemoveTag(ctx, "sea"))
	cur, _ = h.nav.Current()
	assert.Equal(t, []string{"sky"}, cur.Info.Tags)

	loaded, _ := h.store.GetByID("a")
	assert.Equal(t, []string{"sky"}, loaded.Info.Tags)

	require.NoError(t, h.nav.ToggleLike(ctx))
	cur, _ = h.nav.Current()
	assert.Empty(t, cur.Info.Likes)
	assert.Len(t, h.backend.updateCalls, 4)
}

func TestNavigator_RecoversAfterFailedPageChange(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend("a", "b", "c", "d")
	h := newHarness(backend, 2)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))

	backend.listErr = errOffline
	require.Error(t, h.store.SetPage(ctx, 1))
	backend.listErr = nil

	require.NoError(t, h.nav.Open(ctx, "b"))
	require.NoError(t, h.nav.GoAdjacent(ctx, Next))

	cur, ok := h.nav.Current()
	require.True(t, ok)
	assert.Equal(t, "c", cur.ID)
	assert.True(t, h.store.Contains("c"))
	st := h.store.Snapshot()
	assert.Equal(t, uint(1), st.Pagination.Page)
	assert.Equal(t, []string{"c", "d"}, pageIDs(st))
}

func TestNavigator_ReversalDuringPageShift(t *testing.T) {
	ctx := context.Background()
	backend := newFakeBackend("a", "b", "c", "d")
	h := newHarness(backend, 2)
	require.NoError(t, h.store.Initialize(ctx, image.ModePersonal))
	require.NoError(t, h.nav.Open(ctx, "b"))

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	backend.mu.Lock()
	backend.listFn = func(_ context.Context, q image.PageQuery) (image.Page, error) {
		if q.Page == 1 {
			once.Do(func() { close(started) })
			<-release
		}
		return backend.page(q), nil
	}
	backend.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- h.nav.GoAdjacent(ctx, Next) }()
	<-started

	require.NoError(t, h.nav.GoAdjacent(ctx, Prev))

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		require.Fail(t, "page shift never returned")
	}

	cur, ok := h.nav.Current()
	require.True(t, ok)
	assert.Equal(t, "b", cur.ID)
	assert.Equal(t, 1, h.nav.Index())
	st := h.store.Snapshot()
	assert.Equal(t, uint(0), st.Pagination.Page)
	assert.Equal(t, []string{"a", "b"}, pageIDs(st))
}
