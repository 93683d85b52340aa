package gallery

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/logging"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/colonyops/lightbox/pkg/randid"
	"github.com/rs/zerolog"
)

// DefaultSwipeThreshold is the horizontal distance in pixels a swipe must
// exceed to count as navigation.
const DefaultSwipeThreshold = 200

// Phase is the modal viewer's state.
type Phase string

const (
	PhaseClosed   Phase = "closed"
	PhaseBuilding Phase = "building"
	PhaseReady    Phase = "ready"
	PhaseLoading  Phase = "loading"
)

// Direction is a step through the ordering.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Navigator drives the modal image viewer. It walks a logical ordering of
// every image id in the current mode and filter, loading store pages as the
// walk crosses page boundaries. When navigation requests overlap, the last
// one wins.
type Navigator struct {
	store     *Store
	notifier  notify.Notifier
	bus       *eventbus.EventBus
	threshold float64
	log       zerolog.Logger

	mu       sync.Mutex
	phase    Phase
	session  string
	epoch    uint64
	ordering []string
	index    int
	current  image.Record
	shown    bool
	intent   uint64
}

// NewNavigator creates a closed navigator. A threshold of zero selects
// DefaultSwipeThreshold.
func NewNavigator(store *Store, notifier notify.Notifier, bus *eventbus.EventBus, threshold float64, log zerolog.Logger) *Navigator {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	if notifier == nil {
		notifier = notify.Discard
	}

	return &Navigator{
		store:     store,
		notifier:  notifier,
		bus:       bus,
		threshold: threshold,
		log:       logging.Attach(log, "navigator"),
		phase:     PhaseClosed,
		index:     -1,
	}
}

// Open starts a viewer session on targetID. The ordering is the store's
// filtered id list when it has one, and the directory's list for the mode
// otherwise. If the target is not loaded, the page that holds it is fetched
// first.
func (n *Navigator) Open(ctx context.Context, targetID string) error {
	snap := n.store.Snapshot()
	ordering := snap.FilteredIDs
	if len(ordering) == 0 && n.store.Directory() != nil {
		ordering = n.store.Directory().IDs(snap.Mode)
	}
	idx := slices.Index(ordering, targetID)

	n.mu.Lock()
	n.intent++
	intent := n.intent
	n.phase = PhaseBuilding
	n.session = randid.Generate(8)
	n.epoch = snap.Epoch
	n.ordering = ordering
	n.index = idx
	n.current = image.Record{}
	n.shown = false
	session := n.session
	n.mu.Unlock()

	ctx = logging.WithModalSession(ctx, session)
	log := n.log.With().Str("session", session).Str("target", targetID).Int("index", idx).Logger()

	if idx < 0 {
		log.Debug().Int("ordering", len(ordering)).Msg("target not in ordering")
	}

	if page, ok := n.pageFor(targetID, idx, len(ordering)); ok {
		if err := n.store.SetPage(ctx, page); err != nil {
			n.abort(intent)
			return err
		}
	}

	rec, f := n.store.fetchByID(ctx, targetID)

	n.mu.Lock()
	if intent != n.intent {
		n.mu.Unlock()
		log.Debug().Msg("open superseded")
		return nil
	}
	if f != nil {
		n.reset()
		n.mu.Unlock()
		n.fail(ctx, f)
		return f
	}
	n.current = rec
	n.shown = true
	n.phase = PhaseReady
	total := len(n.ordering)
	n.mu.Unlock()

	log.Debug().Ctx(ctx).Msg("modal opened")
	n.bus.PublishModalNavigated(eventbus.ModalNavigatedPayload{Session: session, ImageID: rec.ID, Index: idx, Total: total})
	return nil
}

func (n *Navigator) abort(intent uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if intent == n.intent {
		n.reset()
	}
}

// GoAdjacent moves one step in dir. At either end of the ordering, on an
// empty ordering, or when the store has switched mode or filter since Open,
// it does nothing.
func (n *Navigator) GoAdjacent(ctx context.Context, dir Direction) error {
	storeEpoch := n.store.Epoch()

	n.mu.Lock()
	if n.phase == PhaseClosed || n.phase == PhaseBuilding {
		n.mu.Unlock()
		return nil
	}
	if n.epoch != storeEpoch {
		session := n.session
		n.reset()
		n.mu.Unlock()
		n.log.Debug().Str("session", session).Msg("gallery changed, closing modal")
		n.bus.PublishModalClosed(eventbus.ModalClosedPayload{Session: session})
		return nil
	}
	if n.index < 0 {
		n.mu.Unlock()
		return nil
	}
	candidate := n.index + int(dir)
	if candidate < 0 || candidate >= len(n.ordering) {
		n.mu.Unlock()
		return nil
	}

	n.intent++
	intent := n.intent
	n.index = candidate
	n.phase = PhaseLoading
	id := n.ordering[candidate]
	total := len(n.ordering)
	session := n.session
	n.mu.Unlock()

	ctx = logging.WithModalSession(ctx, session)
	log := n.log.With().
		Str("session", session).
		Str("dir", dir.String()).
		Str("target", id).
		Int("index", candidate).
		Uint64("intent", intent).
		Logger()

	if page, ok := n.pageFor(id, candidate, total); ok && n.isCurrent(intent) {
		log.Debug().Int("page", page).Msg("target outside pending page")
		if err := n.store.SetPage(ctx, page); err != nil {
			log.Debug().Err(err).Msg("page shift failed")
		}
	}

	if !n.isCurrent(intent) {
		log.Debug().Msg("navigation superseded")
		return nil
	}

	rec, f := n.store.fetchByID(ctx, id)

	n.mu.Lock()
	if intent != n.intent {
		n.mu.Unlock()
		log.Debug().Msg("navigation superseded")
		return nil
	}
	if f != nil {
		n.phase = PhaseReady
		if n.shown {
			n.index = slices.Index(n.ordering, n.current.ID)
		}
		n.mu.Unlock()
		n.fail(ctx, f)
		return f
	}
	n.current = rec
	n.shown = true
	n.phase = PhaseReady
	n.mu.Unlock()

	n.bus.PublishModalNavigated(eventbus.ModalNavigatedPayload{Session: session, ImageID: id, Index: candidate, Total: total})
	return nil
}

// pageFor returns the page to load before showing id at index i of an
// ordering of total ids. It compares against the page the store is moving
// to, so a page change still in flight is not mistaken for the loaded one.
func (n *Navigator) pageFor(id string, i, total int) (int, bool) {
	if i < 0 {
		return 0, false
	}
	pending := n.store.PendingPagination()
	page, ok := shiftPage(pending, i, total)
	if !ok {
		return 0, false
	}
	if pending.Page == n.store.LoadedPage() && n.store.Contains(id) {
		return 0, false
	}
	return page, true
}

// shiftPage returns the page holding the candidate index when it differs
// from the page in pg and lies within the ordering's page range.
func shiftPage(pg image.Pagination, candidate, total int) (int, bool) {
	if pg.PageSize == 0 {
		return 0, false
	}
	size := int(pg.PageSize)
	pages := int(math.Ceil(float64(total) / float64(size)))
	page := candidate / size
	if page == int(pg.Page) || page >= pages {
		return 0, false
	}
	return page, true
}

func (n *Navigator) isCurrent(intent uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return intent == n.intent
}

// Button handles the on-screen previous and next controls.
func (n *Navigator) Button(ctx context.Context, dir Direction) error {
	return n.GoAdjacent(ctx, dir)
}

// Key handles a keyboard key. It reports whether the key is a navigation
// key.
func (n *Navigator) Key(ctx context.Context, name string) (bool, error) {
	switch name {
	case "ArrowLeft", "left":
		return true, n.GoAdjacent(ctx, Prev)
	case "ArrowRight", "right":
		return true, n.GoAdjacent(ctx, Next)
	default:
		return false, nil
	}
}

// Swipe handles a horizontal touch gesture. Moving left by more than the
// threshold goes to the next image; moving right goes to the previous one.
func (n *Navigator) Swipe(ctx context.Context, startX, endX float64) error {
	length := startX - endX
	if math.Abs(length) <= n.threshold {
		return nil
	}
	if length > 0 {
		return n.GoAdjacent(ctx, Next)
	}
	return n.GoAdjacent(ctx, Prev)
}

// Close ends the session and drops the ordering.
func (n *Navigator) Close() {
	n.mu.Lock()
	if n.phase == PhaseClosed {
		n.mu.Unlock()
		return
	}
	session := n.session
	n.reset()
	n.mu.Unlock()

	n.bus.PublishModalClosed(eventbus.ModalClosedPayload{Session: session})
}

// reset must be called with n.mu held.
func (n *Navigator) reset() {
	n.intent++
	n.phase = PhaseClosed
	n.ordering = nil
	n.index = -1
	n.current = image.Record{}
	n.shown = false
}

// Phase returns the viewer state.
func (n *Navigator) Phase() Phase {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.phase
}

// Current returns the displayed record.
func (n *Navigator) Current() (image.Record, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.shown {
		return image.Record{}, false
	}
	return n.current.Clone(), true
}

// Index returns the position in the ordering, or -1 when the displayed
// image is not part of it.
func (n *Navigator) Index() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

// Len returns the length of the ordering.
func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ordering)
}

// IsFirst reports whether there is no previous image.
func (n *Navigator) IsFirst() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index <= 0 || len(n.ordering) == 0
}

// IsLast reports whether there is no next image.
func (n *Navigator) IsLast() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index < 0 || n.index >= len(n.ordering)-1
}

// ToggleLike likes or unlikes the displayed image as the signed in user.
func (n *Navigator) ToggleLike(ctx context.Context) error {
	rec, ok := n.Current()
	if !ok {
		return nil
	}
	user := ""
	if dir := n.store.Directory(); dir != nil {
		user = dir.UserName()
	}
	if user == "" {
		f := invalid("liking image", "no signed in user")
		n.fail(ctx, f)
		return f
	}
	return n.EditCurrent(ctx, image.InfoPatch{Likes: image.Ptr(rec.Info.ToggleLike(user))})
}

// AddTags adds the comma separated tags in text to the displayed image.
func (n *Navigator) AddTags(ctx context.Context, text string) error {
	rec, ok := n.Current()
	if !ok {
		return nil
	}
	tags := image.ParseTags(text)
	if len(tags) == 0 {
		return nil
	}
	return n.EditCurrent(ctx, image.InfoPatch{Tags: image.Ptr(rec.Info.WithTags(tags...))})
}

// RemoveTag removes tag from the displayed image.
func (n *Navigator) RemoveTag(ctx context.Context, tag string) error {
	rec, ok := n.Current()
	if !ok || !slices.Contains(rec.Info.Tags, tag) {
		return nil
	}
	return n.EditCurrent(ctx, image.InfoPatch{Tags: image.Ptr(rec.Info.WithoutTag(tag))})
}

// EditCurrent sends patch for the displayed image and shows the server's
// merged record afterwards.
func (n *Navigator) EditCurrent(ctx context.Context, patch image.InfoPatch) error {
	rec, ok := n.Current()
	if !ok || patch.IsEmpty() {
		return nil
	}

	records, err := n.store.EditRecords(ctx, []image.PartialUpdate{{ID: rec.ID, Info: patch}})
	if err != nil {
		return err
	}

	for _, r := range records {
		if r.ID == rec.ID {
			n.adopt(r)
		}
	}
	return nil
}

// adopt replaces the displayed record if it is still the one shown.
func (n *Navigator) adopt(r image.Record) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.shown && n.current.ID == r.ID {
		n.current = r.Clone()
	}
}

func (n *Navigator) fail(ctx context.Context, f *Failure) {
	n.log.Warn().Ctx(ctx).Str("kind", string(f.Kind)).Err(f.Err).Msg(f.Op + " failed")
	n.notifier.Notify(ctx, notify.LevelError, f.Message())
}
