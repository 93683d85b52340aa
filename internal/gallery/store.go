package gallery

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/logging"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/rs/zerolog"
)

// DefaultPageSize is used when the store is created without a page size.
const DefaultPageSize uint = 20

// State is the store's view of the gallery at one point in time. Values
// returned by Snapshot share no memory with the store.
type State struct {
	Mode        image.Mode
	Filter      string
	Pagination  image.Pagination
	Images      []image.Record
	FilteredIDs []string
	Selection   SelectionSet
	Loading     bool
	GroupSelect bool
	// Epoch changes whenever the mode or filter changes. Anything derived
	// from an older epoch, such as a modal ordering, is stale.
	Epoch uint64
}

func (s State) clone() State {
	out := s
	out.Images = make([]image.Record, len(s.Images))
	for i, r := range s.Images {
		out.Images[i] = r.Clone()
		out.Images[i].IsSelected = s.Selection.Has(r.ID)
	}
	out.FilteredIDs = slices.Clone(s.FilteredIDs)
	out.Selection = NewSelectionSet(s.Selection.Entries()...)
	return out
}

func (s State) index(id string) int {
	return slices.IndexFunc(s.Images, func(r image.Record) bool { return r.ID == id })
}

// Store owns the loaded page of the gallery and every operation that changes
// it. All methods are safe for concurrent use. The lock is never held across
// a backend call.
type Store struct {
	backend  Backend
	dir      *UserDirectory
	notifier notify.Notifier
	bus      *eventbus.EventBus
	pageSize uint
	log      zerolog.Logger

	mu    sync.Mutex
	state State
	want  request
	gen   uint64
}

// NewStore creates a store in personal mode with nothing loaded. Call
// Initialize to load the first page.
func NewStore(
	backend Backend,
	dir *UserDirectory,
	notifier notify.Notifier,
	bus *eventbus.EventBus,
	pageSize uint,
	log zerolog.Logger,
) *Store {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if notifier == nil {
		notifier = notify.Discard
	}

	st := State{
		Mode:       image.ModePersonal,
		Pagination: image.Pagination{PageSize: pageSize},
	}
	return &Store{
		backend:  backend,
		dir:      dir,
		notifier: notifier,
		bus:      bus,
		pageSize: pageSize,
		log:      logging.Attach(log, "gallery-store"),
		state:    st,
		want:     requestFor(st),
	}
}

// Snapshot returns a deep copy of the current state with IsSelected set on
// every loaded record.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Epoch returns the current mode/filter epoch.
func (s *Store) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Epoch
}

// Directory returns the user directory backing the store.
func (s *Store) Directory() *UserDirectory {
	return s.dir
}

// Initialize resets the store to defaults in the given mode and loads the
// first page. On failure the store is left loaded and empty.
func (s *Store) Initialize(ctx context.Context, mode image.Mode) error {
	if !mode.IsValid() {
		f := invalid("initializing gallery", "unknown mode %q", mode)
		s.fail(ctx, f)
		return f
	}

	s.mu.Lock()
	s.gen++
	s.state = State{
		Mode:       mode,
		Pagination: image.Pagination{PageSize: s.pageSize},
		Epoch:      s.state.Epoch + 1,
	}
	s.want = requestFor(s.state)
	s.mu.Unlock()

	ctx = logging.WithMode(ctx, string(mode))
	err := s.fetch(ctx, nil, true)

	s.bus.PublishModeChanged(eventbus.ModeChangedPayload{Mode: mode})
	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: 0})
	return err
}

// FetchPage loads the page described by the current mode, page, page size
// and filter. Only the response to the most recent fetch is applied.
func (s *Store) FetchPage(ctx context.Context) error {
	return s.fetch(ctx, nil, true)
}

// SetFilter trims text and loads the first page of the filtered collection.
// The selection is cleared once that page arrives.
func (s *Store) SetFilter(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	return s.fetch(ctx, func(r *request) {
		r.filter = text
		r.pagination.Page = 0
		r.fresh = true
	}, true)
}

// SetPage moves to page n, clamped into the known page range.
func (s *Store) SetPage(ctx context.Context, n int) error {
	return s.fetch(ctx, func(r *request) {
		r.pagination.Page = r.pagination.Clamp(uint(max(n, 0)))
	}, true)
}

// SetPageSize changes the page size and returns to the first page.
func (s *Store) SetPageSize(ctx context.Context, n int) error {
	if n < 1 {
		f := invalid("changing page size", "page size must be at least 1, got %d", n)
		s.fail(ctx, f)
		return f
	}

	return s.fetch(ctx, func(r *request) {
		r.pagination.PageSize = uint(n)
		r.pagination.Page = 0
	}, true)
}

// PendingPagination returns the pagination of the latest page request, or
// the loaded pagination when nothing is in flight.
func (s *Store) PendingPagination() image.Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.want.pagination
}

// LoadedPage returns the index of the page currently loaded.
func (s *Store) LoadedPage() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Pagination.Page
}

// request describes the page the store is moving to. It reaches State only
// when its response is applied.
type request struct {
	mode       image.Mode
	filter     string
	pagination image.Pagination
	// fresh starts a new epoch on apply even if the filter text is unchanged.
	fresh bool
}

func requestFor(st State) request {
	return request{mode: st.Mode, filter: st.Filter, pagination: st.Pagination}
}

// fetch applies mutate to the pending request and issues it under one lock
// so that no older response can land in between. A response is applied only
// if no newer fetch was issued while it was in flight. A failed request is
// dropped and the loaded state stays as it was.
func (s *Store) fetch(ctx context.Context, mutate func(*request), clamp bool) error {
	s.mu.Lock()
	req := s.want
	if mutate != nil {
		mutate(&req)
	}
	s.want = req
	s.gen++
	gen := s.gen
	s.state.Loading = true
	q := image.PageQuery{
		Mode:     req.mode,
		Page:     req.pagination.Page,
		PageSize: req.pagination.PageSize,
		Filter:   req.filter,
	}
	s.mu.Unlock()

	defer s.settle(gen)

	log := s.log.With().
		Str("mode", string(q.Mode)).
		Uint("page", q.Page).
		Uint("page_size", q.PageSize).
		Str("filter", q.Filter).
		Uint64("gen", gen).
		Logger()

	if q.Mode == image.ModePublic && s.dir != nil {
		if err := s.dir.RefreshPublic(ctx); err != nil {
			log.Warn().Err(err).Msg("public id list not refreshed")
		}
	}

	page, err := s.backend.ListImages(ctx, q)
	if err == nil {
		if f := validateRecords("fetching images", page.Images); f != nil {
			err = f
		}
	}
	if err != nil {
		f := classify("fetching images", err)
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			log.Debug().Err(err).Msg("stale fetch failed, ignoring")
			return nil
		}
		s.want = requestFor(s.state)
		s.mu.Unlock()
		s.fail(ctx, f)
		return f
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		log.Debug().Msg("stale page discarded")
		return nil
	}

	pg := image.Pagination{Page: q.Page, PageSize: q.PageSize, Total: page.FilteredCount}
	if !pg.Valid() {
		if clamp {
			s.want.pagination = image.Pagination{Page: pg.Clamp(q.Page), PageSize: q.PageSize, Total: pg.Total}
			s.mu.Unlock()
			log.Debug().Uint("total", pg.Total).Msg("page past the end, clamping")
			return s.fetch(ctx, nil, false)
		}
		pg.Page = pg.Clamp(q.Page)
	}
	if pg.Total == 0 {
		pg.Page = 0
	}

	images := make([]image.Record, len(page.Images))
	for i, r := range page.Images {
		images[i] = r.Clone()
	}

	next := s.state
	reset := req.fresh || req.mode != next.Mode || req.filter != next.Filter
	if reset {
		next.Epoch++
		next.Selection = next.Selection.Clear()
	}
	next.Mode = req.mode
	next.Filter = req.filter
	next.Images = images
	next.FilteredIDs = slices.Clone(page.FilteredIDs)
	next.Pagination = pg
	s.state = next
	s.want = requestFor(next)
	s.mu.Unlock()

	log.Debug().Ctx(ctx).Int("count", len(images)).Uint("total", pg.Total).Msg("page loaded")
	s.bus.PublishPageLoaded(eventbus.PageLoadedPayload{Mode: q.Mode, Pagination: pg, Count: len(images)})
	if reset {
		s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: 0})
	}
	return nil
}

func (s *Store) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// settle clears the loading flag once the latest fetch has finished.
func (s *Store) settle(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.state.Loading = false
	}
}

// Upload sends files to the backend, records the new ids as owned, and
// returns to the first page. Nothing is inserted locally on failure.
func (s *Store) Upload(ctx context.Context, files []image.Upload) ([]image.Record, error) {
	if len(files) == 0 {
		return nil, nil
	}

	const op = "uploading images"
	records, err := s.backend.Upload(ctx, files)
	if err == nil {
		if f := validateRecords(op, records); f != nil {
			err = f
		}
	}
	if err != nil {
		f := classify(op, err)
		s.fail(ctx, f)
		return nil, f
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	if s.dir != nil {
		s.dir.AppendOwned(ids...)
	}

	s.log.Info().Int("count", len(records)).Msg("images uploaded")
	s.bus.PublishImagesUploaded(eventbus.ImagesUploadedPayload{IDs: ids})

	if err := s.SetPage(ctx, 0); err != nil {
		s.log.Warn().Err(err).Msg("reload after upload failed")
	}
	return records, nil
}

// EditRecords sends partial updates and overwrites each loaded record with
// the server's merged version. Ids that are not loaded are left alone
// locally. The server records are returned.
func (s *Store) EditRecords(ctx context.Context, updates []image.PartialUpdate) ([]image.Record, error) {
	records, f := s.editRecords(ctx, updates)
	if f != nil {
		s.fail(ctx, f)
		return nil, f
	}
	return records, nil
}

// editRecords is EditRecords without the failure notification.
func (s *Store) editRecords(ctx context.Context, updates []image.PartialUpdate) ([]image.Record, *Failure) {
	if len(updates) == 0 {
		return nil, nil
	}

	const op = "updating image info"
	ids := make([]string, len(updates))
	for i, u := range updates {
		if u.ID == "" {
			return nil, invalid(op, "update %d has no image id", i)
		}
		ids[i] = u.ID
	}

	s.markLoading(ids, true)
	defer s.markLoading(ids, false)

	records, err := s.backend.UpdateImages(ctx, updates)
	if err == nil {
		if f := validateRecords(op, records); f != nil {
			err = f
		}
	}
	if err != nil {
		return nil, classify(op, err)
	}

	s.mu.Lock()
	images := slices.Clone(s.state.Images)
	applied := 0
	for _, r := range records {
		if i := s.state.index(r.ID); i >= 0 {
			images[i] = r.Clone()
			applied++
		}
	}
	next := s.state
	next.Images = images
	s.state = next
	s.mu.Unlock()

	s.log.Debug().Int("sent", len(updates)).Int("applied", applied).Msg("records updated")
	s.bus.PublishImagesUpdated(eventbus.ImagesUpdatedPayload{IDs: ids})

	out := make([]image.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *Store) markLoading(ids []string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	images := slices.Clone(s.state.Images)
	for _, id := range ids {
		if i := s.state.index(id); i >= 0 {
			images[i].Info = images[i].Info.Clone()
			images[i].Info.IsLoading = loading
		}
	}
	next := s.state
	next.Images = images
	s.state = next
}

// DeleteSelected deletes every selected image. With nothing selected no
// request is made.
func (s *Store) DeleteSelected(ctx context.Context) error {
	entries := s.Selection().Entries()
	if len(entries) == 0 {
		return nil
	}

	owned, err := s.backend.DeleteImages(ctx, entries)
	if err != nil {
		f := classify("deleting images", err)
		s.fail(ctx, f)
		return f
	}

	if s.dir != nil {
		s.dir.ReplaceOwned(owned)
	}

	s.log.Info().Int("count", len(entries)).Msg("images deleted")
	s.mu.Lock()
	s.state.Selection = s.state.Selection.Clear()
	s.mu.Unlock()

	s.bus.PublishImagesDeleted(eventbus.ImagesDeletedPayload{Count: len(entries)})
	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: 0})

	if err := s.SetPage(ctx, 0); err != nil {
		s.log.Warn().Err(err).Msg("reload after delete failed")
	}
	return nil
}

// GetByID looks id up in the loaded page only.
func (s *Store) GetByID(id string) (image.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.state.index(id)
	if i < 0 {
		return image.Record{}, false
	}
	r := s.state.Images[i].Clone()
	r.IsSelected = s.state.Selection.Has(id)
	return r, true
}

// Contains reports whether id is in the loaded page.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.index(id) >= 0
}

// FetchByID loads a single record from the backend, whether or not it is in
// the loaded page.
func (s *Store) FetchByID(ctx context.Context, id string) (image.Record, error) {
	r, f := s.fetchByID(ctx, id)
	if f != nil {
		s.fail(ctx, f)
		return image.Record{}, f
	}
	return r, nil
}

func (s *Store) fetchByID(ctx context.Context, id string) (image.Record, *Failure) {
	const op = "loading image"
	if id == "" {
		return image.Record{}, invalid(op, "empty image id")
	}

	r, err := s.backend.GetImage(ctx, id)
	if err != nil {
		return image.Record{}, classify(op, err)
	}
	if r.ID != id {
		return image.Record{}, malformed(op, "asked for %q, got %q", id, r.ID)
	}
	return r, nil
}

// Purge drops the loaded page, the filtered id list, and the selection.
// In-flight fetches are discarded when they return.
func (s *Store) Purge() {
	s.mu.Lock()
	s.gen++
	s.state = State{
		Mode:       s.state.Mode,
		Pagination: image.Pagination{PageSize: s.state.Pagination.PageSize},
		Epoch:      s.state.Epoch + 1,
	}
	s.want = requestFor(s.state)
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: 0})
}

// Selection returns the current selection.
func (s *Store) Selection() SelectionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Selection
}

// ToggleSelect flips the selection of a loaded record. It reports false when
// id is not in the loaded page.
func (s *Store) ToggleSelect(id string) bool {
	s.mu.Lock()
	i := s.state.index(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	r := s.state.Images[i]
	s.state.Selection = s.state.Selection.Toggle(r.ID, r.HostingID, r.Info.IsPublic)
	n := s.state.Selection.Len()
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: n})
	return true
}

// ToggleSelectAll selects the whole loaded page, or clears the selection
// when the page is already fully selected.
func (s *Store) ToggleSelectAll() {
	s.mu.Lock()
	s.state.Selection = s.state.Selection.SelectAll(s.state.Images)
	n := s.state.Selection.Len()
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: n})
}

// ClearSelection deselects everything.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.state.Selection = s.state.Selection.Clear()
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: 0})
}

// ToggleGroupSelect flips group select mode. Leaving it clears the
// selection.
func (s *Store) ToggleGroupSelect() bool {
	s.mu.Lock()
	s.state.GroupSelect = !s.state.GroupSelect
	on := s.state.GroupSelect
	if !on {
		s.state.Selection = s.state.Selection.Clear()
	}
	n := s.state.Selection.Len()
	s.mu.Unlock()

	s.bus.PublishSelectionChanged(eventbus.SelectionChangedPayload{Count: n})
	return on
}

func (s *Store) fail(ctx context.Context, f *Failure) {
	s.log.Warn().Ctx(ctx).Str("kind", string(f.Kind)).Err(f.Err).Msg(f.Op + " failed")
	s.notifier.Notify(ctx, notify.LevelError, f.Message())
}
