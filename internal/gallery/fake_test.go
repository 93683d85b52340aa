package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/rs/zerolog"
)

var errOffline = errors.New("connection refused")

type shareCall struct {
	ids   []string
	users []image.ShareAction
}

// fakeBackend is an in-memory Backend. Every image belongs to every mode
// unless a test overrides listFn.
type fakeBackend struct {
	mu sync.Mutex

	images []image.Record
	users  map[string]bool

	listCalls   []image.PageQuery
	getCalls    []string
	updateCalls [][]image.PartialUpdate
	deleteCalls [][]image.SelectionEntry
	shareCalls  []shareCall

	listFn    func(ctx context.Context, q image.PageQuery) (image.Page, error)
	getFn     func(ctx context.Context, id string) (image.Record, error)
	mergeFn   func(r image.Record) image.Record
	listErr   error
	updateErr error
	deleteErr error
	shareErr  error
	uploadErr error
}

var _ Backend = (*fakeBackend)(nil)

func newFakeBackend(ids ...string) *fakeBackend {
	f := &fakeBackend{users: map[string]bool{}}
	for _, id := range ids {
		f.images = append(f.images, record(id))
	}
	return f
}

func record(id string, tags ...string) image.Record {
	return image.Record{
		ID:        id,
		HostingID: "h-" + id,
		URL:       "https://img.test/" + id,
		Info:      image.Info{Tags: tags, BelongsTo: "ann"},
	}
}

func (f *fakeBackend) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.images))
	for i, r := range f.images {
		out[i] = r.ID
	}
	return out
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listCalls)
}

func (f *fakeBackend) ListImages(ctx context.Context, q image.PageQuery) (image.Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, q)
	fn, err := f.listFn, f.listErr
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, q)
	}
	if err != nil {
		return image.Page{}, err
	}
	return f.page(q), nil
}

// page answers q from the in-memory images.
func (f *fakeBackend) page(q image.PageQuery) image.Page {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []image.Record
	for _, r := range f.images {
		if q.Filter == "" || slices.ContainsFunc(r.Info.Tags, func(t string) bool { return strings.Contains(t, q.Filter) }) {
			matched = append(matched, r)
		}
	}

	page := image.Page{FilteredCount: uint(len(matched))}
	if q.Filter != "" {
		for _, r := range matched {
			page.FilteredIDs = append(page.FilteredIDs, r.ID)
		}
	}
	start := min(int(q.Page*q.PageSize), len(matched))
	end := min(start+int(q.PageSize), len(matched))
	for _, r := range matched[start:end] {
		page.Images = append(page.Images, r.Clone())
	}
	return page
}

func (f *fakeBackend) GetImage(ctx context.Context, id string) (image.Record, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	fn := f.getFn
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return f.lookup(id)
}

func (f *fakeBackend) lookup(id string) (image.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.images {
		if r.ID == id {
			return r.Clone(), nil
		}
	}
	return image.Record{}, fmt.Errorf("get %s: %w", id, image.ErrNotFound)
}

func (f *fakeBackend) Upload(_ context.Context, files []image.Upload) ([]image.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}

	var out []image.Record
	for i, file := range files {
		r := record(fmt.Sprintf("up%d-%d", len(f.images), i))
		r.Info.Title = file.Name
		f.images = append(f.images, r)
		out = append(out, r.Clone())
	}
	return out, nil
}

func (f *fakeBackend) UpdateImages(_ context.Context, updates []image.PartialUpdate) ([]image.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, updates)
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	var out []image.Record
	for _, u := range updates {
		for i, r := range f.images {
			if r.ID != u.ID {
				continue
			}
			r.Info = u.Info.Apply(r.Info)
			if f.mergeFn != nil {
				r = f.mergeFn(r)
			}
			f.images[i] = r
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (f *fakeBackend) DeleteImages(_ context.Context, entries []image.SelectionEntry) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, entries)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	f.images = slices.DeleteFunc(f.images, func(r image.Record) bool {
		return slices.ContainsFunc(entries, func(e image.SelectionEntry) bool { return e.ID == r.ID })
	})
	out := make([]string, len(f.images))
	for i, r := range f.images {
		out[i] = r.ID
	}
	return out, nil
}

func (f *fakeBackend) MultiuserShare(_ context.Context, ids []string, users []image.ShareAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shareCalls = append(f.shareCalls, shareCall{ids: ids, users: users})
	return f.shareErr
}

func (f *fakeBackend) PublicImageIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.images {
		if r.Info.IsPublic {
			out = append(out, r.ID)
		}
	}
	return out, nil
}

func (f *fakeBackend) UserExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[name], nil
}

type harness struct {
	backend  *fakeBackend
	notes    *notify.Recorder
	app      *App
	store    *Store
	nav      *Navigator
	share    *ShareService
	dir      *UserDirectory
	pageSize uint
}

func newHarness(backend *fakeBackend, pageSize uint) *harness {
	notes := notify.NewRecorder()
	app := NewApp(backend, Account{UserName: "ann", Owned: backend.ids()}, notes, nil, Options{
		PageSize:     pageSize,
		ShareBaseURL: "https://gallery.test/api/v1/",
	}, zerolog.Nop())

	return &harness{
		backend:  backend,
		notes:    notes,
		app:      app,
		store:    app.Store,
		nav:      app.Navigator,
		share:    app.Share,
		dir:      app.Directory,
		pageSize: pageSize,
	}
}

func pageIDs(st State) []string {
	ids := make([]string, len(st.Images))
	for i, r := range st.Images {
		ids[i] = r.ID
	}
	return ids
}
