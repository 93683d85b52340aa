package gallery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/colonyops/lightbox/internal/core/eventbus"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/colonyops/lightbox/internal/core/logging"
	"github.com/colonyops/lightbox/internal/core/notify"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

// ShareDraft is the editable sharing state of one image, as held by a share
// dialog before the user accepts it. Users already on the image start with
// ShareNone so that only changes are sent.
type ShareDraft struct {
	ImageID      string
	IsPublic     bool
	SharedByLink bool
	users        []image.ShareAction
}

// NewShareDraft starts a draft from the record's current sharing state.
func NewShareDraft(r image.Record) *ShareDraft {
	users := make([]image.ShareAction, len(r.Info.OpenedTo))
	for i, name := range r.Info.OpenedTo {
		users[i] = image.ShareAction{Name: name, Action: image.ShareNone}
	}
	return &ShareDraft{
		ImageID:      r.ID,
		IsPublic:     r.Info.IsPublic,
		SharedByLink: r.Info.SharedByLink,
		users:        users,
	}
}

// Add marks name as gaining access.
func (d *ShareDraft) Add(name string) {
	if i := d.index(name); i >= 0 {
		d.users[i].Action = image.ShareAdd
		return
	}
	d.users = append(d.users, image.ShareAction{Name: name, Action: image.ShareAdd})
}

// Remove marks name as losing access. Unknown names are ignored.
func (d *ShareDraft) Remove(name string) {
	if i := d.index(name); i >= 0 {
		d.users[i].Action = image.ShareRemove
	}
}

// Names lists the users that will have access once the draft is applied.
func (d *ShareDraft) Names() []string {
	return d.Sharing().OpenedTo()
}

// Users returns every entry with its pending action.
func (d *ShareDraft) Users() []image.ShareAction {
	return slices.Clone(d.users)
}

// Sharing converts the draft into the value SetSharing accepts.
func (d *ShareDraft) Sharing() image.Sharing {
	return image.Sharing{
		IsPublic:     d.IsPublic,
		SharedByLink: d.SharedByLink,
		Users:        slices.Clone(d.users),
	}
}

func (d *ShareDraft) index(name string) int {
	return slices.IndexFunc(d.users, func(u image.ShareAction) bool { return u.Name == name })
}

// ShareService applies visibility changes to an image and to the shared
// lists of the users it is opened to. The two writes are independent; when
// one fails the other is kept.
type ShareService struct {
	store    *Store
	backend  Backend
	notifier notify.Notifier
	bus      *eventbus.EventBus
	baseURL  string
	log      zerolog.Logger
}

// NewShareService creates a ShareService. baseURL is the public address of
// the backend used to build share links.
func NewShareService(
	store *Store,
	backend Backend,
	notifier notify.Notifier,
	bus *eventbus.EventBus,
	baseURL string,
	log zerolog.Logger,
) *ShareService {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &ShareService{
		store:    store,
		backend:  backend,
		notifier: notifier,
		bus:      bus,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      logging.Attach(log, "share"),
	}
}

// SetSharing writes the visibility fields of image id, then updates the
// shared lists of every user whose access changed. Both writes are always
// attempted. Any failure produces one notification and nothing is rolled
// back.
func (s *ShareService) SetSharing(ctx context.Context, id string, sh image.Sharing) error {
	const op = "sharing image"
	if id == "" {
		f := invalid(op, "empty image id")
		s.fail(ctx, f)
		return f
	}

	openedTo := sh.OpenedTo()
	_, editFail := s.store.editRecords(ctx, []image.PartialUpdate{{
		ID: id,
		Info: image.InfoPatch{
			IsPublic:     image.Ptr(sh.IsPublic),
			OpenedTo:     image.Ptr(openedTo),
			SharedByLink: image.Ptr(sh.SharedByLink),
		},
	}})

	deltas := make([]image.ShareAction, 0, len(sh.Users))
	for _, u := range sh.Users {
		if u.Action != image.ShareNone {
			deltas = append(deltas, u)
		}
	}

	var shareErr error
	if err := s.backend.MultiuserShare(ctx, []string{id}, deltas); err != nil {
		shareErr = fmt.Errorf("sync user lists: %w", err)
	}

	payload := eventbus.ImagesSharedPayload{ImageID: id, IsPublic: sh.IsPublic, OpenedTo: openedTo}

	if editFail != nil || shareErr != nil {
		var errs []error
		kind := KindNetwork
		if editFail != nil {
			errs = append(errs, editFail.Err)
			kind = editFail.Kind
		}
		if shareErr != nil {
			errs = append(errs, shareErr)
		}

		f := &Failure{Kind: kind, Op: op, Err: errors.Join(errs...)}
		s.log.Warn().
			Str("image", id).
			Bool("visibility_saved", editFail == nil).
			Bool("users_synced", shareErr == nil).
			Msg("sharing partially applied")
		s.fail(ctx, f)

		if editFail == nil || shareErr == nil {
			payload.Partial = true
			s.bus.PublishImagesShared(payload)
		}
		return f
	}

	s.log.Debug().Str("image", id).Int("changes", len(deltas)).Msg("sharing updated")
	s.bus.PublishImagesShared(payload)
	return nil
}

// AddUser adds name to the draft after checking that it is neither the
// signed in user nor an unknown account.
func (s *ShareService) AddUser(ctx context.Context, d *ShareDraft, name string) error {
	const op = "adding user"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	dir := s.store.Directory()
	if dir == nil {
		f := invalid(op, "no user directory")
		s.fail(ctx, f)
		return f
	}
	if name == dir.UserName() {
		f := invalid(op, "cannot share an image with yourself")
		s.fail(ctx, f)
		return f
	}

	ok, err := dir.UserExists(ctx, name)
	if err != nil {
		f := classify(op, err)
		s.fail(ctx, f)
		return f
	}
	if !ok {
		f := &Failure{Kind: KindNotFound, Op: op, Err: fmt.Errorf("user %q does not exist", name)}
		s.fail(ctx, f)
		return f
	}

	d.Add(name)
	return nil
}

// ShareLink returns the public address of a link-shared image.
func (s *ShareService) ShareLink(id string) string {
	return s.baseURL + "/public/standaloneShare/" + id
}

// ShareLinkQR renders the share link of id as a QR code drawn with half-block
// characters, two modules per line, for display in a terminal.
func (s *ShareService) ShareLinkQR(id string) (string, error) {
	if id == "" {
		return "", invalid("rendering share link", "empty image id")
	}
	code, err := qrcode.New(s.ShareLink(id), qrcode.Medium)
	if err != nil {
		return "", &Failure{Kind: KindValidation, Op: "rendering share link", Err: err}
	}
	return code.ToSmallString(false), nil
}

func (s *ShareService) fail(ctx context.Context, f *Failure) {
	s.notifier.Notify(ctx, notify.LevelError, f.Message())
}
