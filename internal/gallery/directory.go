package gallery

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/colonyops/lightbox/internal/core/image"
)

// UserDirectory holds the full id lists for each gallery mode and answers
// questions about other users. The lists back modal navigation when no
// filter is active.
type UserDirectory struct {
	backend Backend
	user    string

	mu       sync.RWMutex
	owned    []string
	openedTo []string
	public   []string
}

// NewUserDirectory creates a directory for the signed in user, seeded with
// the id lists returned at login.
func NewUserDirectory(backend Backend, user string, owned, openedTo []string) *UserDirectory {
	return &UserDirectory{
		backend:  backend,
		user:     user,
		owned:    slices.Clone(owned),
		openedTo: slices.Clone(openedTo),
	}
}

// UserName returns the signed in user's name.
func (d *UserDirectory) UserName() string {
	return d.user
}

// IDs returns a copy of the full id list for mode.
func (d *UserDirectory) IDs(mode image.Mode) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch mode {
	case image.ModePersonal:
		return slices.Clone(d.owned)
	case image.ModeShared:
		return slices.Clone(d.openedTo)
	case image.ModePublic:
		return slices.Clone(d.public)
	default:
		return nil
	}
}

// AppendOwned adds freshly uploaded ids to the owned list.
func (d *UserDirectory) AppendOwned(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owned = append(slices.Clone(d.owned), ids...)
}

// ReplaceOwned swaps the owned list for the server's authoritative one.
func (d *UserDirectory) ReplaceOwned(ids []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owned = slices.Clone(ids)
}

// RefreshPublic reloads the list of every public image id.
func (d *UserDirectory) RefreshPublic(ctx context.Context) error {
	ids, err := d.backend.PublicImageIDs(ctx)
	if err != nil {
		return fmt.Errorf("refresh public ids: %w", err)
	}

	d.mu.Lock()
	d.public = slices.Clone(ids)
	d.mu.Unlock()
	return nil
}

// UserExists asks the backend whether an account named name exists.
func (d *UserDirectory) UserExists(ctx context.Context, name string) (bool, error) {
	ok, err := d.backend.UserExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("check user %q: %w", name, err)
	}
	return ok, nil
}
