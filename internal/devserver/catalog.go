package devserver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/colonyops/lightbox/internal/api"
	"github.com/colonyops/lightbox/internal/core/image"
	"github.com/google/uuid"
)

var (
	ErrForbidden      = errors.New("forbidden")
	ErrUserExists     = errors.New("user already exists")
	ErrBadCredentials = errors.New("wrong user name or password")
)

type account struct {
	name     string
	email    string
	password []byte
	owned    []string
	openedTo []string
}

// Catalog is the reference server's in-memory database of users and image
// metadata. Image bytes live in a BlobStore.
type Catalog struct {
	mu     sync.RWMutex
	users  map[string]*account
	tokens map[string]string
	images map[string]image.Record
	order  []string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		users:  make(map[string]*account),
		tokens: make(map[string]string),
		images: make(map[string]image.Record),
	}
}

// Register creates a user and signs it in.
func (c *Catalog) Register(name, email, password string) (api.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return api.Account{}, fmt.Errorf("%w: user name and password are required", image.ErrInvalidInput)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return api.Account{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.users[name]; ok {
		return api.Account{}, fmt.Errorf("register %q: %w", name, ErrUserExists)
	}
	acc := &account{name: name, email: email, password: hash}
	c.users[name] = acc
	return c.issueToken(acc), nil
}

// Login checks the password and issues a new token.
func (c *Catalog) Login(name, password string) (api.Account, error) {
	c.mu.RLock()
	acc, ok := c.users[name]
	c.mu.RUnlock()

	if !ok || !checkPassword(acc.password, password) {
		return api.Account{}, ErrBadCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.issueToken(acc), nil
}

// issueToken must be called with c.mu held.
func (c *Catalog) issueToken(acc *account) api.Account {
	token := uuid.NewString()
	c.tokens[token] = acc.name
	return c.view(acc, token)
}

func (c *Catalog) view(acc *account, token string) api.Account {
	return api.Account{
		UserName:           acc.name,
		UserEmail:          acc.email,
		UserToken:          token,
		UserOwnedImages:    slices.Clone(acc.owned),
		UserOpenedToImages: slices.Clone(acc.openedTo),
	}
}

// Authenticate resolves a token to a user name.
func (c *Catalog) Authenticate(token string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.tokens[token]
	return name, ok
}

// Account returns the current view of a user's account.
func (c *Catalog) Account(name, token string) (api.Account, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	acc, ok := c.users[name]
	if !ok {
		return api.Account{}, false
	}
	return c.view(acc, token), true
}

// UserExists reports whether name is registered.
func (c *Catalog) UserExists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.users[name]
	return ok
}

// AddImage stores a new image owned by owner and assigns its id.
func (c *Catalog) AddImage(owner string, r image.Record) (image.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, ok := c.users[owner]
	if !ok {
		return image.Record{}, fmt.Errorf("add image: %w", ErrForbidden)
	}

	r.ID = uuid.NewString()
	r.Info.BelongsTo = owner
	if r.Info.Tags == nil {
		r.Info.Tags = []string{}
	}
	if r.Info.Likes == nil {
		r.Info.Likes = []string{}
	}
	if r.Info.OpenedTo == nil {
		r.Info.OpenedTo = []string{}
	}

	c.images[r.ID] = r.Clone()
	c.order = append(c.order, r.ID)
	acc.owned = append(acc.owned, r.ID)
	return r, nil
}

// Scope selects which collection List pages over.
type Scope int

const (
	ScopeOwned Scope = iota
	ScopeOpenedTo
	ScopePublic
)

// List returns one page of the scope's images matching filter, the number of
// matches, and, when filter is set, every matching id.
func (c *Catalog) List(scope Scope, user string, page, size uint, filter string) ([]image.Record, uint, []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	switch scope {
	case ScopeOwned:
		if acc, ok := c.users[user]; ok {
			ids = acc.owned
		}
	case ScopeOpenedTo:
		if acc, ok := c.users[user]; ok {
			ids = acc.openedTo
		}
	case ScopePublic:
		ids = c.publicIDs()
	}

	filter = strings.ToLower(strings.TrimSpace(filter))
	var matched []string
	for _, id := range ids {
		r, ok := c.images[id]
		if ok && matches(r, filter) {
			matched = append(matched, id)
		}
	}

	// page*size overflows for pages far past the end.
	start := len(matched)
	if size > 0 && page <= uint(len(matched))/size {
		start = int(page * size)
	}
	end := start + int(min(uint(len(matched)-start), size))
	out := make([]image.Record, 0, end-start)
	for _, id := range matched[start:end] {
		out = append(out, c.images[id].Clone())
	}

	var filtered []string
	if filter != "" {
		filtered = slices.Clone(matched)
		if filtered == nil {
			filtered = []string{}
		}
	}
	return out, uint(len(matched)), filtered
}

func matches(r image.Record, filter string) bool {
	if filter == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Info.Title), filter) {
		return true
	}
	return slices.ContainsFunc(r.Info.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), filter)
	})
}

// publicIDs must be called with c.mu held.
func (c *Catalog) publicIDs() []string {
	var ids []string
	for _, id := range c.order {
		if c.images[id].Info.IsPublic {
			ids = append(ids, id)
		}
	}
	return ids
}

// PublicIDs lists every public image id in upload order.
func (c *Catalog) PublicIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.publicIDs()
	if ids == nil {
		return []string{}
	}
	return ids
}

// Get returns the image if user may see it.
func (c *Catalog) Get(user, id string) (image.Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.images[id]
	if !ok || !visible(r, user) {
		return image.Record{}, fmt.Errorf("image %s: %w", id, image.ErrNotFound)
	}
	return r.Clone(), nil
}

func visible(r image.Record, user string) bool {
	return r.Info.IsPublic || r.Info.BelongsTo == user || slices.Contains(r.Info.OpenedTo, user)
}

// LinkShared returns the image if it is shared by link.
func (c *Catalog) LinkShared(id string) (image.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.images[id]
	if !ok || !r.Info.SharedByLink {
		return image.Record{}, false
	}
	return r.Clone(), true
}

// Update applies partial updates. Likes may be changed by anyone who can see
// the image; every other field only by the owner.
func (c *Catalog) Update(user string, updates []image.PartialUpdate) ([]image.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range updates {
		r, ok := c.images[u.ID]
		if !ok || !visible(r, user) {
			return nil, fmt.Errorf("update %s: %w", u.ID, image.ErrNotFound)
		}
		if r.Info.BelongsTo != user && !likesOnly(u.Info) {
			return nil, fmt.Errorf("update %s: %w", u.ID, ErrForbidden)
		}
	}

	out := make([]image.Record, 0, len(updates))
	for _, u := range updates {
		r := c.images[u.ID]
		r.Info = u.Info.Apply(r.Info)
		r.Info.Tags = dedupe(r.Info.Tags)
		c.images[u.ID] = r
		out = append(out, r.Clone())
	}
	return out, nil
}

func likesOnly(p image.InfoPatch) bool {
	return p.Likes != nil && (image.InfoPatch{Likes: p.Likes}) == p
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Delete removes the user's images and returns the remaining owned ids and
// the hosting ids whose blobs should be dropped.
func (c *Catalog) Delete(user string, entries []image.SelectionEntry) ([]string, []string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, ok := c.users[user]
	if !ok {
		return nil, nil, fmt.Errorf("delete: %w", ErrForbidden)
	}

	var hosting []string
	for _, e := range entries {
		r, ok := c.images[e.ID]
		if !ok {
			continue
		}
		if r.Info.BelongsTo != user {
			return nil, nil, fmt.Errorf("delete %s: %w", e.ID, ErrForbidden)
		}
		hosting = append(hosting, r.HostingID)
	}

	for _, e := range entries {
		if _, ok := c.images[e.ID]; !ok {
			continue
		}
		delete(c.images, e.ID)
		c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == e.ID })
		for _, other := range c.users {
			other.owned = slices.DeleteFunc(other.owned, func(id string) bool { return id == e.ID })
			other.openedTo = slices.DeleteFunc(other.openedTo, func(id string) bool { return id == e.ID })
		}
	}

	owned := slices.Clone(acc.owned)
	if owned == nil {
		owned = []string{}
	}
	return owned, hosting, nil
}

// Share adds the images to or removes them from each named user's shared
// list. Unknown users are skipped.
func (c *Catalog) Share(user string, imageIDs []string, actions []image.ShareAction) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range imageIDs {
		r, ok := c.images[id]
		if !ok {
			return fmt.Errorf("share %s: %w", id, image.ErrNotFound)
		}
		if r.Info.BelongsTo != user {
			return fmt.Errorf("share %s: %w", id, ErrForbidden)
		}
	}

	for _, a := range actions {
		target, ok := c.users[a.Name]
		if !ok || a.Name == user {
			continue
		}
		for _, id := range imageIDs {
			switch a.Action {
			case image.ShareAdd:
				if !slices.Contains(target.openedTo, id) {
					target.openedTo = append(target.openedTo, id)
				}
			case image.ShareRemove:
				target.openedTo = slices.DeleteFunc(target.openedTo, func(s string) bool { return s == id })
			}
		}
	}
	return nil
}
