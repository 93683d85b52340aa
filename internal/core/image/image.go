// Package image defines the gallery image domain types shared by the
// gallery engine, the API client, and the reference server.
package image

import (
	"slices"
	"strings"
)

// Info holds the mutable metadata of an image.
type Info struct {
	Tags         []string `json:"tags"`
	Likes        []string `json:"likes"`
	IsPublic     bool     `json:"isPublic"`
	SharedByLink bool     `json:"sharedByLink"`
	OpenedTo     []string `json:"openedTo"`
	BelongsTo    string   `json:"belongsTo,omitempty"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`

	// IsLoading is set while an edit for this image is in flight.
	IsLoading bool `json:"-"`
}

// Record represents a single image and its metadata as served by the backend.
//
// IsSelected is a UI convenience mirrored from the selection set when a store
// snapshot is taken; it is never sent over the wire.
type Record struct {
	ID           string `json:"_id"`
	HostingID    string `json:"imageHostingId"`
	URL          string `json:"imageURL"`
	ThumbnailURL string `json:"smallImageURL"`
	Info         Info   `json:"imageInfo"`
	IsSelected   bool   `json:"-"`
}

// Clone returns a deep copy of the record. Slices are never shared between
// the copy and the original.
func (r Record) Clone() Record {
	r.Info = r.Info.Clone()
	return r
}

// Clone returns a deep copy of the info.
func (i Info) Clone() Info {
	i.Tags = slices.Clone(i.Tags)
	i.Likes = slices.Clone(i.Likes)
	i.OpenedTo = slices.Clone(i.OpenedTo)
	return i
}

// IsLikedBy reports whether user appears in the likes set.
func (i Info) IsLikedBy(user string) bool {
	return slices.Contains(i.Likes, user)
}

// ToggleLike returns the likes list with user added or removed.
func (i Info) ToggleLike(user string) []string {
	if i.IsLikedBy(user) {
		return slices.DeleteFunc(slices.Clone(i.Likes), func(l string) bool { return l == user })
	}
	return append(slices.Clone(i.Likes), user)
}

// WithTags returns the tag list with tags appended. Order is kept and
// duplicates are dropped.
func (i Info) WithTags(tags ...string) []string {
	out := slices.Clone(i.Tags)
	for _, t := range tags {
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// WithoutTag returns the tag list with tag removed.
func (i Info) WithoutTag(tag string) []string {
	return slices.DeleteFunc(slices.Clone(i.Tags), func(t string) bool { return t == tag })
}

// ParseTags splits a comma separated tag string.
//
// "a, b,,c " -> ["a", "b", "c"]
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" && !slices.Contains(tags, p) {
			tags = append(tags, p)
		}
	}
	return tags
}

// SelectionEntry identifies a selected image. It is also the wire format for
// bulk deletes.
type SelectionEntry struct {
	ID        string `json:"selectedId"`
	HostingID string `json:"imageHostingId"`
	IsPublic  bool   `json:"isPublic"`
}

// EntryFor builds the selection entry for a record.
func EntryFor(r Record) SelectionEntry {
	return SelectionEntry{ID: r.ID, HostingID: r.HostingID, IsPublic: r.Info.IsPublic}
}

// Upload is a single file handed to the upload transport.
type Upload struct {
	Name string
	Data []byte
}
