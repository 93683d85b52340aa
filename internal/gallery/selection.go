package gallery

import (
	"slices"

	"github.com/colonyops/lightbox/internal/core/image"
)

// SelectionSet is an ordered set of selected images keyed by id. It is a
// value type: every method returns a new set and leaves the receiver as it
// was.
type SelectionSet struct {
	entries []image.SelectionEntry
}

// NewSelectionSet builds a set from entries, keeping the first entry for any
// repeated id.
func NewSelectionSet(entries ...image.SelectionEntry) SelectionSet {
	var s SelectionSet
	for _, e := range entries {
		if !s.Has(e.ID) {
			s.entries = append(s.entries, e)
		}
	}
	return s
}

// Toggle adds the id when absent and removes it when present.
func (s SelectionSet) Toggle(id, hostingID string, isPublic bool) SelectionSet {
	if i := s.index(id); i >= 0 {
		return SelectionSet{entries: slices.Delete(slices.Clone(s.entries), i, i+1)}
	}

	next := make([]image.SelectionEntry, len(s.entries), len(s.entries)+1)
	copy(next, s.entries)
	next = append(next, image.SelectionEntry{ID: id, HostingID: hostingID, IsPublic: isPublic})
	return SelectionSet{entries: next}
}

// SelectAll replaces the set with every record of the page. When every
// record is already selected it clears the set instead.
func (s SelectionSet) SelectAll(records []image.Record) SelectionSet {
	if s.coversAll(records) {
		return SelectionSet{}
	}

	entries := make([]image.SelectionEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, image.EntryFor(r))
	}
	return NewSelectionSet(entries...)
}

// Clear returns an empty set.
func (s SelectionSet) Clear() SelectionSet {
	return SelectionSet{}
}

// Has reports whether id is selected.
func (s SelectionSet) Has(id string) bool {
	return s.index(id) >= 0
}

func (s SelectionSet) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the selected entries in selection order.
func (s SelectionSet) Entries() []image.SelectionEntry {
	return slices.Clone(s.entries)
}

// IDs returns the selected ids in selection order.
func (s SelectionSet) IDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

func (s SelectionSet) index(id string) int {
	return slices.IndexFunc(s.entries, func(e image.SelectionEntry) bool { return e.ID == id })
}

func (s SelectionSet) coversAll(records []image.Record) bool {
	for _, r := range records {
		if !s.Has(r.ID) {
			return false
		}
	}
	return true
}
