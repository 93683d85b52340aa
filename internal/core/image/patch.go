package image

import "slices"

// InfoPatch carries a partial metadata update. Nil fields are left untouched
// by the server.
type InfoPatch struct {
	Tags         *[]string `json:"tags,omitempty"`
	Likes        *[]string `json:"likes,omitempty"`
	IsPublic     *bool     `json:"isPublic,omitempty"`
	SharedByLink *bool     `json:"sharedByLink,omitempty"`
	OpenedTo     *[]string `json:"openedTo,omitempty"`
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
}

// PartialUpdate addresses an InfoPatch to one image.
type PartialUpdate struct {
	ID   string    `json:"_id"`
	Info InfoPatch `json:"imageInfo"`
}

// IsEmpty reports whether the patch changes nothing.
func (p InfoPatch) IsEmpty() bool {
	return p == InfoPatch{}
}

// Apply merges the patch into info and returns the result. The input is not
// modified.
func (p InfoPatch) Apply(info Info) Info {
	out := info.Clone()
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.Likes != nil {
		out.Likes = slices.Clone(*p.Likes)
	}
	if p.IsPublic != nil {
		out.IsPublic = *p.IsPublic
	}
	if p.SharedByLink != nil {
		out.SharedByLink = *p.SharedByLink
	}
	if p.OpenedTo != nil {
		out.OpenedTo = slices.Clone(*p.OpenedTo)
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}
