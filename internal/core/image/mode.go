package image

import "fmt"

// Mode is the visibility scope a gallery is browsed in.
type Mode string

const (
	ModePersonal Mode = "personal"
	ModeShared   Mode = "shared"
	ModePublic   Mode = "public"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModePersonal, ModeShared, ModePublic}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePersonal, ModeShared, ModePublic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid gallery mode %q (want personal, shared or public)", s)
	}
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	_, err := ParseMode(string(m))
	return err == nil
}

// Editable reports whether images in this mode belong to the current user
// and may be edited, shared, or deleted.
func (m Mode) Editable() bool {
	return m == ModePersonal
}

// PageQuery parameterizes a single page fetch.
type PageQuery struct {
	Mode     Mode
	Page     uint
	PageSize uint
	Filter   string
}

// Page is the backend's answer to a PageQuery.
type Page struct {
	Images        []Record
	FilteredCount uint
	// FilteredIDs holds every id matching the filter, across all pages. It is
	// only populated when a filter is active.
	FilteredIDs []string
}

// Pagination is the cursor over a filtered collection.
type Pagination struct {
	Page     uint `json:"currentPage"`
	PageSize uint `json:"imagesPerPage"`
	Total    uint `json:"filteredImagesNumber"`
}

// TotalPages returns ceil(Total/PageSize), or 0 when there is nothing to page.
func (p Pagination) TotalPages() uint {
	if p.Total == 0 || p.PageSize == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// Clamp returns n limited to [0, TotalPages-1]. With no pages it returns 0.
func (p Pagination) Clamp(n uint) uint {
	pages := p.TotalPages()
	if pages == 0 {
		return 0
	}
	return min(n, pages-1)
}

// Valid reports whether the cursor points inside the collection.
func (p Pagination) Valid() bool {
	return p.Total == 0 || p.Page*p.PageSize < p.Total
}
