package gallery

import (
	"context"

	"github.com/colonyops/lightbox/internal/core/image"
)

// Backend is the remote image service the gallery talks to. Implementations
// own transport concerns such as timeouts and authentication.
type Backend interface {
	ListImages(ctx context.Context, q image.PageQuery) (image.Page, error)
	GetImage(ctx context.Context, id string) (image.Record, error)
	Upload(ctx context.Context, files []image.Upload) ([]image.Record, error)
	UpdateImages(ctx context.Context, updates []image.PartialUpdate) ([]image.Record, error)
	// DeleteImages removes the entries and returns the caller's owned id
	// list as it stands after the delete.
	DeleteImages(ctx context.Context, entries []image.SelectionEntry) ([]string, error)
	MultiuserShare(ctx context.Context, imageIDs []string, users []image.ShareAction) error
	PublicImageIDs(ctx context.Context) ([]string, error)
	UserExists(ctx context.Context, name string) (bool, error)
}
