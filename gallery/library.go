package gallery

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/samber/lo"
)

// LibraryItem describes one entry reported by a LibraryLister.
type LibraryItem struct {
	ID      string
	Handle  asset.Handle
	Created time.Time
}

// LibraryLister enumerates the animated images held by a photo library.
type LibraryLister interface {
	List(ctx context.Context) ([]LibraryItem, error)
}

// Collection is a read-only, library-backed counterpart of Store.
type Collection struct {
	assets []*asset.Asset

	// Selection is the UI-facing current selection.
	Selection *Selection
}

// FromLibrary builds a collection of library-backed assets, newest first.
// Items without an id or a handle are skipped; duplicate ids keep the first.
func FromLibrary(ctx context.Context, lister LibraryLister, lib asset.Library) (*Collection, error) {
	items, err := lister.List(ctx)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}

	items = lo.Filter(items, func(it LibraryItem, _ int) bool {
		return it.ID != "" && it.Handle != ""
	})
	items = lo.UniqBy(items, func(it LibraryItem) string { return it.ID })

	assets := lo.Map(items, func(it LibraryItem, _ int) *asset.Asset {
		opts := []asset.Option{asset.WithLibrary(lib)}
		if !it.Created.IsZero() {
			opts = append(opts, asset.WithCreationTime(it.Created))
		}
		return asset.NewLibraryBacked(it.ID, it.Handle, opts...)
	})
	sortNewestFirst(assets, time.Now())

	return &Collection{assets: assets, Selection: NewSelection()}, nil
}

// Assets returns the collection in order.
func (c *Collection) Assets() []*asset.Asset {
	return append([]*asset.Asset(nil), c.assets...)
}

// Len returns the number of assets.
func (c *Collection) Len() int {
	return len(c.assets)
}

// Add is not supported on library collections.
func (c *Collection) Add(context.Context, []byte) (string, error) {
	return "", errx.New("library collections are read-only", errx.WithCode(CodeReadOnly))
}
