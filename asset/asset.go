// Package asset models a single animated image tracked by a gallery: its
// identity, optional metadata, and a lazily fetched byte source.
package asset

import (
	"context"
	"image"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/bytecache"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/spf13/afero"
)

// Asset is identified by its id alone; two assets with the same id are
// equal whatever their source. The source is fixed at construction.
type Asset struct {
	id      string
	created time.Time
	source  Source
	thumb   image.Image

	cache   *bytecache.Cache
	library Library
	fs      afero.Fs
	log     logger.Logger
}

// Option configures an Asset.
type Option func(*Asset)

// WithCache makes file-backed reads go through c.
func WithCache(c *bytecache.Cache) Option {
	return func(a *Asset) { a.cache = c }
}

// WithLibrary sets the collaborator used by library-backed assets.
func WithLibrary(l Library) Option {
	return func(a *Asset) { a.library = l }
}

// WithCreationTime records when the underlying item was created.
func WithCreationTime(t time.Time) Option {
	return func(a *Asset) { a.created = t }
}

// WithThumbnail supplies an already decoded thumbnail.
func WithThumbnail(img image.Image) Option {
	return func(a *Asset) { a.thumb = img }
}

// WithFS sets the filesystem file-backed assets are read from. Defaults to the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(a *Asset) { a.fs = fs }
}

// WithLogger sets the logger used for degraded reads.
func WithLogger(l logger.Logger) Option {
	return func(a *Asset) { a.log = l }
}

func newAsset(id string, src Source, opts []Option) *Asset {
	a := &Asset{id: id, source: src, fs: afero.NewOsFs(), log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.Named("asset").With("asset_id", id, "source", Kind(src))
	return a
}

// NewFileBacked creates an asset stored at dataPath with its thumbnail at thumbPath.
func NewFileBacked(id, dataPath, thumbPath string, opts ...Option) *Asset {
	return newAsset(id, FileBacked{DataPath: dataPath, ThumbPath: thumbPath}, opts)
}

// NewLibraryBacked creates an asset whose bytes are fetched from a Library.
func NewLibraryBacked(id string, h Handle, opts ...Option) *Asset {
	return newAsset(id, LibraryBacked{Handle: h}, opts)
}

// NewEphemeral creates an in-memory asset.
func NewEphemeral(id string, data []byte, opts ...Option) *Asset {
	return newAsset(id, Ephemeral{Bytes: data}, opts)
}

// ID returns the asset id.
func (a *Asset) ID() string { return a.id }

// Key returns the value assets are hashed and compared by.
func (a *Asset) Key() string { return a.id }

// Source returns the asset's source variant.
func (a *Asset) Source() Source { return a.source }

// CreationTime returns the creation time and whether one is known.
func (a *Asset) CreationTime() (time.Time, bool) {
	return a.created, !a.created.IsZero()
}

// Equal reports whether a and b share an id.
func (a *Asset) Equal(b *Asset) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.id == b.id
}

// Data starts fetching the asset's bytes. File reads and library requests run
// off the caller's goroutine unless the result is already at hand, which the
// returned Fetch reports through Synchronous.
func (a *Asset) Data(ctx context.Context) *Fetch {
	f := newFetch()
	defer f.markReturned()

	switch src := a.source.(type) {
	case Ephemeral:
		f.resolve(src.Bytes, src.Bytes != nil)

	case FileBacked:
		a.fetchFile(src, f)

	case LibraryBacked:
		if a.library == nil {
			a.log.Warn("no library configured")
			f.resolve(nil, false)
			return f
		}
		a.library.RequestData(ctx, src.Handle, func(data []byte, err error) {
			if err != nil {
				a.log.Warnx(errx.Wrap(err))
				f.resolve(nil, false)
				return
			}
			f.resolve(data, data != nil)
		})

	default:
		f.resolve(nil, false)
	}

	return f
}

// Bytes is Data followed by Wait.
func (a *Asset) Bytes(ctx context.Context) ([]byte, bool) {
	return a.Data(ctx).Wait(ctx)
}

func (a *Asset) fetchFile(src FileBacked, f *Fetch) {
	read := func() ([]byte, error) {
		return afero.ReadFile(a.fs, src.DataPath)
	}

	if a.cache == nil {
		go func() {
			data, err := read()
			a.deliverFile(f, data, err)
		}()
		return
	}

	if data, ok := a.cache.Get(src.DataPath); ok {
		f.resolve(data, true)
		return
	}

	go func() {
		data, err := a.cache.Fill(src.DataPath, read)
		a.deliverFile(f, data, err)
	}()
}

func (a *Asset) deliverFile(f *Fetch, data []byte, err error) {
	if err != nil {
		a.log.Warnx(errx.Wrap(err, errx.WithDetails(errx.D{"op": "read data file"})))
		f.resolve(nil, false)
		return
	}
	f.resolve(data, true)
}

// Thumbnail returns a still preview or nil. Library-backed assets render it on
// every call at ThumbnailSize; other sources return what they were built with.
func (a *Asset) Thumbnail() image.Image {
	src, ok := a.source.(LibraryBacked)
	if !ok {
		return a.thumb
	}
	if a.library == nil {
		return nil
	}

	img, err := a.library.Thumbnail(src.Handle, ThumbnailSize)
	if err != nil {
		a.log.Debugf("thumbnail unavailable: %v", err)
		return nil
	}
	return img
}
