package asset

import (
	"context"
	"image"
)

// ThumbnailSize is the target size requested from a Library for thumbnails.
//
//nolint:gochecknoglobals // fixed size
var ThumbnailSize = image.Pt(100, 100)

// Library is the photo-library collaborator behind LibraryBacked assets.
type Library interface {
	// RequestData fetches the bytes behind h and reports them through done.
	// done may be called before RequestData returns or later from another
	// goroutine. Calls after the first are ignored.
	RequestData(ctx context.Context, h Handle, done func(data []byte, err error))

	// Thumbnail renders h at roughly size. It may block briefly.
	Thumbnail(h Handle, size image.Point) (image.Image, error)
}

// BlockingLibrary adapts plain blocking functions to the Library interface.
// Fetch runs on its own goroutine, so results are always asynchronous.
type BlockingLibrary struct {
	Fetch func(ctx context.Context, h Handle) ([]byte, error)
	Thumb func(h Handle, size image.Point) (image.Image, error)
}

// RequestData implements Library.
func (l BlockingLibrary) RequestData(ctx context.Context, h Handle, done func([]byte, error)) {
	go func() {
		done(l.Fetch(ctx, h))
	}()
}

// Thumbnail implements Library.
func (l BlockingLibrary) Thumbnail(h Handle, size image.Point) (image.Image, error) {
	if l.Thumb == nil {
		return nil, nil
	}
	return l.Thumb(h, size)
}
