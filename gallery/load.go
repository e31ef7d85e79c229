package gallery

import (
	"context"
	"image"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/meta"
	"github.com/spf13/afero"
)

// Load replaces the collection with the pairs found on disk. Data files
// without a GIF header, without a thumbnail, or whose thumbnail does not
// decode are skipped. The
// result is ordered by creation time, newest first; an asset without a
// creation time is ranked as if it had been created now.
func (s *Store) Load(ctx context.Context) error {
	log := s.log.WithContext(meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.Operation: "load",
	}))

	entries, err := afero.ReadDir(s.fs, s.dataDir())
	if err != nil {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"dir": s.dataDir()}))
	}

	loaded := make([]*asset.Asset, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != DataExt {
			continue
		}
		id := strings.TrimSuffix(name, DataExt)

		if err = s.checkData(id); err != nil {
			log.Debugf("skipping %s: unusable data file: %v", id, err)
			continue
		}
		thumb, ok := s.readThumbnail(id)
		if !ok {
			log.Debugf("skipping %s: no usable thumbnail", id)
			continue
		}

		opts := []asset.Option{asset.WithThumbnail(thumb)}
		if created, known := s.createdTime(id, entry.ModTime()); known {
			opts = append(opts, asset.WithCreationTime(created))
		}
		loaded = append(loaded, s.newFileAsset(id, opts...))
	}

	sortNewestFirst(loaded, time.Now())

	s.mu.Lock()
	s.assets = loaded
	s.mu.Unlock()

	log.Debugf("loaded %d assets", len(loaded))
	return nil
}

func (s *Store) checkData(id string) error {
	f, err := s.fs.Open(s.DataPath(id))
	if err != nil {
		return err
	}
	defer f.Close()
	return checkDataHeader(f)
}

func (s *Store) readThumbnail(id string) (image.Image, bool) {
	f, err := s.fs.Open(s.ThumbPath(id))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	decoded, err := decodeThumbnail(f)
	if err != nil {
		return nil, false
	}
	return decoded, true
}

// sortNewestFirst orders by creation time descending. Missing times count as
// now, which puts them ahead of anything created earlier.
func sortNewestFirst(assets []*asset.Asset, now time.Time) {
	at := func(a *asset.Asset) time.Time {
		if t, ok := a.CreationTime(); ok {
			return t
		}
		return now
	}
	slices.SortStableFunc(assets, func(a, b *asset.Asset) int {
		return at(b).Compare(at(a))
	})
}
