package gallery

import (
	"context"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/meta"
	"go.uber.org/multierr"
)

// Remove deletes the backing files of every given asset and drops each one
// whose files are both gone from the collection. It is best effort: a failure
// on one asset does not stop the others. The returned error combines the
// per-asset failures; use multierr.Errors to inspect them individually.
func (s *Store) Remove(ctx context.Context, assets ...*asset.Asset) (removed []string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gone := make(map[string]struct{}, len(assets))
	for _, a := range assets {
		log := s.log.WithContext(meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
			meta.AssetID:   a.ID(),
			meta.Operation: "remove",
		}))

		itemErr := s.removeFiles(a)
		if itemErr != nil {
			log.Warnx(itemErr)
			err = multierr.Append(err, itemErr)
			continue
		}
		gone[a.ID()] = struct{}{}
		removed = append(removed, a.ID())
	}

	kept := s.assets[:0]
	for _, a := range s.assets {
		if _, ok := gone[a.ID()]; !ok {
			kept = append(kept, a)
		}
	}
	clear(s.assets[len(kept):])
	s.assets = kept

	return removed, err
}

func (s *Store) removeFiles(a *asset.Asset) error {
	var dataPath, thumbPath string
	switch src := a.Source().(type) {
	case asset.FileBacked:
		dataPath, thumbPath = src.DataPath, src.ThumbPath
	default:
		// the collection only stores file-backed assets, but an id is enough
		// to locate its pair
		dataPath, thumbPath = s.DataPath(a.ID()), s.ThumbPath(a.ID())
	}

	errData := removeIfExists(s.fs, dataPath)
	errThumb := removeIfExists(s.fs, thumbPath)
	if errData == nil {
		s.evict(dataPath)
	}
	if errData == nil && errThumb == nil {
		return nil
	}
	return errx.Wrap(multierr.Combine(errData, errThumb),
		errx.WithCode(CodeIOFailure),
		errx.WithDetails(errx.D{"asset_id": a.ID()}),
	)
}
