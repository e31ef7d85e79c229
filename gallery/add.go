package gallery

import (
	"context"
	"io"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/meta"
	"go.uber.org/multierr"
)

// Add validates raw as an animated GIF, persists it with a thumbnail under a
// clock-derived id and appends the new asset to the collection.
//
// It fails with CodeInvalidFormat for undecodable bytes, CodeDuplicateID when
// the id is already taken in memory or on disk, and CodeIOFailure when a
// write fails. If the data write fails the thumbnail is removed again; if
// that removal also fails the error carries CodeRollbackFailed.
func (s *Store) Add(ctx context.Context, raw []byte) (string, error) {
	g, err := decodeAnimation(raw)
	if err != nil {
		return "", err
	}
	thumb := renderThumbnail(g)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	id := now.UTC().Format(IDLayout)
	log := s.log.WithContext(meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.AssetID:   id,
		meta.Operation: "add",
	}))

	if err = s.checkFreeLocked(id); err != nil {
		return "", err
	}

	thumbPath, dataPath := s.ThumbPath(id), s.DataPath(id)

	err = writeFileAtomic(s.fs, thumbPath, func(w io.Writer) error {
		return encodeThumbnail(w, thumb)
	})
	if err != nil {
		log.Warnx(err)
		return "", err
	}

	if err = writeBytesAtomic(s.fs, dataPath, raw); err != nil {
		if rmErr := removeIfExists(s.fs, thumbPath); rmErr != nil {
			err = errx.New("failed to roll back thumbnail after data write failure",
				errx.WithCode(CodeRollbackFailed),
				errx.WithDetails(errx.D{"asset_id": id, "error": multierr.Combine(err, rmErr).Error()}),
			)
		}
		log.Warnx(err)
		return "", err
	}

	s.evict(dataPath)
	s.assets = append(s.assets, s.newFileAsset(id,
		asset.WithCreationTime(now),
		asset.WithThumbnail(thumb),
	))
	log.Debug("asset added")

	return id, nil
}

func (s *Store) checkFreeLocked(id string) error {
	dup := func() error {
		return errx.New("asset id already exists", errx.WithCode(CodeDuplicateID), errx.WithDetails(errx.D{"asset_id": id}))
	}

	for _, a := range s.assets {
		if a.ID() == id {
			return dup()
		}
	}
	for _, path := range []string{s.DataPath(id), s.ThumbPath(id)} {
		ok, err := exists(s.fs, path)
		if err != nil {
			return err
		}
		if ok {
			return dup()
		}
	}
	return nil
}
