// Package gallery keeps an ordered collection of animated-image assets backed
// by two sibling directories: data/<id>.gif and thumbs/<id>.jpg.
//
// A data file and its thumbnail either both exist or the asset is not
// loadable. Add writes the thumbnail first and removes it again if the data
// write fails, so a failed add never leaves half a pair behind.
package gallery

import (
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/asset"
	"github.com/rise-and-shine/gallery/bytecache"
	"github.com/rise-and-shine/gallery/logger"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

const (
	dataDir  = "data"
	thumbDir = "thumbs"

	// IDLayout formats the UTC creation time into an asset id.
	IDLayout = "20060102-150405"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store owns the in-memory asset collection for one gallery directory.
// Mutations are serialised; Assets returns a snapshot that is safe to read
// concurrently.
type Store struct {
	root string
	fs   afero.Fs

	cache       *bytecache.Cache
	clock       func() time.Time
	createdTime func(id string, modTime time.Time) (time.Time, bool)
	log         logger.Logger

	mu     sync.RWMutex
	assets []*asset.Asset

	// Selection is the UI-facing current selection.
	Selection *Selection
}

// Option configures a Store.
type Option func(*Store)

// WithFS sets the filesystem. Defaults to the OS filesystem.
func WithFS(fs afero.Fs) Option {
	return func(s *Store) { s.fs = fs }
}

// WithCache sets the byte cache handed to every file-backed asset.
func WithCache(c *bytecache.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithClock sets the time source used to derive ids.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCreationTimeFunc overrides how Load derives an asset's creation time
// from its data file. The default uses the file's modification time.
func WithCreationTimeFunc(fn func(id string, modTime time.Time) (time.Time, bool)) Option {
	return func(s *Store) { s.createdTime = fn }
}

// Open prepares the data and thumbs directories under root. It does not read
// them; call Load for that.
func Open(root string, opts ...Option) (*Store, error) {
	s := &Store{
		root:      root,
		fs:        afero.NewOsFs(),
		clock:     time.Now,
		log:       logger.Nop(),
		Selection: NewSelection(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.createdTime == nil {
		s.createdTime = func(_ string, modTime time.Time) (time.Time, bool) {
			return modTime, !modTime.IsZero()
		}
	}
	s.log = s.log.Named("gallery").With("root", root)

	for _, dir := range []string{s.dataDir(), s.thumbDir()} {
		if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
			return nil, errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"dir": dir}))
		}
	}

	return s, nil
}

func (s *Store) dataDir() string  { return filepath.Join(s.root, dataDir) }
func (s *Store) thumbDir() string { return filepath.Join(s.root, thumbDir) }

// DataPath returns where the data file for id lives.
func (s *Store) DataPath(id string) string {
	return filepath.Join(s.dataDir(), id+DataExt)
}

// ThumbPath returns where the thumbnail file for id lives.
func (s *Store) ThumbPath(id string) string {
	return filepath.Join(s.thumbDir(), id+ThumbExt)
}

// Assets returns a snapshot of the collection in its current order.
func (s *Store) Assets() []*asset.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.assets)
}

// IDs returns the ids of the collection in order.
func (s *Store) IDs() []string {
	return lo.Map(s.Assets(), func(a *asset.Asset, _ int) string { return a.ID() })
}

// Get returns the asset with the given id.
func (s *Store) Get(id string) (*asset.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.assets, func(a *asset.Asset) bool { return a.ID() == id })
}

// Len returns the number of assets in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.assets)
}

// evict drops a data file's cached bytes once the file behind it changed.
func (s *Store) evict(dataPath string) {
	if s.cache != nil {
		s.cache.Remove(dataPath)
	}
}

func (s *Store) newFileAsset(id string, opts ...asset.Option) *asset.Asset {
	opts = append([]asset.Option{
		asset.WithCache(s.cache),
		asset.WithFS(s.fs),
		asset.WithLogger(s.log),
	}, opts...)
	return asset.NewFileBacked(id, s.DataPath(id), s.ThumbPath(id), opts...)
}
