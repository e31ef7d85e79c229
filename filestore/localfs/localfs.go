// Package localfs provides a directory-backed implementation of the
// filestore.FileStore interface.
package localfs

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Store implements filestore.FileStore on top of a directory.
type Store struct {
	fs afero.Fs
}

// New returns a store rooted at dir on the OS filesystem.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewWithFs returns a store over an arbitrary afero filesystem. Paths are
// interpreted relative to its root.
func NewWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Upload writes the content of reader to path through a temp file so readers
// never see a partial upload.
func (s *Store) Upload(ctx context.Context, p string, reader io.Reader) (*filestore.FileInfo, error) {
	name, err := clean(p)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if err = ctx.Err(); err != nil {
		return nil, errx.Wrap(err)
	}

	if err = s.fs.MkdirAll(filepath.Dir(name), dirPerm); err != nil {
		return nil, errx.Wrap(err)
	}

	tmp := name + "." + uuid.NewString() + ".part"
	if err = afero.WriteReader(s.fs, tmp, bytes.NewReader(data)); err != nil {
		_ = s.fs.Remove(tmp)
		return nil, errx.Wrap(err)
	}
	if err = s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return nil, errx.Wrap(err)
	}

	st, err := s.fs.Stat(name)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &filestore.FileInfo{
		Path:         p,
		Size:         int64(len(data)),
		ContentType:  filestore.DetectContentType(data),
		ETag:         etag(data),
		LastModified: st.ModTime(),
	}, nil
}

// Get opens the file at path.
func (s *Store) Get(_ context.Context, p string) (*filestore.File, error) {
	name, err := clean(p)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, wrapNotFound(err, p)
	}
	st, err := s.fs.Stat(name)
	if err != nil {
		return nil, wrapNotFound(err, p)
	}

	return &filestore.File{
		Content: io.NopCloser(bytes.NewReader(data)),
		Info: filestore.FileInfo{
			Path:         p,
			Size:         int64(len(data)),
			ContentType:  filestore.DetectContentType(data),
			ETag:         etag(data),
			LastModified: st.ModTime(),
		},
	}, nil
}

// Delete removes the file at path. A missing file is not an error.
func (s *Store) Delete(_ context.Context, p string) error {
	name, err := clean(p)
	if err != nil {
		return err
	}
	err = s.fs.Remove(name)
	if err != nil && !os.IsNotExist(err) {
		return errx.Wrap(err)
	}
	return nil
}

// Exists reports whether a regular file is stored at path.
func (s *Store) Exists(_ context.Context, p string) (bool, error) {
	name, err := clean(p)
	if err != nil {
		return false, err
	}
	st, err := s.fs.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errx.Wrap(err)
	}
	return !st.IsDir(), nil
}

func clean(p string) (string, error) {
	key, err := filestore.CleanKey(p)
	if err != nil {
		return "", err
	}
	return filepath.FromSlash("/" + key), nil
}

func wrapNotFound(err error, p string) error {
	if os.IsNotExist(err) {
		return errx.New("file not found",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"path": p}),
		)
	}
	return errx.Wrap(err)
}

func etag(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
