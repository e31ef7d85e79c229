// Package filestore is the blob storage behind the upload server and the
// direct-to-store sync backend. Keys are slash separated, e.g.
// "alice/20240301-120000.gif".
package filestore

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/code19m/errx"
)

// FileStore must be safe for concurrent use.
type FileStore interface {
	// Upload stores reader's content at path, replacing any previous file.
	Upload(ctx context.Context, path string, reader io.Reader) (*FileInfo, error)

	// Get opens the file at path; the caller closes File.Content. A missing
	// file fails with CodeFileNotFound.
	Get(ctx context.Context, path string) (*File, error)

	// Delete removes the file at path. A missing file is not an error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether a file is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// File is an open stored file together with its metadata.
type File struct {
	Content io.ReadCloser
	Info    FileInfo
}

// FileInfo describes a stored file. ContentType is sniffed from the content
// on upload.
type FileInfo struct {
	Path         string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// CleanKey normalises p into a key without a leading slash. Empty keys and
// keys containing ".." fail with CodeInvalidPath.
func CleanKey(p string) (string, error) {
	key := strings.TrimPrefix(path.Clean("/"+p), "/")
	if key == "" || strings.Contains(p, "..") {
		return "", errx.New("invalid object path",
			errx.WithCode(CodeInvalidPath),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"path": p}),
		)
	}
	return key, nil
}

// ReadAll fetches the whole file at path. Files larger than limit fail with
// CodeFileTooLarge; a non-positive limit means no limit.
func ReadAll(ctx context.Context, fs FileStore, path string, limit int64) ([]byte, *FileInfo, error) {
	f, err := fs.Get(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Content.Close()

	r := f.Content
	if limit > 0 {
		r = io.NopCloser(io.LimitReader(f.Content, limit+1))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, nil, errx.New("file exceeds size limit",
			errx.WithCode(CodeFileTooLarge),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"path": path, "limit": limit}),
		)
	}
	return data, &f.Info, nil
}
