package gallery

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// writeFileAtomic writes to a uniquely named sibling and renames it into
// place, so readers never observe a partially written file.
func writeFileAtomic(fs afero.Fs, path string, write func(io.Writer) error) (err error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	f, err := fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
	}
	defer func() {
		if err != nil {
			_ = fs.Remove(tmp)
		}
	}()

	if err = write(f); err != nil {
		_ = f.Close()
		return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
	}
	if err = f.Close(); err != nil {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
	}
	if err = fs.Rename(tmp, path); err != nil {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
	}
	return nil
}

func writeBytesAtomic(fs afero.Fs, path string, data []byte) error {
	return writeFileAtomic(fs, path, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// removeIfExists deletes path, treating an already missing file as success.
func removeIfExists(fs afero.Fs, path string) error {
	err := fs.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
}

func exists(fs afero.Fs, path string) (bool, error) {
	ok, err := afero.Exists(fs, path)
	if err != nil {
		return false, errx.Wrap(err, errx.WithCode(CodeIOFailure), errx.WithDetails(errx.D{"path": path}))
	}
	return ok, nil
}
