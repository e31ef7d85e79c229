package localfs_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/rise-and-shine/gallery/filestore/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadGetDelete(t *testing.T) {
	s := localfs.NewWithFs(afero.NewMemMapFs())
	ctx := t.Context()
	content := []byte("GIF89a-not-really")

	info, err := s.Upload(ctx, "alice/a1.gif", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, "alice/a1.gif", info.Path)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.NotEmpty(t, info.ETag)

	ok, err := s.Exists(ctx, "alice/a1.gif")
	require.NoError(t, err)
	assert.True(t, ok)

	f, err := s.Get(ctx, "alice/a1.gif")
	require.NoError(t, err)
	got, err := io.ReadAll(f.Content)
	require.NoError(t, err)
	require.NoError(t, f.Content.Close())
	assert.Equal(t, content, got)
	assert.Equal(t, info.ETag, f.Info.ETag)

	require.NoError(t, s.Delete(ctx, "alice/a1.gif"))
	require.NoError(t, s.Delete(ctx, "alice/a1.gif"), "deleting twice is fine")

	ok, err = s.Exists(ctx, "alice/a1.gif")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMissing(t *testing.T) {
	s := localfs.NewWithFs(afero.NewMemMapFs())

	_, err := s.Get(t.Context(), "nobody/none.gif")

	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filestore.CodeFileNotFound))
}

func TestUploadReplaces(t *testing.T) {
	s := localfs.NewWithFs(afero.NewMemMapFs())
	ctx := t.Context()

	_, err := s.Upload(ctx, "o/x.gif", bytes.NewReader([]byte("one")))
	require.NoError(t, err)
	_, err = s.Upload(ctx, "o/x.gif", bytes.NewReader([]byte("two")))
	require.NoError(t, err)

	f, err := s.Get(ctx, "o/x.gif")
	require.NoError(t, err)
	got, _ := io.ReadAll(f.Content)
	assert.Equal(t, "two", string(got))
}

func TestRejectsTraversal(t *testing.T) {
	s := localfs.NewWithFs(afero.NewMemMapFs())

	for _, p := range []string{"", "/", "../etc/passwd", "a/../../b"} {
		_, err := s.Exists(t.Context(), p)
		assert.True(t, errx.IsCodeIn(err, filestore.CodeInvalidPath), p)
	}
}

func TestExistsIgnoresDirectories(t *testing.T) {
	s := localfs.NewWithFs(afero.NewMemMapFs())
	_, err := s.Upload(t.Context(), "owner/a.gif", bytes.NewReader([]byte("x")))
	require.NoError(t, err)

	ok, err := s.Exists(t.Context(), "owner")
	require.NoError(t, err)
	assert.False(t, ok)
}
