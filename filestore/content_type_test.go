package filestore_test

import (
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/gallery/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "gif87a", data: []byte("GIF87a\x01\x00\x01\x00"), want: filestore.ContentTypeGIF},
		{name: "gif89a", data: []byte("GIF89a\x01\x00\x01\x00"), want: filestore.ContentTypeGIF},
		{name: "png", data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), want: filestore.ContentTypePNG},
		{name: "empty", data: nil, want: filestore.ContentTypeOctetStream},
		{name: "text", data: []byte("hello world"), want: "text/plain; charset=utf-8"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filestore.DetectContentType(tc.data))
		})
	}
}

func TestRequireContentType(t *testing.T) {
	ct, err := filestore.RequireContentType([]byte("GIF89a\x01\x00\x01\x00"), filestore.ContentTypeGIF)
	require.NoError(t, err)
	assert.Equal(t, filestore.ContentTypeGIF, ct)

	_, err = filestore.RequireContentType([]byte("hello"), filestore.ContentTypeGIF)
	require.Error(t, err)
	assert.True(t, errx.IsCodeIn(err, filestore.CodeUnsupportedContentType))
}
