package filestore

import (
	"net/http"
	"slices"

	"github.com/code19m/errx"
	"github.com/liamg/magic"
)

// Content types a gallery store deals with.
const (
	ContentTypeGIF         = "image/gif"
	ContentTypeJPEG        = "image/jpeg"
	ContentTypePNG         = "image/png"
	ContentTypeWebP        = "image/webp"
	ContentTypeOctetStream = "application/octet-stream"
)

//nolint:gochecknoglobals // lookup table
var extToContentType = map[string]string{
	"gif":  ContentTypeGIF,
	"jpg":  ContentTypeJPEG,
	"jpeg": ContentTypeJPEG,
	"png":  ContentTypePNG,
	"webp": ContentTypeWebP,
}

// DetectContentType sniffs data by magic number, falling back to the
// net/http heuristics for anything the signature table does not know.
func DetectContentType(data []byte) string {
	if ft, err := magic.Lookup(data); err == nil && ft != nil {
		if ct, ok := extToContentType[ft.Extension]; ok {
			return ct
		}
	}
	if len(data) == 0 {
		return ContentTypeOctetStream
	}
	return http.DetectContentType(data)
}

// RequireContentType fails with CodeUnsupportedContentType unless data sniffs
// as one of allowed.
func RequireContentType(data []byte, allowed ...string) (string, error) {
	ct := DetectContentType(data)
	if !slices.Contains(allowed, ct) {
		return ct, errx.New("unsupported content type",
			errx.WithCode(CodeUnsupportedContentType),
			errx.WithType(errx.T_Validation),
			errx.WithDetails(errx.D{"content_type": ct, "allowed": allowed}),
		)
	}
	return ct, nil
}
