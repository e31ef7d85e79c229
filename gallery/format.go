package gallery

import (
	"bytes"
	"errors"
	"image"
	"image/gif"
	"io"

	"github.com/code19m/errx"
	"github.com/disintegration/imaging"
	"github.com/liamg/magic"
)

const (
	// DataExt is the extension of files in the data directory.
	DataExt = ".gif"

	// ThumbExt is the extension of files in the thumbs directory.
	ThumbExt = ".jpg"

	thumbWidth  = 100
	thumbHeight = 100

	sniffLen = 512
)

// decodeAnimation checks raw is a GIF by signature and fully decodes it.
func decodeAnimation(raw []byte) (*gif.GIF, error) {
	ft, _ := magic.Lookup(raw)
	if ft == nil || ft.Extension != "gif" {
		return nil, errx.New("unrecognised image signature", errx.WithCode(CodeInvalidFormat))
	}

	g, err := gif.DecodeAll(bytes.NewReader(raw))
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidFormat))
	}
	if len(g.Image) == 0 {
		return nil, errx.New("animation has no frames", errx.WithCode(CodeInvalidFormat))
	}
	return g, nil
}

// checkDataHeader reads the start of a data file and verifies it carries a
// GIF signature and a decodable header.
func checkDataHeader(r io.Reader) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return errx.Wrap(err, errx.WithCode(CodeIOFailure))
	}
	head = head[:n]

	ft, _ := magic.Lookup(head)
	if ft == nil || ft.Extension != "gif" {
		return errx.New("unrecognised image signature", errx.WithCode(CodeInvalidFormat))
	}
	if _, err = gif.DecodeConfig(io.MultiReader(bytes.NewReader(head), r)); err != nil {
		return errx.Wrap(err, errx.WithCode(CodeInvalidFormat))
	}
	return nil
}

// renderThumbnail scales the first frame to fill the thumbnail box.
func renderThumbnail(g *gif.GIF) image.Image {
	return imaging.Thumbnail(g.Image[0], thumbWidth, thumbHeight, imaging.Lanczos)
}

func encodeThumbnail(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(85))
}

func decodeThumbnail(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}
