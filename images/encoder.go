package images

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/soocke/screen-dup-go/domain/frame"
)

// Encoder writes dense 3-channel images to disk, choosing the format from
// the destination file extension (.png, .jpg, .jpeg, .bmp). The zero value
// is ready to use.
type Encoder struct {
	// JPEGQuality overrides the library default when > 0.
	JPEGQuality int
}

var _ frame.Encoder = Encoder{}

// EncodeBGR writes a height*width*3 BGR buffer to path. Unsupported
// extensions and filesystem failures surface as errors; no file is created
// for an unsupported extension.
func (e Encoder) EncodeBGR(path string, width, height int, bgr []byte) error {
	if len(bgr) != width*height*3 {
		return fmt.Errorf("images: bgr buffer is %d bytes, want %d", len(bgr), width*height*3)
	}
	encode, err := e.encoderFor(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encode(f, FromBGR(width, height, bgr))
}

func (e Encoder) encoderFor(path string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return png.Encode, nil
	case ".jpg", ".jpeg":
		q := jpeg.DefaultQuality
		if e.JPEGQuality > 0 {
			q = e.JPEGQuality
		}
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
		}, nil
	case ".bmp":
		return func(w io.Writer, img image.Image) error { return bmp.Encode(w, img) }, nil
	}
	return nil, fmt.Errorf("images: unsupported extension %q", filepath.Ext(path))
}

// FromBGR expands a packed BGR buffer into an opaque *image.RGBA.
func FromBGR(width, height int, bgr []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, o := 0, 0; i+2 < len(bgr); i, o = i+3, o+4 {
		img.Pix[o+0] = bgr[i+2]
		img.Pix[o+1] = bgr[i+1]
		img.Pix[o+2] = bgr[i+0]
		img.Pix[o+3] = 0xFF
	}
	return img
}

// WritePNG writes img to path as PNG regardless of extension.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
