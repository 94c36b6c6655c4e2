package capture

import (
	"image"
	"time"

	"github.com/soocke/screen-dup-go/domain/frame"
)

// backend abstracts the OS capture surface behind a session. Implementations
// report the raw bytes plus the descriptor for that instant, and signal "no
// new frame within the wait" by returning a nil buffer with a nil error.
// Regions are pre-validated by the session and always lie within Bounds.
type backend interface {
	// Bounds reports the pixel area of the bound monitor, origin (0,0).
	Bounds() image.Rectangle
	Acquire(timeout time.Duration, region *image.Rectangle) ([]byte, frame.Descriptor, error)
	Close()
}

// rgbaRaw flattens img, optionally cropped to region (coordinates relative to
// the image origin), into a raw buffer plus its descriptor. The full-image
// path hands over img.Pix without copying and preserves the image stride.
func rgbaRaw(img *image.RGBA, region *image.Rectangle) ([]byte, frame.Descriptor) {
	b := img.Bounds()
	if region == nil {
		desc := frame.Descriptor{
			Width:         b.Dx(),
			Height:        b.Dy(),
			Format:        frame.RGBA8,
			BytesPerPixel: 4,
			BytesPerRow:   img.Stride,
		}
		return img.Pix[:b.Dy()*img.Stride], desc
	}
	w, h := region.Dx(), region.Dy()
	raw := make([]byte, h*w*4)
	for y := 0; y < h; y++ {
		srcOff := (region.Min.Y+y)*img.Stride + region.Min.X*4
		copy(raw[y*w*4:(y+1)*w*4], img.Pix[srcOff:srcOff+w*4])
	}
	desc := frame.Descriptor{Width: w, Height: h, Format: frame.RGBA8, BytesPerPixel: 4, BytesPerRow: w * 4}
	return raw, desc
}
