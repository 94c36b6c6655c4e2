package frame

import (
	"errors"
	"fmt"
)

// ErrBufferLayout reports a descriptor or buffer that breaks the capture
// backend contract. It indicates an integration bug in the backend, not a
// recoverable runtime condition.
var ErrBufferLayout = errors.New("frame: buffer layout violation")

// ColorFormat identifies the channel order and per-channel type of a raw
// capture buffer.
type ColorFormat uint8

const (
	// BGRA8 is four unsigned 8-bit channels, blue first. The default desktop
	// duplication surface format.
	BGRA8 ColorFormat = iota
	// RGBA8 is four unsigned 8-bit channels, red first.
	RGBA8
	// RGBA16F is four half-precision float channels, reported for HDR
	// outputs. Channel values are usually in [0,1] but may overshoot.
	RGBA16F
)

func (f ColorFormat) String() string {
	switch f {
	case BGRA8:
		return "bgra8"
	case RGBA8:
		return "rgba8"
	case RGBA16F:
		return "rgba16f"
	}
	return fmt.Sprintf("ColorFormat(%d)", uint8(f))
}

// BytesPerPixel returns the per-pixel byte width of the format, or 0 for an
// unknown format.
func (f ColorFormat) BytesPerPixel() int {
	switch f {
	case BGRA8, RGBA8:
		return 4
	case RGBA16F:
		return 8
	}
	return 0
}

// Descriptor is the metadata a capture backend reports alongside each raw
// buffer. BytesPerRow is the row stride and may exceed the logical row
// length (Width*BytesPerPixel) when the backend pads rows for alignment.
type Descriptor struct {
	Width         int
	Height        int
	Format        ColorFormat
	BytesPerPixel int
	BytesPerRow   int
}

// Validate checks the descriptor invariants. Any violation is wrapped in
// ErrBufferLayout.
func (d Descriptor) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: non-positive dimensions %dx%d", ErrBufferLayout, d.Width, d.Height)
	}
	bpp := d.Format.BytesPerPixel()
	if bpp == 0 {
		return fmt.Errorf("%w: unknown color format %v", ErrBufferLayout, d.Format)
	}
	if d.BytesPerPixel != bpp {
		return fmt.Errorf("%w: %v reports %d bytes per pixel, want %d", ErrBufferLayout, d.Format, d.BytesPerPixel, bpp)
	}
	if d.BytesPerRow < d.Width*bpp {
		return fmt.Errorf("%w: row stride %d shorter than logical row %d", ErrBufferLayout, d.BytesPerRow, d.Width*bpp)
	}
	return nil
}
