package frame

import (
	"image"

	"github.com/kirides/go-d3d/outputduplication/swizzle"
	"github.com/x448/float16"
)

// Encoder is the sink SaveAsImage hands a finished 3-channel image to.
// Implementations write synchronously and surface failures to the caller.
type Encoder interface {
	EncodeBGR(path string, width, height int, bgr []byte) error
}

// ToBGR returns a dense Height*Width*3 byte image in BGR channel order. The
// alpha channel is always discarded; no blending is performed. forceCopy is
// forwarded to View and only affects whether the intermediate view is the
// shared cached one — the same conversion kernel runs either way, so both
// paths produce byte-identical output.
func (f *Frame) ToBGR(forceCopy bool) []byte { return f.convert(forceCopy, false) }

// ToRGB is the channel-order mirror of ToBGR.
func (f *Frame) ToRGB(forceCopy bool) []byte { return f.convert(forceCopy, true) }

func (f *Frame) convert(forceCopy, rgb bool) []byte {
	v := f.View(forceCopy)
	switch f.desc.Format {
	case BGRA8:
		if rgb {
			return convert8(v, 2, 1, 0)
		}
		return convert8(v, 0, 1, 2)
	case RGBA8:
		if rgb {
			return convert8(v, 0, 1, 2)
		}
		return convert8(v, 2, 1, 0)
	case RGBA16F:
		if rgb {
			return convert16f(v, 0, 1, 2)
		}
		return convert16f(v, 2, 1, 0)
	}
	// Unreachable: New rejects unknown formats.
	return nil
}

// convert8 packs 4-byte pixels into 3-byte output, picking source channels
// i0, i1, i2 in output order.
func convert8(v *View, i0, i1, i2 int) []byte {
	out := make([]byte, v.Height*v.Width*3)
	o := 0
	for _, row := range v.Rows {
		for x := 0; x < v.Width; x++ {
			px := row[x*4 : x*4+4]
			out[o] = px[i0]
			out[o+1] = px[i1]
			out[o+2] = px[i2]
			o += 3
		}
	}
	return out
}

// convert16f tone-maps half-float pixels to 8-bit output. There is no
// zero-copy rendition of this conversion; it always materializes.
func convert16f(v *View, i0, i1, i2 int) []byte {
	out := make([]byte, v.Height*v.Width*3)
	o := 0
	for _, row := range v.Rows {
		for x := 0; x < v.Width; x++ {
			px := row[x*8 : x*8+8]
			out[o] = tone(px, i0)
			out[o+1] = tone(px, i1)
			out[o+2] = tone(px, i2)
			o += 3
		}
	}
	return out
}

// tone decodes the little-endian half float of channel c, clamps it to [0,1]
// and scales to 8 bits. HDR overshoot must saturate, never wrap; NaN maps
// to 0.
func tone(px []byte, c int) byte {
	bits := uint16(px[c*2]) | uint16(px[c*2+1])<<8
	fv := float16.Frombits(bits).Float32()
	switch {
	case fv != fv || fv <= 0:
		return 0
	case fv >= 1:
		return 255
	}
	return byte(fv * 255)
}

// ToImage renders the frame as an opaque *image.RGBA for interop with
// image/draw consumers. Capture alpha is undefined and forced to 0xFF.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.desc.Width, f.desc.Height))
	switch f.desc.Format {
	case BGRA8, RGBA8:
		v := f.View(false)
		rowLen := f.desc.Width * 4
		for y, row := range v.Rows {
			copy(img.Pix[y*img.Stride:y*img.Stride+rowLen], row)
		}
		if f.desc.Format == BGRA8 {
			swizzle.BGRA(img.Pix)
		}
	case RGBA16F:
		rgb := f.ToRGB(true)
		for i, o := 0, 0; i+2 < len(rgb); i, o = i+3, o+4 {
			img.Pix[o+0] = rgb[i+0]
			img.Pix[o+1] = rgb[i+1]
			img.Pix[o+2] = rgb[i+2]
		}
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	return img
}

// SaveAsImage converts the frame to BGR and writes it through enc. 8-bit
// sources pass the shared view (forceCopy=false); RGBA16F always materializes
// anyway, so it converts with forceCopy=true. The encoder must accept either.
func (f *Frame) SaveAsImage(enc Encoder, path string) error {
	bgr := f.ToBGR(f.desc.Format == RGBA16F)
	return enc.EncodeBGR(path, f.desc.Width, f.desc.Height, bgr)
}
