package frame

import (
	"fmt"
	"image"
	"sync/atomic"
)

// Frame wraps one captured buffer together with its descriptor. A frame is
// immutable after construction: the raw buffer is owned exclusively by the
// frame and never written, so concurrent reads are safe. The logical view is
// cached lazily; rebuilding it from the same bytes yields identical content,
// so cache population is idempotent and needs no locking.
type Frame struct {
	desc Descriptor
	raw  []byte
	view atomic.Pointer[View]
}

// View is the logical image: one row slice per pixel row, each exactly
// Width*BytesPerPixel bytes long with the stride padding removed. Unless the
// view was built with forceCopy, rows alias the frame's raw buffer and must
// not be mutated.
type View struct {
	Width  int
	Height int
	Format ColorFormat
	Rows   [][]byte
}

// New validates desc against raw and wraps both in a Frame. The caller hands
// over ownership of raw and must not mutate it afterwards. The buffer length
// must equal Height*BytesPerRow exactly.
func New(desc Descriptor, raw []byte) (*Frame, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if want := desc.Height * desc.BytesPerRow; len(raw) != want {
		return nil, fmt.Errorf("%w: buffer is %d bytes, want %d (%d rows of %d)",
			ErrBufferLayout, len(raw), want, desc.Height, desc.BytesPerRow)
	}
	return &Frame{desc: desc, raw: raw}, nil
}

// Descriptor returns the metadata the backend reported for this frame.
func (f *Frame) Descriptor() Descriptor { return f.desc }

func (f *Frame) Width() int          { return f.desc.Width }
func (f *Frame) Height() int         { return f.desc.Height }
func (f *Frame) Format() ColorFormat { return f.desc.Format }

// View returns the logical image with row padding sliced off. With
// forceCopy=false the rows alias the raw buffer and the result is cached, so
// repeated calls return the same view. With forceCopy=true a fresh,
// independently mutable duplicate is returned and the cache is left alone.
func (f *Frame) View(forceCopy bool) *View {
	if !forceCopy {
		if v := f.view.Load(); v != nil {
			return v
		}
	}
	v := f.sliceRows()
	if forceCopy {
		return v.clone()
	}
	f.view.Store(v)
	return v
}

// sliceRows builds the shared row view. Each row is capped at the logical
// length so downstream code cannot reach into the padding bytes.
func (f *Frame) sliceRows() *View {
	rowLen := f.desc.Width * f.desc.BytesPerPixel
	rows := make([][]byte, f.desc.Height)
	for y := 0; y < f.desc.Height; y++ {
		off := y * f.desc.BytesPerRow
		rows[y] = f.raw[off : off+rowLen : off+rowLen]
	}
	return &View{Width: f.desc.Width, Height: f.desc.Height, Format: f.desc.Format, Rows: rows}
}

// clone duplicates the view into one dense backing allocation.
func (v *View) clone() *View {
	rowLen := v.Width * v.Format.BytesPerPixel()
	dense := make([]byte, v.Height*rowLen)
	rows := make([][]byte, v.Height)
	for y, row := range v.Rows {
		dst := dense[y*rowLen : (y+1)*rowLen : (y+1)*rowLen]
		copy(dst, row)
		rows[y] = dst
	}
	return &View{Width: v.Width, Height: v.Height, Format: v.Format, Rows: rows}
}

// Crop returns the sub-view covering r, clamped to the view bounds. The
// returned rows share the receiver's storage.
func (v *View) Crop(r image.Rectangle) (*View, error) {
	bounds := image.Rect(0, 0, v.Width, v.Height)
	c := r.Intersect(bounds)
	if c.Empty() {
		return nil, fmt.Errorf("frame: crop %v outside view %v", r, bounds)
	}
	bpp := v.Format.BytesPerPixel()
	rows := make([][]byte, c.Dy())
	for y := range rows {
		src := v.Rows[c.Min.Y+y]
		rows[y] = src[c.Min.X*bpp : c.Max.X*bpp : c.Max.X*bpp]
	}
	return &View{Width: c.Dx(), Height: c.Dy(), Format: v.Format, Rows: rows}, nil
}

// Bytes returns an independent copy of the full raw buffer exactly as
// received from the backend, including row padding. This is the lossless,
// backend-faithful export; its length is always Height*BytesPerRow.
func (f *Frame) Bytes() []byte {
	out := make([]byte, len(f.raw))
	copy(out, f.raw)
	return out
}
