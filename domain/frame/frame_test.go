package frame

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

func bgra8Desc(w, h, stride int) Descriptor {
	return Descriptor{Width: w, Height: h, Format: BGRA8, BytesPerPixel: 4, BytesPerRow: stride}
}

func TestDescriptor_Validate(t *testing.T) {
	cases := []struct {
		name string
		desc Descriptor
		ok   bool
	}{
		{"dense", bgra8Desc(3, 2, 12), true},
		{"padded", bgra8Desc(3, 2, 16), true},
		{"stride too short", bgra8Desc(3, 2, 11), false},
		{"zero width", bgra8Desc(0, 2, 16), false},
		{"negative height", bgra8Desc(3, -1, 16), false},
		{"bpp mismatch", Descriptor{Width: 1, Height: 1, Format: RGBA16F, BytesPerPixel: 4, BytesPerRow: 8}, false},
		{"unknown format", Descriptor{Width: 1, Height: 1, Format: ColorFormat(9), BytesPerPixel: 4, BytesPerRow: 4}, false},
	}
	for _, tc := range cases {
		err := tc.desc.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrBufferLayout) {
				t.Fatalf("%s: error %v not ErrBufferLayout", tc.name, err)
			}
		}
	}
}

func TestNew_RejectsBufferLengthMismatch(t *testing.T) {
	desc := bgra8Desc(2, 2, 8)
	if _, err := New(desc, make([]byte, 15)); !errors.Is(err, ErrBufferLayout) {
		t.Fatalf("expected ErrBufferLayout, got %v", err)
	}
	if _, err := New(desc, make([]byte, 16)); err != nil {
		t.Fatalf("exact-length buffer rejected: %v", err)
	}
}

func TestView_CachedAndSharedUntilForcedCopy(t *testing.T) {
	desc := bgra8Desc(2, 2, 8)
	raw := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	f, err := New(desc, raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	v1 := f.View(false)
	v2 := f.View(false)
	if v1 != v2 {
		t.Fatalf("expected identical cached view, got distinct pointers")
	}
	if &v1.Rows[0][0] != &raw[0] {
		t.Fatalf("shared view does not alias the raw buffer")
	}

	dup := f.View(true)
	if dup == v1 {
		t.Fatalf("forced copy returned the cached view")
	}
	if &dup.Rows[0][0] == &raw[0] {
		t.Fatalf("forced copy aliases the raw buffer")
	}
	if !bytes.Equal(dup.Rows[1], v1.Rows[1]) {
		t.Fatalf("copy content differs: %v vs %v", dup.Rows[1], v1.Rows[1])
	}
	// Mutating the copy must not leak into the cached view.
	dup.Rows[0][0] = 0xAA
	if v1.Rows[0][0] == 0xAA {
		t.Fatalf("mutation of forced copy visible through cached view")
	}
	if f.View(false) != v1 {
		t.Fatalf("forced copy poisoned the cache")
	}
}

func TestView_DropsRowPadding(t *testing.T) {
	// width=3, bpp=4, stride=16: 4 trailing padding bytes per row.
	desc := bgra8Desc(3, 2, 16)
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	raw[12], raw[13], raw[14], raw[15] = 0xEE, 0xEE, 0xEE, 0xEE
	raw[28], raw[29], raw[30], raw[31] = 0xEE, 0xEE, 0xEE, 0xEE

	f, err := New(desc, raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := f.View(false)
	for y, row := range v.Rows {
		if len(row) != 12 {
			t.Fatalf("row %d length %d, want 12", y, len(row))
		}
		if bytes.IndexByte(row, 0xEE) != -1 {
			t.Fatalf("row %d contains padding bytes: %v", y, row)
		}
		// Capped rows must not allow appends to reach into the padding.
		if cap(row) != 12 {
			t.Fatalf("row %d capacity %d leaks past logical width", y, cap(row))
		}
	}
}

func TestView_Crop(t *testing.T) {
	desc := bgra8Desc(4, 3, 16)
	raw := make([]byte, 48)
	for i := range raw {
		raw[i] = byte(i)
	}
	f, err := New(desc, raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v := f.View(false)

	c, err := v.Crop(image.Rect(1, 1, 3, 3))
	if err != nil {
		t.Fatalf("Crop: %v", err)
	}
	if c.Width != 2 || c.Height != 2 {
		t.Fatalf("crop size %dx%d, want 2x2", c.Width, c.Height)
	}
	// Row 1 of the source starts at byte 16; pixel x=1 at byte 20.
	if &c.Rows[0][0] != &raw[20] {
		t.Fatalf("crop does not share source storage")
	}

	if _, err := v.Crop(image.Rect(10, 10, 12, 12)); err == nil {
		t.Fatalf("expected error for crop outside bounds")
	}
}

func TestBytes_FullCopyIncludingPadding(t *testing.T) {
	desc := bgra8Desc(3, 2, 16)
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(0xF0 | i&0x0F)
	}
	f, err := New(desc, raw)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out := f.Bytes()
	if len(out) != desc.Height*desc.BytesPerRow {
		t.Fatalf("Bytes length %d, want %d", len(out), desc.Height*desc.BytesPerRow)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("Bytes content differs from raw buffer")
	}
	out[0] = 0x00
	if f.Bytes()[0] == 0x00 {
		t.Fatalf("Bytes does not return an independent copy")
	}
}
