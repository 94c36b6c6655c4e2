package images

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeBGR_WritesDecodablePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	// 2x1: left pixel blue, right pixel red (BGR order).
	bgr := []byte{255, 0, 0, 0, 0, 255}

	if err := (Encoder{}).EncodeBGR(path, 2, 1, bgr); err != nil {
		t.Fatalf("EncodeBGR: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatalf("decoded bounds %v", img.Bounds())
	}
	r, g, b, _ := img.At(0, 0).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Fatalf("pixel 0 = %d,%d,%d, want blue", r>>8, g>>8, b>>8)
	}
	r, _, b, _ = img.At(1, 0).RGBA()
	if r>>8 != 255 || b>>8 != 0 {
		t.Fatalf("pixel 1 = r=%d b=%d, want red", r>>8, b>>8)
	}
}

func TestEncodeBGR_ExtensionDispatch(t *testing.T) {
	dir := t.TempDir()
	bgr := []byte{1, 2, 3}
	for _, name := range []string{"a.png", "b.jpg", "c.jpeg", "d.bmp", "E.PNG"} {
		if err := (Encoder{}).EncodeBGR(filepath.Join(dir, name), 1, 1, bgr); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

func TestEncodeBGR_UnsupportedExtensionCreatesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.tiff")
	if err := (Encoder{}).EncodeBGR(path, 1, 1, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file created despite unsupported extension")
	}
}

func TestEncodeBGR_RejectsShortBuffer(t *testing.T) {
	if err := (Encoder{}).EncodeBGR("x.png", 2, 2, []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected buffer length error")
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	out := ScaleToFit(src, 100, 100)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Fatalf("scaled bounds %v, want 100x50", out.Bounds())
	}
	// Already fits: same image back.
	if got := ScaleToFit(src, 800, 800); got != image.Image(src) {
		t.Fatalf("expected original image when it already fits")
	}
}
