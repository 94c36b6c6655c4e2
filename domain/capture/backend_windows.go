//go:build windows

package capture

// Windows capture backends. DXGI output duplication is preferred: it blocks
// until the desktop actually changes, so the acquire timeout is meaningful
// and static content yields no frame. When duplication is unavailable (RDP
// sessions, older drivers) a GDI BitBlt backend takes over; GDI blits
// synchronously and reports the DIB bytes untouched, in BGRA order.

import (
	"errors"
	"fmt"
	"image"
	"time"
	"unsafe"

	"github.com/kbinani/screenshot"
	"github.com/kirides/go-d3d/d3d11"
	"github.com/kirides/go-d3d/outputduplication"
	winDXGI "github.com/kirides/go-d3d/win"
	winGDI "github.com/lxn/win"

	"github.com/soocke/screen-dup-go/domain/frame"
)

func openBackend(monitor int) (backend, error) {
	bounds, err := displayBounds(monitor)
	if err != nil {
		return nil, err
	}
	if b, err := openDXGI(monitor, bounds); err == nil {
		return b, nil
	}
	return openGDI(bounds)
}

// displayBounds validates the monitor index and returns its virtual-screen
// rectangle.
func displayBounds(monitor int) (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if monitor < 0 || monitor >= n {
		return image.Rectangle{}, fmt.Errorf("monitor %d not available (%d displays)", monitor, n)
	}
	return screenshot.GetDisplayBounds(monitor), nil
}

type dxgiBackend struct {
	bounds    image.Rectangle // normalized to origin (0,0)
	device    *d3d11.ID3D11Device
	deviceCtx *d3d11.ID3D11DeviceContext
	ddup      *outputduplication.OutputDuplicator
}

func openDXGI(monitor int, display image.Rectangle) (*dxgiBackend, error) {
	if !winDXGI.IsValidDpiAwarenessContext(winDXGI.DpiAwarenessContextPerMonitorAwareV2) {
		return nil, errors.New("no valid DPI awareness context")
	}
	if _, err := winDXGI.SetThreadDpiAwarenessContext(winDXGI.DpiAwarenessContextPerMonitorAwareV2); err != nil {
		return nil, err
	}
	device, deviceCtx, err := d3d11.NewD3D11Device()
	if err != nil {
		return nil, err
	}
	ddup, err := outputduplication.NewIDXGIOutputDuplication(device, deviceCtx, uint(monitor))
	if err != nil {
		device.Release()
		deviceCtx.Release()
		return nil, err
	}
	return &dxgiBackend{
		bounds:    image.Rect(0, 0, display.Dx(), display.Dy()),
		device:    device,
		deviceCtx: deviceCtx,
		ddup:      ddup,
	}, nil
}

func (b *dxgiBackend) Bounds() image.Rectangle { return b.bounds }

func (b *dxgiBackend) Acquire(timeout time.Duration, region *image.Rectangle) ([]byte, frame.Descriptor, error) {
	img := image.NewRGBA(b.bounds)
	err := b.ddup.GetImage(img, int(timeout/time.Millisecond))
	if err == outputduplication.ErrNoImageYet {
		return nil, frame.Descriptor{}, nil
	}
	if err != nil {
		return nil, frame.Descriptor{}, err
	}
	raw, desc := rgbaRaw(img, region)
	return raw, desc, nil
}

func (b *dxgiBackend) Close() {
	if b.ddup != nil {
		b.ddup.Release()
		b.ddup = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.deviceCtx != nil {
		b.deviceCtx.Release()
		b.deviceCtx = nil
	}
}

type gdiBackend struct {
	origin image.Point // virtual-screen offset of the monitor
	width  int
	height int

	hwnd           winGDI.HWND
	hdc            winGDI.HDC
	memoryDevice   winGDI.HDC
	bitmap         winGDI.HBITMAP
	bitmapInfo     winGDI.BITMAPINFOHEADER
	bitmapDataSize uintptr
	hmem           winGDI.HGLOBAL
	memptr         unsafe.Pointer
}

func openGDI(display image.Rectangle) (*gdiBackend, error) {
	b := &gdiBackend{
		origin: display.Min,
		width:  display.Dx(),
		height: display.Dy(),
	}
	b.hwnd = winGDI.GetDesktopWindow()
	b.hdc = winGDI.GetDC(b.hwnd)
	if b.hdc == 0 {
		b.Close()
		return nil, errors.New("GetDC failed")
	}
	b.memoryDevice = winGDI.CreateCompatibleDC(b.hdc)
	if b.memoryDevice == 0 {
		b.Close()
		return nil, errors.New("CreateCompatibleDC failed")
	}
	b.bitmap = winGDI.CreateCompatibleBitmap(b.hdc, int32(b.width), int32(b.height))
	if b.bitmap == 0 {
		b.Close()
		return nil, errors.New("CreateCompatibleBitmap failed")
	}

	b.bitmapInfo = winGDI.BITMAPINFOHEADER{}
	b.bitmapInfo.BiSize = uint32(unsafe.Sizeof(b.bitmapInfo))
	b.bitmapInfo.BiPlanes = 1
	b.bitmapInfo.BiBitCount = 32
	b.bitmapInfo.BiWidth = int32(b.width)
	b.bitmapInfo.BiHeight = -int32(b.height) // top-down
	b.bitmapInfo.BiCompression = winGDI.BI_RGB
	b.bitmapInfo.BiSizeImage = uint32(b.width * b.height * 4)

	b.bitmapDataSize = uintptr(b.width * b.height * 4)
	b.hmem = winGDI.GlobalAlloc(winGDI.GMEM_MOVEABLE, b.bitmapDataSize)
	if b.hmem == 0 {
		b.Close()
		return nil, errors.New("GlobalAlloc failed")
	}
	b.memptr = winGDI.GlobalLock(b.hmem)
	if b.memptr == nil {
		b.Close()
		return nil, errors.New("GlobalLock failed")
	}
	return b, nil
}

func (b *gdiBackend) Bounds() image.Rectangle { return image.Rect(0, 0, b.width, b.height) }

// Acquire blits synchronously; GDI has no change notification, so every call
// yields a frame and the timeout never lapses.
func (b *gdiBackend) Acquire(_ time.Duration, region *image.Rectangle) ([]byte, frame.Descriptor, error) {
	r := b.Bounds()
	if region != nil {
		r = *region
	}
	rw, rh := r.Dx(), r.Dy()

	old := winGDI.SelectObject(b.memoryDevice, winGDI.HGDIOBJ(b.bitmap))
	if old == 0 {
		return nil, frame.Descriptor{}, errors.New("SelectObject failed")
	}
	if !winGDI.BitBlt(b.memoryDevice, 0, 0, int32(rw), int32(rh), b.hdc,
		int32(b.origin.X+r.Min.X), int32(b.origin.Y+r.Min.Y), winGDI.SRCCOPY) {
		return nil, frame.Descriptor{}, errors.New("BitBlt failed")
	}
	if winGDI.GetDIBits(b.hdc, b.bitmap, 0, uint32(b.height), (*uint8)(b.memptr),
		(*winGDI.BITMAPINFO)(unsafe.Pointer(&b.bitmapInfo)), winGDI.DIB_RGB_COLORS) == 0 {
		return nil, frame.Descriptor{}, errors.New("GetDIBits failed")
	}

	// The DIB rows span the full bitmap width; a region capture keeps that
	// stride, so the frame layer's padding handling applies naturally.
	stride := b.width * 4
	dib := ((*[1 << 30]byte)(b.memptr))[:b.bitmapDataSize:b.bitmapDataSize]
	raw := make([]byte, rh*stride)
	copy(raw, dib[:rh*stride])
	desc := frame.Descriptor{
		Width:         rw,
		Height:        rh,
		Format:        frame.BGRA8,
		BytesPerPixel: 4,
		BytesPerRow:   stride,
	}
	return raw, desc, nil
}

func (b *gdiBackend) Close() {
	if b.hdc != 0 {
		winGDI.ReleaseDC(b.hwnd, b.hdc)
		b.hdc = 0
	}
	if b.memoryDevice != 0 {
		winGDI.DeleteDC(b.memoryDevice)
		b.memoryDevice = 0
	}
	if b.bitmap != 0 {
		winGDI.DeleteObject(winGDI.HGDIOBJ(b.bitmap))
		b.bitmap = 0
	}
	if b.hmem != 0 {
		winGDI.GlobalUnlock(b.hmem)
		winGDI.GlobalFree(b.hmem)
		b.hmem = 0
	}
}
