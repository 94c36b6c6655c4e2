//go:build !windows

package capture

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"

	"github.com/soocke/screen-dup-go/domain/frame"
)

// openBackend uses the portable screenshot library. Its captures are
// synchronous blits with no change notification, so every acquisition yields
// a frame and the timeout never lapses.
func openBackend(monitor int) (backend, error) {
	n := screenshot.NumActiveDisplays()
	if monitor < 0 || monitor >= n {
		return nil, fmt.Errorf("monitor %d not available (%d displays)", monitor, n)
	}
	return &screenshotBackend{monitor: monitor, display: screenshot.GetDisplayBounds(monitor)}, nil
}

type screenshotBackend struct {
	monitor int
	display image.Rectangle // virtual-screen coordinates
	closed  bool
}

func (b *screenshotBackend) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.display.Dx(), b.display.Dy())
}

func (b *screenshotBackend) Acquire(_ time.Duration, region *image.Rectangle) ([]byte, frame.Descriptor, error) {
	if b.closed {
		return nil, frame.Descriptor{}, errors.New("capture: backend closed")
	}
	target := b.display
	if region != nil {
		target = region.Add(b.display.Min)
	}
	img, err := screenshot.CaptureRect(target)
	if err != nil {
		return nil, frame.Descriptor{}, err
	}
	raw, desc := rgbaRaw(img, nil)
	return raw, desc, nil
}

func (b *screenshotBackend) Close() { b.closed = true }
