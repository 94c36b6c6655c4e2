package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/screen-dup-go/domain/frame"
)

var (
	// ErrInit reports that the capture handle could not be created or
	// recreated for the requested target.
	ErrInit = errors.New("capture: init failed")
	// ErrInvalidRegion reports a capture rectangle outside the monitor
	// bounds. The caller must supply a corrected region.
	ErrInvalidRegion = errors.New("capture: region out of bounds")
)

// Session owns the capture handle for one monitor and turns acquisitions into
// frames. It performs no internal retries and no internal locking: all
// methods must be called from a single goroutine, and every recovery decision
// (retry after a timeout, Recreate after a fatal backend error) is left to
// the caller. Frames are independent of the session once constructed.
type Session struct {
	logger  *slog.Logger
	monitor *int
	backend backend
	open    func(monitor int) (backend, error)
}

// NewSession opens a capture handle for the given monitor. A nil monitor
// selects the primary display. Fails with ErrInit when the target does not
// exist or the backend cannot be initialized.
func NewSession(logger *slog.Logger, monitor *int) (*Session, error) {
	s := &Session{logger: logger, monitor: monitor, open: openBackend}
	b, err := s.open(monitorIndex(monitor))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInit, err)
	}
	s.backend = b
	return s, nil
}

func monitorIndex(m *int) int {
	if m == nil {
		return 0
	}
	return *m
}

// Monitor returns the recorded target index, or nil for the default target.
func (s *Session) Monitor() *int { return s.monitor }

// Bounds reports the pixel area of the bound monitor.
func (s *Session) Bounds() image.Rectangle { return s.backend.Bounds() }

// Acquire blocks up to timeout waiting for a new frame. A (nil, nil) return
// means no new frame arrived within the window — an expected, recoverable
// outcome for static screen content, not an error. A non-nil region
// restricts capture to a sub-rectangle of the monitor; it must lie entirely
// within the monitor bounds or the call fails with ErrInvalidRegion before
// touching the backend.
func (s *Session) Acquire(timeout time.Duration, region *image.Rectangle) (*frame.Frame, error) {
	if region != nil {
		b := s.backend.Bounds()
		if region.Empty() || !region.In(b) {
			return nil, fmt.Errorf("%w: %v not within %v", ErrInvalidRegion, *region, b)
		}
	}
	raw, desc, err := s.backend.Acquire(timeout, region)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return frame.New(desc, raw)
}

// Recreate tears down and reopens the handle for the current target, used to
// recover after a fatal backend error such as a display mode change or
// output loss. On failure the session keeps the (closed) old handle; the
// caller is expected to retry or abandon.
func (s *Session) Recreate() error {
	s.backend.Close()
	b, err := s.open(monitorIndex(s.monitor))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInit, err)
	}
	s.backend = b
	if s.logger != nil {
		s.logger.Info("capture handle recreated", "monitor", monitorIndex(s.monitor))
	}
	return nil
}

// SwitchMonitor rebinds the session to a different monitor. The old handle is
// replaced only after the new target opened successfully.
func (s *Session) SwitchMonitor(monitor int) error {
	b, err := s.open(monitor)
	if err != nil {
		return fmt.Errorf("%w: monitor %d: %v", ErrInit, monitor, err)
	}
	s.backend.Close()
	s.backend = b
	s.monitor = &monitor
	if s.logger != nil {
		s.logger.Info("capture target switched", "monitor", monitor)
	}
	return nil
}

// Close releases the capture handle. The session must not be used afterwards.
func (s *Session) Close() {
	if s.backend != nil {
		s.backend.Close()
		s.backend = nil
	}
}
