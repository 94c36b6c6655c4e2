package capture

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	serviceStatsLogInterval = 5 * time.Second

	// After this many consecutive acquire errors the loop asks the session
	// to recreate its handle (display mode change, output loss).
	recreateAfterErrors = 3
)

// Service drives a Session from a dedicated goroutine and exposes the latest
// frame alongside instrumentation data. The session's single-thread contract
// is honoured by confining every session call to the loop goroutine. Use
// NewService to construct an instance.
type Service interface {
	ServiceContract
	FrameSource
	SetRegionProvider(func() *image.Rectangle)
	Stats() Stats
}

type captureService struct {
	session *Session
	timeout time.Duration

	running      atomic.Bool
	done         chan struct{} // closed by the loop goroutine on exit
	latest       atomic.Pointer[Snapshot]
	regionFn     func() *image.Rectangle // capture sub-rectangle (optional)
	logger       *slog.Logger
	acquired     atomic.Uint64
	timeouts     atomic.Uint64
	errs         atomic.Uint64
	acquireNanos atomic.Uint64
	sequence     atomic.Uint64
}

// NewService constructs a capture service over session. timeout bounds each
// individual acquisition. The service assumes exclusive use of the session.
func NewService(logger *slog.Logger, session *Session, timeout time.Duration) Service {
	return &captureService{session: session, timeout: timeout, logger: logger}
}

// SetRegionProvider installs the sub-rectangle callback. Call before Start.
func (s *captureService) SetRegionProvider(fn func() *image.Rectangle) { s.regionFn = fn }

func (s *captureService) LatestFrame() Snapshot {
	snap := s.latest.Load()
	if snap == nil {
		return Snapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Stats() Stats {
	acquired := s.acquired.Load()
	total := s.acquireNanos.Load()
	var avg time.Duration
	avgMicros := 0.0
	if acquired > 0 && total > 0 {
		avg = time.Duration(total / acquired)
		avgMicros = float64(avg) / float64(time.Microsecond)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.AcquiredAt.IsZero() {
		age = time.Since(snapshot.AcquiredAt)
	}
	return Stats{
		Acquired:         acquired,
		Timeouts:         s.timeouts.Load(),
		Errors:           s.errs.Load(),
		AvgAcquire:       avg,
		AvgAcquireMicros: avgMicros,
		LastAcquire:      snapshot.AcquiredAt,
		LatestFrameAge:   age,
		Sequence:         snapshot.Sequence,
	}
}

func (s *captureService) Start() {
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	s.done = make(chan struct{})
	go s.loop()
}

// Stop flags the loop to finish and waits for it to exit. The loop goroutine
// is the session's single calling thread, so once Stop returns no acquisition
// is in flight and the session may be closed safely.
func (s *captureService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	<-s.done
}

func (s *captureService) loop() {
	defer close(s.done)
	logTicker := time.NewTicker(serviceStatsLogInterval)
	defer logTicker.Stop()
	consecutive := 0
	for s.running.Load() {
		var region *image.Rectangle
		if s.regionFn != nil {
			region = s.regionFn()
		}

		start := time.Now()
		f, err := s.session.Acquire(s.timeout, region)
		if err != nil {
			s.errs.Add(1)
			consecutive++
			if s.logger != nil {
				s.logger.Error("capture acquire", "error", err)
			}
			if consecutive >= recreateAfterErrors {
				if rerr := s.session.Recreate(); rerr != nil {
					if s.logger != nil {
						s.logger.Error("capture recreate", "error", rerr)
					}
				} else {
					consecutive = 0
				}
			}
			time.Sleep(50 * time.Millisecond)
			continue
		}
		consecutive = 0

		if f == nil {
			// No new frame within the window: screen content unchanged.
			s.timeouts.Add(1)
			continue
		}

		elapsed := time.Since(start)
		s.acquireNanos.Add(uint64(elapsed.Nanoseconds()))
		s.acquired.Add(1)
		seq := s.sequence.Add(1)
		s.latest.Store(&Snapshot{Frame: f, AcquiredAt: time.Now(), Sequence: seq})

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		time.Sleep(200 * time.Microsecond)
	}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"acquired", stats.Acquired,
		"timeouts", stats.Timeouts,
		"errors", stats.Errors,
		"avg_acquire", stats.AvgAcquire,
		"age", stats.LatestFrameAge,
	)
}
