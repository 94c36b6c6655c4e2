package capture

import (
	"time"

	"github.com/soocke/screen-dup-go/domain/frame"
)

// Snapshot carries the latest acquired frame and metadata.
type Snapshot struct {
	Frame      *frame.Frame
	AcquiredAt time.Time
	Sequence   uint64
}

// Stats summarises acquisition loop behaviour for instrumentation.
type Stats struct {
	Acquired         uint64
	Timeouts         uint64
	Errors           uint64
	AvgAcquire       time.Duration
	AvgAcquireMicros float64
	LastAcquire      time.Time
	LatestFrameAge   time.Duration
	Sequence         uint64
}
