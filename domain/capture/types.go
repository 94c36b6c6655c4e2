package capture

import "image"

// FrameSource provides read-only access to acquired frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() Snapshot
	Running() bool
}

// RegionProvider supplies the current capture sub-rectangle. A nil rectangle
// means the full monitor area.
type RegionProvider interface{ CaptureRegion() *image.Rectangle }

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start()
	Stop()
	Running() bool
}
