package capture

import (
	"image"
	"time"
)

// FrameSnapshot carries the latest captured frame and metadata.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// FrameSource is implemented by tracks that keep their latest frame for
// previews.
type FrameSource interface {
	LatestFrame() FrameSnapshot
}

// CaptureStats summarises a screen track's capture loop.
type CaptureStats struct {
	Captures       uint64
	Failures       uint64
	AvgCapture     time.Duration
	LastCapture    time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
}
