package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/proctor-go/domain/media"
)

const captureStatsLogInterval = 5 * time.Second

// ScreenSource hands out screen-capture handles. Each handle has a single
// video track that grabs the screen on an interval until stopped. After
// MaxFailures consecutive failed grabs the track ends itself, the way a
// browser ends a display track when sharing is revoked.
type ScreenSource struct {
	Interval    time.Duration
	MaxFailures int
	Logger      *slog.Logger

	grab   func(image.Rectangle) (*image.RGBA, error)
	bounds func() (image.Rectangle, error)
}

// NewScreenSource returns a source backed by the screenshot library.
func NewScreenSource(interval time.Duration, maxFailures int, logger *slog.Logger) *ScreenSource {
	return &ScreenSource{Interval: interval, MaxFailures: maxFailures, Logger: logger, grab: GrabRect, bounds: ScreenRect}
}

func (s *ScreenSource) Acquire(ctx context.Context, _ media.Constraints) (*media.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rect, err := s.bounds()
	if err != nil {
		return nil, fmt.Errorf("screen bounds: %v: %w", err, media.ErrNoDevice)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("empty screen: %w", media.ErrNoDevice)
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	maxFailures := s.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	t := &screenTrack{
		trackBase:   newTrackBase(media.TrackVideo, s.Logger),
		rect:        rect,
		grab:        s.grab,
		interval:    interval,
		maxFailures: maxFailures,
		done:        make(chan struct{}),
	}
	go t.loop()
	return media.NewHandle(media.KindScreen, t), nil
}

type screenTrack struct {
	trackBase
	rect        image.Rectangle
	grab        func(image.Rectangle) (*image.RGBA, error)
	interval    time.Duration
	maxFailures int

	stopOnce     sync.Once
	done         chan struct{}
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

// Stop ends the capture loop. It does not wait for the loop to exit, so it is
// safe to call from an ended listener running on the loop goroutine.
func (t *screenTrack) Stop() {
	if !t.markStopped() {
		return
	}
	t.stopOnce.Do(func() { close(t.done) })
}

func (t *screenTrack) LatestFrame() FrameSnapshot {
	snap := t.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (t *screenTrack) Stats() CaptureStats {
	captures := t.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(t.captureNanos.Load() / captures)
	}
	snapshot := t.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Captures:       captures,
		Failures:       t.failures.Load(),
		AvgCapture:     avg,
		LastCapture:    snapshot.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snapshot.Sequence,
	}
}

func (t *screenTrack) loop() {
	defer recoverLog(t.logger, "screen capture loop panic")
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	consecutive := 0
	for {
		select {
		case <-t.done:
			return
		case <-logTicker.C:
			t.logStats()
		case <-ticker.C:
			start := time.Now()
			img, err := t.grab(t.rect)
			if err != nil || img == nil {
				t.failures.Add(1)
				consecutive++
				if t.logger != nil {
					t.logger.Error("screen grab", "error", err, "consecutive", consecutive)
				}
				if consecutive >= t.maxFailures {
					t.end("capture failing")
					return
				}
				continue
			}
			consecutive = 0
			t.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
			t.captures.Add(1)
			seq := t.sequence.Add(1)
			t.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})
		}
	}
}

func (t *screenTrack) logStats() {
	if t.logger == nil {
		return
	}
	stats := t.Stats()
	t.logger.Debug("capture.stats",
		"track", t.id,
		"captures", stats.Captures,
		"failures", stats.Failures,
		"avg_capture", stats.AvgCapture,
		"age", stats.LatestFrameAge,
	)
}
