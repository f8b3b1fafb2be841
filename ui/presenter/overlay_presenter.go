package presenter

import (
	"fmt"
	"image"

	"github.com/soocke/proctor-go/capture"
	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/images"
)

// HandleSource exposes the live capture handles read-only. The overlay never
// acquires a handle of its own.
type HandleSource interface {
	CameraHandle() *media.Handle
	ScreenHandle() *media.Handle
}

// SnapshotSource provides the latest session snapshot.
type SnapshotSource interface {
	Latest() session.Snapshot
}

// OverlayView shows the always-on proctoring overlay.
type OverlayView interface {
	ShowOverlay(tracks []string)
	HideOverlay()
	UpdateThumbnail(img image.Image)
}

const (
	thumbW = 240
	thumbH = 135
)

// OverlayPresenter mounts the overlay while the camera is live and feeds it
// the camera's tracks and the latest screen frame.
type OverlayPresenter struct {
	handles HandleSource
	snaps   SnapshotSource
	view    OverlayView

	shown    bool
	cameraID string
	lastSeq  uint64
}

func NewOverlayPresenter(handles HandleSource, snaps SnapshotSource, view OverlayView) *OverlayPresenter {
	return &OverlayPresenter{handles: handles, snaps: snaps, view: view}
}

func (p *OverlayPresenter) Tick() {
	if p == nil || p.handles == nil || p.snaps == nil || p.view == nil {
		return
	}
	cam := p.handles.CameraHandle()
	if !p.snaps.Latest().CameraActive || cam == nil {
		p.hide()
		return
	}
	if !p.shown || cam.ID != p.cameraID {
		p.view.ShowOverlay(describeTracks(cam))
		p.shown = true
		p.cameraID = cam.ID
		p.lastSeq = 0
	}
	p.refreshThumbnail()
}

func (p *OverlayPresenter) hide() {
	if !p.shown {
		return
	}
	p.view.HideOverlay()
	p.shown = false
	p.cameraID = ""
	p.lastSeq = 0
}

func (p *OverlayPresenter) refreshThumbnail() {
	scr := p.handles.ScreenHandle()
	if scr == nil {
		return
	}
	for _, t := range scr.Tracks {
		fs, ok := t.(capture.FrameSource)
		if !ok {
			continue
		}
		frame := fs.LatestFrame()
		if frame.Image == nil || frame.Sequence == p.lastSeq {
			return
		}
		p.lastSeq = frame.Sequence
		p.view.UpdateThumbnail(images.ScaleToFit(frame.Image, thumbW, thumbH))
		return
	}
}

func describeTracks(h *media.Handle) []string {
	out := make([]string, 0, len(h.Tracks))
	for _, t := range h.Tracks {
		id := t.ID()
		if len(id) > 8 {
			id = id[:8]
		}
		out = append(out, fmt.Sprintf("%s %s", t.Kind(), id))
	}
	return out
}
