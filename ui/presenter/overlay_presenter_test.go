package presenter

import (
	"image"
	"testing"

	"github.com/soocke/proctor-go/capture"
	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/media/mediatest"
	"github.com/soocke/proctor-go/domain/session"
)

type mockHandles struct{ camera, screen *media.Handle }

func (m *mockHandles) CameraHandle() *media.Handle { return m.camera }
func (m *mockHandles) ScreenHandle() *media.Handle { return m.screen }

type mockSnaps struct{ snap session.Snapshot }

func (m *mockSnaps) Latest() session.Snapshot { return m.snap }

type mockOverlayView struct {
	shows, hides, thumbs int
	tracks               []string
	lastThumb            image.Image
}

func (v *mockOverlayView) ShowOverlay(tracks []string) { v.shows++; v.tracks = tracks }
func (v *mockOverlayView) HideOverlay()                { v.hides++ }
func (v *mockOverlayView) UpdateThumbnail(img image.Image) {
	v.thumbs++
	v.lastThumb = img
}

// frameTrack is a fake screen track that exposes frames.
type frameTrack struct {
	*mediatest.Track
	frame capture.FrameSnapshot
}

func (f *frameTrack) LatestFrame() capture.FrameSnapshot { return f.frame }

func TestOverlayPresenter_MountsWithCamera(t *testing.T) {
	cam := media.NewHandle(media.KindCamera, mediatest.NewTrack(media.TrackVideo), mediatest.NewTrack(media.TrackAudio))
	handles := &mockHandles{}
	snaps := &mockSnaps{}
	view := &mockOverlayView{}
	p := NewOverlayPresenter(handles, snaps, view)

	p.Tick()
	if view.shows != 0 || view.hides != 0 {
		t.Fatalf("overlay must stay hidden without camera")
	}

	handles.camera = cam
	snaps.snap = session.Snapshot{CameraActive: true}
	p.Tick()
	p.Tick()
	if view.shows != 1 || len(view.tracks) != 2 {
		t.Fatalf("expected one show with two tracks, got shows=%d tracks=%v", view.shows, view.tracks)
	}

	// A replacement camera handle re-renders.
	handles.camera = media.NewHandle(media.KindCamera, mediatest.NewTrack(media.TrackVideo))
	p.Tick()
	if view.shows != 2 || len(view.tracks) != 1 {
		t.Fatalf("replacement not rendered: shows=%d tracks=%v", view.shows, view.tracks)
	}

	snaps.snap = session.Snapshot{}
	handles.camera = nil
	p.Tick()
	p.Tick()
	if view.hides != 1 {
		t.Fatalf("expected a single hide, got %d", view.hides)
	}
}

func TestOverlayPresenter_Thumbnail(t *testing.T) {
	ft := &frameTrack{Track: mediatest.NewTrack(media.TrackVideo)}
	handles := &mockHandles{
		camera: media.NewHandle(media.KindCamera, mediatest.NewTrack(media.TrackVideo)),
		screen: media.NewHandle(media.KindScreen, ft),
	}
	snaps := &mockSnaps{snap: session.Snapshot{CameraActive: true, ScreenActive: true}}
	view := &mockOverlayView{}
	p := NewOverlayPresenter(handles, snaps, view)

	p.Tick()
	if view.thumbs != 0 {
		t.Fatalf("no frame yet, no thumbnail")
	}
	ft.frame = capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 1920, 1080)), Sequence: 1}
	p.Tick()
	p.Tick()
	if view.thumbs != 1 {
		t.Fatalf("expected one thumbnail per frame, got %d", view.thumbs)
	}
	if b := view.lastThumb.Bounds(); b.Dx() != thumbW || b.Dy() != thumbH {
		t.Fatalf("thumbnail not scaled: %v", b)
	}
	ft.frame.Sequence = 2
	p.Tick()
	if view.thumbs != 2 {
		t.Fatalf("new frame not pushed")
	}
}
