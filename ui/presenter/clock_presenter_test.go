package presenter

import (
	"testing"
	"time"

	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/model"
)

type mockClockView struct{ stretch, total time.Duration }

func (v *mockClockView) SetProctorTime(s, t time.Duration) { v.stretch, v.total = s, t }

func TestClockPresenter_FollowsCamera(t *testing.T) {
	snaps := &mockSnaps{snap: session.Snapshot{CameraActive: true}}
	view := &mockClockView{}
	p := NewClockPresenter(model.NewProctorClock(), snaps, view)
	base := time.Unix(0, 0)

	p.Tick(base)
	p.Tick(base.Add(4 * time.Second))
	if view.stretch != 4*time.Second || view.total != 4*time.Second {
		t.Fatalf("got %v/%v", view.stretch, view.total)
	}

	snaps.snap.CameraActive = false
	p.SetView(nil)
	p.Tick(base.Add(6 * time.Second))
	view2 := &mockClockView{}
	p.SetView(view2)
	p.Tick(base.Add(9 * time.Second))
	if view2.total != 6*time.Second {
		t.Fatalf("clock should keep running without a view, total=%v", view2.total)
	}
}
