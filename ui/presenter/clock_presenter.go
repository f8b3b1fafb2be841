package presenter

import (
	"time"

	"github.com/soocke/proctor-go/ui/model"
)

// ClockView displays formatted proctored durations.
type ClockView interface {
	SetProctorTime(stretch, total time.Duration)
}

// ClockPresenter advances the proctor clock from the camera state and pushes
// its values to the view.
type ClockPresenter struct {
	clock *model.ProctorClock
	snaps SnapshotSource
	view  ClockView
}

func NewClockPresenter(clock *model.ProctorClock, snaps SnapshotSource, view ClockView) *ClockPresenter {
	return &ClockPresenter{clock: clock, snaps: snaps, view: view}
}

func (p *ClockPresenter) Tick(now time.Time) {
	if p == nil || p.clock == nil || p.snaps == nil {
		return
	}
	p.clock.OnTick(p.snaps.Latest().CameraActive, now)
	if p.view == nil {
		return
	}
	s, t := p.clock.Values()
	p.view.SetProctorTime(s, t)
}

// SetView swaps the target view; nil detaches it while the clock keeps
// running.
func (p *ClockPresenter) SetView(v ClockView) {
	if p != nil {
		p.view = v
	}
}
