package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates on the UI
// thread.
//
// It calls Tick on the sub-presenters, then Before (platform polling such as
// pending navigation or signals) and finally the scheduler callback. The zero
// value is usable (methods are nil-safe).
type Loop struct {
	Setup    *SetupPresenter
	Overlay  *OverlayPresenter
	Clock    *ClockPresenter
	Before   func()
	Schedule func()
}

func NewLoop(setup *SetupPresenter, overlay *OverlayPresenter, clock *ClockPresenter, schedule func()) *Loop {
	return &Loop{Setup: setup, Overlay: overlay, Clock: clock, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	if l.Before != nil {
		l.Before()
	}
	now := time.Now()
	if l.Setup != nil {
		l.Setup.Tick()
	}
	if l.Overlay != nil {
		l.Overlay.Tick()
	}
	if l.Clock != nil {
		l.Clock.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
