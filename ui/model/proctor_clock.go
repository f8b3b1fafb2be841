package model

import (
	"time"
)

// ProctorClock tracks how long the camera has been live in the current stretch
// and across the whole session. It is decoupled from the UI; presenters should
// poll Values() and update views. The zero value is ready to use.
type ProctorClock struct {
	live        bool
	liveSince   time.Time
	lastStretch time.Duration
	accumulated time.Duration
}

func NewProctorClock() *ProctorClock { return &ProctorClock{} }

// OnTick advances the clock using the current camera state.
// Call periodically (for example, from a presenter tick).
func (m *ProctorClock) OnTick(cameraLive bool, now time.Time) {
	if m == nil {
		return
	}
	if cameraLive {
		if !m.live { // off -> on
			m.live = true
			m.liveSince = now
			m.lastStretch = 0
		}
		m.lastStretch = now.Sub(m.liveSince)
	} else if m.live { // on -> off
		m.lastStretch = now.Sub(m.liveSince)
		m.accumulated += m.lastStretch
		m.live = false
	}
}

// Values returns the current stretch and the total proctored time.
// The total includes the ongoing stretch while the camera is live.
func (m *ProctorClock) Values() (stretch, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	stretch = m.lastStretch
	total = m.accumulated
	if m.live {
		total += stretch
	}
	return
}

// Reset clears all accumulated time, for a new session.
func (m *ProctorClock) Reset() {
	if m == nil {
		return
	}
	*m = ProctorClock{}
}
