package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the current camera stretch and the total proctored time.
type SessionStats interface {
	SetStretch(d time.Duration)
	SetTotal(d time.Duration)
}

type sessionStats struct {
	stretchLbl *LabelWidget
	totalLbl   *LabelWidget
}

// NewSessionStats creates the two duration labels inside parent at
// (row, startCol) and (row, startCol+1).
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{stretchLbl: parent.Label(Width(18)), totalLbl: parent.Label(Width(18))}
	Grid(s.stretchLbl, Row(row), Column(startCol), Sticky("w"), Padx("0.2m"))
	Grid(s.totalLbl, Row(row), Column(startCol+1), Sticky("w"), Padx("0.2m"))
	s.stretchLbl.Configure(Txt("Camera live: 00:00"))
	s.totalLbl.Configure(Txt("Proctored: 00:00"))
	return s
}

func formatClock(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (s *sessionStats) SetStretch(d time.Duration) {
	if s == nil || s.stretchLbl == nil {
		return
	}
	s.stretchLbl.Configure(Txt("Camera live: " + formatClock(d)))
}

func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Proctored: " + formatClock(d)))
}
