package view

import (
	"fmt"

	"github.com/soocke/proctor-go/ui/presenter"
	"github.com/soocke/proctor-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

type resultsView struct {
	frame   *FrameWidget
	summary *LabelWidget
}

func newResultsView(onClose func()) *resultsView {
	v := &resultsView{}
	v.frame = Frame(Padx("4m"), Pady("4m"))
	Grid(v.frame, Row(0), Column(0), Sticky("nsew"))
	Grid(v.frame.Label(Txt("Assessment complete"), Anchor("w")), Row(0), Column(0), Sticky("w"))
	v.summary = v.frame.Label(Txt(""), Anchor("w"), Justify("left"))
	Grid(v.summary, Row(1), Column(0), Sticky("w"), Pady("1m"))
	Grid(v.frame.TButton(Txt("Close"), Style(theme.StylePrimaryButton), Command(onClose)), Row(2), Column(0), Sticky("w"), Pady("2m"))
	return v
}

func (v *resultsView) show(s presenter.Summary) {
	if v == nil || v.summary == nil {
		return
	}
	text := fmt.Sprintf("Session: %s\nProctored time: %s", s.SessionID, formatClock(s.ProctoredTime))
	if s.ResumeURL != "" {
		text += "\nResume: " + s.ResumeURL
	}
	v.summary.Configure(Txt(text))
}

func (v *resultsView) destroy() {
	if v != nil && v.frame != nil {
		Destroy(v.frame)
		v.frame = nil
	}
}
