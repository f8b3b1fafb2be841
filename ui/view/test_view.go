package view

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/proctor-go/ui/theme"
)

// testView is the in-progress screen shown on the questions route. Question
// rendering belongs to the assessment itself; this screen keeps the session
// proctored and offers to finish.
type testView struct {
	frame *FrameWidget
	stats SessionStats
}

func newTestView(onFinish func()) *testView {
	v := &testView{}
	v.frame = Frame(Padx("4m"), Pady("4m"))
	Grid(v.frame, Row(0), Column(0), Sticky("nsew"))
	Grid(v.frame.Label(Txt("Assessment in progress"), Anchor("w")), Row(0), Column(0), Columnspan(2), Sticky("w"))
	Grid(v.frame.Label(Txt("Keep your face visible and stay in fullscreen until you finish."), Anchor("w")), Row(1), Column(0), Columnspan(2), Sticky("w"), Pady("1m"))
	v.stats = NewSessionStats(v.frame, 2, 0)
	Grid(v.frame.TButton(Txt("Finish"), Style(theme.StylePrimaryButton), Command(onFinish)), Row(3), Column(0), Sticky("w"), Pady("2m"))
	return v
}

func (v *testView) destroy() {
	if v != nil && v.frame != nil {
		Destroy(v.frame)
		v.frame = nil
	}
}
