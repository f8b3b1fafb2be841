package view

import (
	"fmt"
	"strings"

	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// SetupHandlers are the actions available on the instructions screen.
type SetupHandlers struct {
	ShareCamera      func()
	StopCamera       func()
	ShareScreen      func()
	StopScreen       func()
	ToggleFullscreen func()
	ChooseResume     func(path string)
	ClearError       func()
	StartTest        func()
	Quit             func()
}

type setupView struct {
	frame *FrameWidget

	cameraLbl     *TLabelWidget
	screenLbl     *TLabelWidget
	fullscreenLbl *TLabelWidget
	resumeLbl     *TLabelWidget
	missingLbl    *LabelWidget
	noticeLbl     *LabelWidget
	errorLbl      *LabelWidget
	clearBtn      *TButtonWidget
	startBtn      *TButtonWidget
}

// newSetupView builds the instructions screen: guidelines on the left, the
// setup checklist and actions on the right.
func newSetupView(guidelines []string, h SetupHandlers) *setupView {
	v := &setupView{}
	v.frame = Frame(Padx("4m"), Pady("4m"))
	Grid(v.frame, Row(0), Column(0), Sticky("nsew"))

	left := v.frame.Frame()
	Grid(left, Row(0), Column(0), Sticky("nw"), Padx("2m"))
	Grid(left.Label(Txt("Know Your Resume"), Anchor("w")), Row(0), Column(0), Sticky("w"))
	Grid(left.Label(Txt("Important Guidelines"), Anchor("w")), Row(1), Column(0), Sticky("w"), Pady("1m"))
	for i, g := range guidelines {
		Grid(left.Label(Txt("- "+g), Anchor("w"), Justify("left"), Wraplength("70m")), Row(i+2), Column(0), Sticky("w"))
	}

	right := v.frame.Frame()
	Grid(right, Row(0), Column(1), Sticky("ne"), Padx("2m"))
	Grid(right.Label(Txt("Setup Requirements"), Anchor("w")), Row(0), Column(0), Columnspan(3), Sticky("w"), Pady("1m"))

	row := 1
	addItem := func(label string, primary, secondary func(), primaryTxt, secondaryTxt string) *TLabelWidget {
		status := right.TLabel(Txt(label+": not ready"), Style(theme.StyleStateLabel))
		Grid(status, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
		Grid(right.TButton(Txt(primaryTxt), Style(theme.StylePrimaryButton), Command(primary)), Row(row), Column(1), Sticky("we"), Padx("0.2m"))
		if secondary != nil {
			Grid(right.TButton(Txt(secondaryTxt), Command(secondary)), Row(row), Column(2), Sticky("we"), Padx("0.2m"))
		}
		row++
		return status
	}
	v.cameraLbl = addItem("Camera", h.ShareCamera, h.StopCamera, "Share Camera", "Stop")
	v.screenLbl = addItem("Screen", h.ShareScreen, h.StopScreen, "Share Screen", "Stop")
	v.fullscreenLbl = addItem("Fullscreen", h.ToggleFullscreen, nil, "Toggle Fullscreen", "")
	v.resumeLbl = addItem("Resume", func() {
		files := GetOpenFile(Title("Choose resume"), Filetypes([]FileType{{TypeName: "PDF files", Extensions: []string{".pdf"}}}))
		if len(files) > 0 && h.ChooseResume != nil {
			h.ChooseResume(files[0])
		}
	}, nil, "Choose Resume", "")

	v.errorLbl = right.Label(Txt(""), Foreground(theme.ColorDanger), Anchor("w"))
	Grid(v.errorLbl, Row(row), Column(0), Columnspan(2), Sticky("w"))
	v.clearBtn = right.TButton(Txt("Dismiss"), Command(h.ClearError))
	Grid(v.clearBtn, Row(row), Column(2), Sticky("we"))
	row++
	v.missingLbl = right.Label(Txt(""), Anchor("w"), Justify("left"))
	Grid(v.missingLbl, Row(row), Column(0), Columnspan(3), Sticky("w"), Pady("1m"))
	row++
	v.noticeLbl = right.Label(Txt(""), Foreground(theme.ColorDanger), Anchor("w"), Wraplength("80m"))
	Grid(v.noticeLbl, Row(row), Column(0), Columnspan(3), Sticky("w"))
	row++

	v.startBtn = right.TButton(Txt("Start Test"), Style(theme.StylePrimaryButton), Command(h.StartTest))
	Grid(v.startBtn, Row(row), Column(0), Columnspan(2), Sticky("we"), Pady("2m"))
	Grid(right.TButton(Txt("Quit"), Style(theme.StyleDangerButton), Command(h.Quit)), Row(row), Column(2), Sticky("we"), Pady("2m"))
	return v
}

func statusText(label string, ok bool, detail string) string {
	state := "not ready"
	if ok {
		state = "ready"
	}
	if detail != "" {
		return fmt.Sprintf("%s: %s (%s)", label, state, detail)
	}
	return label + ": " + state
}

func (v *setupView) render(s session.Snapshot, notice string) {
	if v == nil || v.frame == nil {
		return
	}
	v.cameraLbl.Configure(Txt(statusText("Camera", s.CameraActive, "")), Style(theme.StateStyle(s.CameraActive)))
	v.screenLbl.Configure(Txt(statusText("Screen", s.ScreenActive, "")), Style(theme.StateStyle(s.ScreenActive)))
	v.fullscreenLbl.Configure(Txt(statusText("Fullscreen", s.FullscreenActive, "")), Style(theme.StateStyle(s.FullscreenActive)))
	detail := ""
	if s.ResumeAttached {
		detail = fmt.Sprintf("%s, %d KB", s.ResumeName, (s.ResumeSize+1023)/1024)
	}
	v.resumeLbl.Configure(Txt(statusText("Resume", s.ResumeAttached, detail)), Style(theme.StateStyle(s.ResumeAttached)))

	v.errorLbl.Configure(Txt(s.UploadError))
	clearState := "disabled"
	if s.UploadError != "" {
		clearState = "normal"
	}
	v.clearBtn.Configure(State(clearState))

	switch {
	case s.Uploading:
		v.missingLbl.Configure(Txt("Uploading resume..."))
	case len(s.Missing) > 0:
		v.missingLbl.Configure(Txt("Missing: " + strings.Join(s.Missing, ", ")))
	default:
		v.missingLbl.Configure(Txt("All set"))
	}
	v.noticeLbl.Configure(Txt(notice))

	startState := "disabled"
	if s.StartEnabled && !s.Uploading {
		startState = "normal"
	}
	v.startBtn.Configure(State(startState))
}

func (v *setupView) destroy() {
	if v != nil && v.frame != nil {
		Destroy(v.frame)
		v.frame = nil
	}
}
