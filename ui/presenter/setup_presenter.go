package presenter

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/resume"
	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/model"
)

// SetupController narrows the session controller to the intents the
// instructions screen drives.
type SetupController interface {
	EnableCamera(ctx context.Context) error
	EnableScreen(ctx context.Context) error
	DisableCamera()
	DisableScreen()
	ToggleFullscreen() error
	AttachResume(f resume.File) error
	ClearUploadError()
	StartTest(ctx context.Context, up resume.Uploader) error
	Quit()
}

// SetupView renders the setup checklist.
type SetupView interface {
	RenderSetup(s session.Snapshot, notice string)
}

// SetupPresenter turns button presses into session intents and pushes the
// latest snapshot to the view on each tick. Acquisitions and the upload run
// off the UI thread; their outcome reaches the view through the model.
type SetupPresenter struct {
	ctrl     SetupController
	model    *model.SetupModel
	view     SetupView
	uploader resume.Uploader
	logger   *slog.Logger
	ctx      context.Context

	// Go runs blocking work. Defaults to a new goroutine.
	Go func(func())
}

func NewSetupPresenter(ctx context.Context, ctrl SetupController, m *model.SetupModel, view SetupView, up resume.Uploader, logger *slog.Logger) *SetupPresenter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &SetupPresenter{ctrl: ctrl, model: m, view: view, uploader: up, logger: logger, ctx: ctx}
}

func (p *SetupPresenter) run(fn func()) {
	if p.Go != nil {
		p.Go(fn)
		return
	}
	go fn()
}

// ShareCamera requests the camera. A pending permission prompt does not
// block the UI thread.
func (p *SetupPresenter) ShareCamera() {
	if p == nil || p.ctrl == nil {
		return
	}
	p.run(func() { p.report("camera", p.ctrl.EnableCamera(p.ctx)) })
}

func (p *SetupPresenter) ShareScreen() {
	if p == nil || p.ctrl == nil {
		return
	}
	p.run(func() { p.report("screen", p.ctrl.EnableScreen(p.ctx)) })
}

func (p *SetupPresenter) StopCamera() {
	if p != nil && p.ctrl != nil {
		p.ctrl.DisableCamera()
	}
}

func (p *SetupPresenter) StopScreen() {
	if p != nil && p.ctrl != nil {
		p.ctrl.DisableScreen()
	}
}

// ToggleFullscreen must be called on the UI thread.
func (p *SetupPresenter) ToggleFullscreen() {
	if p == nil || p.ctrl == nil {
		return
	}
	p.report("fullscreen", p.ctrl.ToggleFullscreen())
}

// ChooseResume loads the picked file and attaches it. Rejections surface as
// the snapshot's upload error.
func (p *SetupPresenter) ChooseResume(path string) {
	if p == nil || p.ctrl == nil || strings.TrimSpace(path) == "" {
		return
	}
	f, err := resume.FromPath(path)
	if err != nil {
		if p.logger != nil {
			p.logger.Error("resume open", "path", path, "error", err)
		}
		p.model.SetNotice("Could not read the selected file")
		return
	}
	if err := p.ctrl.AttachResume(f); err != nil && p.logger != nil {
		p.logger.Info("resume rejected", "name", f.Name, "error", err)
	}
}

func (p *SetupPresenter) ClearError() {
	if p != nil && p.ctrl != nil {
		p.ctrl.ClearUploadError()
	}
}

// StartTest uploads the resume and moves on to the questions.
func (p *SetupPresenter) StartTest() {
	if p == nil || p.ctrl == nil {
		return
	}
	p.run(func() {
		err := p.ctrl.StartTest(p.ctx, p.uploader)
		switch {
		case err == nil, errors.Is(err, session.ErrSuperseded):
			p.model.SetNotice("")
		case errors.Is(err, session.ErrNoResume):
			p.model.SetNotice("Attach your resume to start")
		case errors.Is(err, session.ErrNotReady):
			p.model.SetNotice("Complete the setup checklist to start")
		default:
			// Upload failures are already shown as the upload error.
			if p.logger != nil {
				p.logger.Error("start test", "error", err)
			}
		}
	})
}

func (p *SetupPresenter) Quit() {
	if p != nil && p.ctrl != nil {
		p.ctrl.Quit()
	}
}

// Tick pushes the latest snapshot to the view when it changed.
func (p *SetupPresenter) Tick() {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	snap, notice, changed := p.model.Take()
	if !changed {
		return
	}
	p.view.RenderSetup(snap, notice)
}

func (p *SetupPresenter) report(what string, err error) {
	if err == nil {
		p.model.SetNotice("")
		return
	}
	if p.logger != nil {
		p.logger.Info("setup request failed", "what", what, "error", err)
	}
	p.model.SetNotice(describeFailure(what, err))
}

func describeFailure(what string, err error) string {
	subject := strings.ToUpper(what[:1]) + what[1:]
	switch {
	case errors.Is(err, media.ErrPermissionDenied):
		return subject + " access was denied"
	case errors.Is(err, media.ErrDeviceBusy):
		return subject + " is in use by another application"
	case errors.Is(err, media.ErrNoDevice):
		return "No " + what + " device found"
	case errors.Is(err, media.ErrNotSupported):
		return subject + " is not supported on this system"
	case errors.Is(err, context.Canceled):
		return ""
	default:
		return subject + " request failed"
	}
}

// SetView attaches the view once the window exists.
func (p *SetupPresenter) SetView(v SetupView) {
	if p != nil {
		p.view = v
	}
}
