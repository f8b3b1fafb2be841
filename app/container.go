package app

import (
	"context"
	"log/slog"

	"github.com/soocke/proctor-go/capture"
	"github.com/soocke/proctor-go/config"
	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/resume"
	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/model"
	"github.com/soocke/proctor-go/ui/presenter"
)

// AppContainer assembles models, services and presenters. Views are attached
// by the app once the window exists.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Session  *session.Controller
	Uploader resume.Uploader
	Screens  *ScreenMachine
	Unload   *unloadNotifier
	Setup    *model.SetupModel
	Clock    *model.ProctorClock

	// Presenters
	SetupPresenter   *presenter.SetupPresenter
	OverlayPresenter *presenter.OverlayPresenter
	ClockPresenter   *presenter.ClockPresenter
	Loop             *presenter.Loop

	unsubscribe func()
}

// BuildContainer constructs all non-view components. display is the
// platform fullscreen control; the app passes its Tk display.
func BuildContainer(ctx context.Context, cfg *config.Config, display media.Display, logger *slog.Logger) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.Screens = NewScreenMachine(cfg.Routes(), logger)
	c.Unload = newUnloadNotifier(logger)
	c.Setup = model.NewSetupModel()
	c.Clock = model.NewProctorClock()
	c.Uploader = resume.NewHTTPUploader(cfg.UploadURL, cfg.UploadField, cfg.UploadTimeout(), logger)
	c.Session = session.New(session.Options{
		Sources: map[media.Kind]media.Source{
			media.KindCamera: capture.NewCameraSource(cfg.CameraDevice, cfg.AudioDevice, logger),
			media.KindScreen: capture.NewScreenSource(cfg.ScreenInterval(), cfg.ScreenMaxFailures, logger),
		},
		Display:           display,
		Navigator:         c.Screens,
		Unload:            c.Unload,
		Policy:            cfg.Policy(),
		MaxResumeBytes:    cfg.ResumeMaxBytes,
		CameraConstraints: cfg.CameraConstraints(),
		Routes:            cfg.Routes(),
		Logger:            logger,
	})
	c.unsubscribe = c.Session.Subscribe(c.Setup.Update)
	c.Setup.Update(c.Session.Snapshot())

	c.SetupPresenter = presenter.NewSetupPresenter(ctx, c.Session, c.Setup, nil, c.Uploader, logger)
	c.ClockPresenter = presenter.NewClockPresenter(c.Clock, c.Setup, nil)
	return c
}

// Close ends the session and detaches the model.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.Session.Close()
}
