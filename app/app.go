package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	tk "modernc.org/tk9.0"

	"github.com/soocke/proctor-go/assets"
	"github.com/soocke/proctor-go/config"
	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/ui/presenter"
	"github.com/soocke/proctor-go/ui/theme"
	"github.com/soocke/proctor-go/ui/view"
)

const (
	tick = 100 * time.Millisecond
)

type app struct {
	config  *config.Config
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	afterID string
	exiting bool

	display   *tkDisplay
	container *AppContainer
	root      *view.RootView
	overlay   *view.OverlayView
	results   *presenter.ResultsPresenter
	unmount   func()

	signalled atomic.Value // string: signal name, set off the UI thread
	sigCh     chan os.Signal
}

// NewApp prepares the main window and wires the session. Must be called on
// the main goroutine.
func NewApp(cfg *config.Config, logger *slog.Logger) *app {
	a := &app{config: cfg, logger: logger}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	tk.App.WmTitle(cfg.WindowTitle)
	tk.WmProtocol(tk.App, "WM_DELETE_WINDOW", func() { a.exit("window closed") })
	tk.WmGeometry(tk.App, fmt.Sprintf("%dx%d+100+100", cfg.WindowWidth, cfg.WindowHeight))
	theme.InitStyles()

	a.display = newTkDisplay()
	a.container = BuildContainer(a.ctx, cfg, a.display, logger)
	return a
}

// Start builds the views, begins the update loop and blocks in the Tk event
// loop until the window is destroyed.
func (a *app) Start() {
	c := a.container
	a.root = view.NewRootView(assets.Guidelines(), a.logger)
	a.overlay = view.NewOverlayView()
	c.SetupPresenter.SetView(a.root)
	c.ClockPresenter.SetView(a.root)
	c.OverlayPresenter = presenter.NewOverlayPresenter(c.Session, c.Setup, a.overlay)
	c.Loop = presenter.NewLoop(c.SetupPresenter, c.OverlayPresenter, c.ClockPresenter, a.scheduleUpdate)
	c.Loop.Before = a.beforeTick
	c.Screens.AddListener(a.onScreen)

	// The main window owns the session for the lifetime of the process.
	a.unmount = c.Session.Mount("main window")
	a.watchSignals()

	a.scheduleUpdate()
	tk.App.Wait()
}

func (a *app) scheduleUpdate() {
	if a.exiting {
		return
	}
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = tk.TclAfter(tick, func() { a.container.Loop.Tick() })
}

// beforeTick runs platform polling on the UI thread ahead of the presenters.
func (a *app) beforeTick() {
	if sig, ok := a.signalled.Load().(string); ok && sig != "" {
		a.exit("signal " + sig)
		return
	}
	a.display.Poll()
	a.container.Screens.Flush()
}

func (a *app) onScreen(prev, next Screen) {
	c := a.container
	if prev == ScreenResults && a.results != nil {
		// Leaving results by any path unmounts it.
		a.results.Close()
		a.results = nil
	}
	switch next {
	case ScreenSetup:
		if prev == ScreenResults {
			c.Clock.Reset()
		}
		p := c.SetupPresenter
		a.root.ShowSetup(view.SetupHandlers{
			ShareCamera:      p.ShareCamera,
			StopCamera:       p.StopCamera,
			ShareScreen:      p.ShareScreen,
			StopScreen:       p.StopScreen,
			ToggleFullscreen: p.ToggleFullscreen,
			ChooseResume:     p.ChooseResume,
			ClearError:       p.ClearError,
			StartTest:        p.StartTest,
			Quit:             p.Quit,
		})
		a.root.RenderSetup(c.Setup.Latest(), "")
	case ScreenTest:
		a.root.ShowTest(func() { c.Screens.Navigate(routeResults) })
	case ScreenResults:
		_, total := c.Clock.Values()
		summary := presenter.Summary{
			SessionID:     c.Session.ID(),
			ProctoredTime: total,
			ResumeURL:     c.Setup.Latest().UploadedURL,
		}
		a.results = presenter.NewResultsPresenter(a.root,
			c.Session.Mount("results"),
			func() { c.Screens.Navigate(c.Config.RouteLanding) },
		)
		a.root.ShowResultsScreen(a.results.Close)
		a.results.Show(summary)
	}
}

func (a *app) watchSignals() {
	a.sigCh = make(chan os.Signal, 1)
	signal.Notify(a.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig, ok := <-a.sigCh
		if !ok {
			return
		}
		// Tk calls are confined to the UI thread; the next tick picks this up.
		a.signalled.Store(sig.String())
	}()
}

// exit fires the unload notification, which tears the session down, then
// destroys the window.
func (a *app) exit(reason string) {
	if a.exiting {
		return
	}
	a.exiting = true
	if a.afterID != "" {
		tk.TclAfterCancel(a.afterID)
	}
	a.container.Unload.Fire(reason)
	if a.unmount != nil {
		a.unmount()
	}
	a.overlay.HideOverlay()
	a.container.Close()
	a.cancel()
	if a.sigCh != nil {
		signal.Stop(a.sigCh)
		close(a.sigCh)
	}
	tk.Destroy(tk.App)
}

// Registry exposes the session's stream registry for leak logging.
func (a *app) Registry() *media.Registry { return a.container.Session.Registry() }
