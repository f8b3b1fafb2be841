package view

import (
	"log/slog"
	"time"

	"github.com/soocke/proctor-go/domain/session"
	"github.com/soocke/proctor-go/ui/presenter"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level layout. Exactly one screen is mounted at a
// time; switching screens destroys the previous one.
type RootView struct {
	logger     *slog.Logger
	guidelines []string

	setup   *setupView
	test    *testView
	results *resultsView
}

// UI abstracts the subset of view operations needed by presenters, enabling
// decoupling from the concrete RootView implementation.
type UI interface {
	presenter.SetupView
	presenter.ClockView
	presenter.ResultsView
}

var _ UI = (*RootView)(nil)

func NewRootView(guidelines []string, logger *slog.Logger) *RootView {
	GridRowConfigure(App, 0, Weight(1))
	GridColumnConfigure(App, 0, Weight(1))
	return &RootView{guidelines: guidelines, logger: logger}
}

func (rv *RootView) clear() {
	rv.setup.destroy()
	rv.test.destroy()
	rv.results.destroy()
	rv.setup, rv.test, rv.results = nil, nil, nil
}

// ShowSetup mounts the instructions screen.
func (rv *RootView) ShowSetup(h SetupHandlers) {
	if rv == nil {
		return
	}
	rv.clear()
	rv.setup = newSetupView(rv.guidelines, h)
	rv.log("screen", "setup")
}

// ShowTest mounts the in-progress screen.
func (rv *RootView) ShowTest(onFinish func()) {
	if rv == nil {
		return
	}
	rv.clear()
	rv.test = newTestView(onFinish)
	rv.log("screen", "test")
}

// ShowResultsScreen mounts the results screen; ShowResults fills it.
func (rv *RootView) ShowResultsScreen(onClose func()) {
	if rv == nil {
		return
	}
	rv.clear()
	rv.results = newResultsView(onClose)
	rv.log("screen", "results")
}

// RenderSetup updates the instructions screen when mounted.
func (rv *RootView) RenderSetup(s session.Snapshot, notice string) {
	if rv != nil && rv.setup != nil {
		rv.setup.render(s, notice)
	}
}

// SetProctorTime updates the session stats when the test screen is mounted.
func (rv *RootView) SetProctorTime(stretch, total time.Duration) {
	if rv == nil || rv.test == nil || rv.test.stats == nil {
		return
	}
	rv.test.stats.SetStretch(stretch)
	rv.test.stats.SetTotal(total)
}

func (rv *RootView) ShowResults(s presenter.Summary) {
	if rv != nil && rv.results != nil {
		rv.results.show(s)
	}
}

func (rv *RootView) log(msg string, args ...any) {
	if rv.logger != nil {
		rv.logger.Debug(msg, args...)
	}
}
