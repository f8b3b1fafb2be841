package app

import (
	"log/slog"
	"sync"

	"github.com/soocke/proctor-go/domain/session"
)

// Screen is one mounted UI surface.
type Screen int

const (
	ScreenNone    Screen = iota // before the first flush
	ScreenSetup                 // instructions and setup checklist
	ScreenTest                  // assessment in progress
	ScreenResults               // session concluded
)

// routeResults is where the test screen goes when the candidate finishes.
const routeResults = "/test/results"

func (s Screen) String() string {
	switch s {
	case ScreenSetup:
		return "setup"
	case ScreenTest:
		return "test"
	case ScreenResults:
		return "results"
	default:
		return "none"
	}
}

// ScreenListener is invoked on every screen change, on the UI thread.
type ScreenListener func(prev, next Screen)

// ScreenMachine maps routes to screens. Navigate may be called from any
// goroutine; the change is applied by Flush, which the UI tick calls, so
// listeners always run on the UI thread.
type ScreenMachine struct {
	mu        sync.Mutex
	current   Screen
	pending   Screen
	hasNext   bool
	routes    map[string]Screen
	listeners []ScreenListener
	logger    *slog.Logger
}

var _ session.Navigator = (*ScreenMachine)(nil)

// NewScreenMachine creates a machine whose first flush shows the setup screen.
func NewScreenMachine(routes session.Routes, logger *slog.Logger) *ScreenMachine {
	m := &ScreenMachine{
		routes: map[string]Screen{
			routes.Landing:   ScreenSetup,
			routes.Questions: ScreenTest,
			routeResults:     ScreenResults,
		},
		logger: logger,
	}
	m.pending, m.hasNext = ScreenSetup, true
	return m
}

// AddListener registers a listener for screen changes.
func (m *ScreenMachine) AddListener(l ScreenListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Current returns the mounted screen.
func (m *ScreenMachine) Current() Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Navigate queues the screen for route. Unknown routes are logged and
// ignored. The latest queued navigation wins.
func (m *ScreenMachine) Navigate(route string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, ok := m.routes[route]
	if !ok {
		if m.logger != nil {
			m.logger.Error("navigate: unknown route", "route", route)
		}
		return
	}
	m.pending, m.hasNext = next, true
}

// Flush applies the pending navigation and notifies listeners. Navigating
// to the mounted screen remounts it.
func (m *ScreenMachine) Flush() {
	m.mu.Lock()
	if !m.hasNext {
		m.mu.Unlock()
		return
	}
	prev, next := m.current, m.pending
	m.current, m.hasNext = next, false
	ls := append([]ScreenListener(nil), m.listeners...)
	m.mu.Unlock()
	if m.logger != nil {
		m.logger.Debug("screen transition", "from", prev.String(), "to", next.String())
	}
	for _, l := range ls {
		l(prev, next)
	}
}
