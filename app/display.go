package app

import (
	"strings"
	"sync"

	tk "modernc.org/tk9.0"

	"github.com/soocke/proctor-go/domain/media"
)

// fullscreenState fans out fullscreen changes. Only actual changes are
// delivered.
type fullscreenState struct {
	mu        sync.Mutex
	value     bool
	nextID    int
	listeners map[int]func(bool)
}

func newFullscreenState() *fullscreenState {
	return &fullscreenState{listeners: make(map[int]func(bool))}
}

func (s *fullscreenState) subscribe(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *fullscreenState) observe(v bool) {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return
	}
	s.value = v
	ls := make([]func(bool), 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()
	for _, l := range ls {
		l(v)
	}
}

// tkDisplay drives the main window's -fullscreen attribute. All methods must
// run on the UI thread. Changes made by the window manager (a key shortcut,
// another app taking over) are picked up by Poll, which runs from the
// <Configure> binding and on every tick.
type tkDisplay struct {
	state *fullscreenState
}

var _ media.Display = (*tkDisplay)(nil)

func newTkDisplay() *tkDisplay {
	d := &tkDisplay{state: newFullscreenState()}
	tk.Bind(tk.App, "<Configure>", tk.Command(d.Poll))
	return d
}

func (d *tkDisplay) RequestFullscreen() error {
	tk.WmAttributes(tk.App, "-fullscreen", 1)
	d.Poll()
	return nil
}

func (d *tkDisplay) ExitFullscreen() error {
	tk.WmAttributes(tk.App, "-fullscreen", 0)
	d.Poll()
	return nil
}

func (d *tkDisplay) IsFullscreen() bool {
	return strings.TrimSpace(tk.WmAttributes(tk.App, "-fullscreen")) == "1"
}

func (d *tkDisplay) OnFullscreenChange(fn func(bool)) func() { return d.state.subscribe(fn) }

// Poll re-reads the attribute and notifies on change.
func (d *tkDisplay) Poll() { d.state.observe(d.IsFullscreen()) }
