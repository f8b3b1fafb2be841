// Package mediatest provides in-memory platform fakes for media tests.
package mediatest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/soocke/proctor-go/domain/media"
)

// Track is a fake media.Track that counts Stop calls and lets tests end it
// the way the platform would.
type Track struct {
	id   string
	kind media.TrackKind

	mu        sync.Mutex
	stops     int
	ended     bool
	nextID    int
	listeners map[int]func()
}

// NewTrack returns a live fake track.
func NewTrack(kind media.TrackKind) *Track {
	return &Track{id: uuid.NewString(), kind: kind, listeners: make(map[int]func())}
}

func (t *Track) ID() string            { return t.id }
func (t *Track) Kind() media.TrackKind { return t.kind }

func (t *Track) Stop() {
	t.mu.Lock()
	t.stops++
	t.mu.Unlock()
}

// Stops returns how many times Stop was called.
func (t *Track) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

// Listeners returns the number of subscribed ended listeners.
func (t *Track) Listeners() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

func (t *Track) OnEnded(fn func()) func() {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		fn()
		return func() {}
	}
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// End simulates the platform ending the track and fires its listeners.
func (t *Track) End() {
	t.mu.Lock()
	if t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	ls := make([]func(), 0, len(t.listeners))
	for _, l := range t.listeners {
		ls = append(ls, l)
	}
	t.mu.Unlock()
	for _, l := range ls {
		l()
	}
}

// Source is a fake media.Source. With Gate set, Acquire blocks until the gate
// is closed or the context is cancelled, which holds an acquisition in flight
// the way a pending permission prompt does.
type Source struct {
	Kind       media.Kind
	TrackKinds []media.TrackKind
	Err        error
	Gate       chan struct{}
	// Started receives once per Acquire call, before any blocking.
	Started chan struct{}

	mu          sync.Mutex
	handles     []*media.Handle
	constraints []media.Constraints
}

// NewSource returns a source producing handles with the given track kinds.
func NewSource(kind media.Kind, tracks ...media.TrackKind) *Source {
	if len(tracks) == 0 {
		tracks = []media.TrackKind{media.TrackVideo}
	}
	return &Source{Kind: kind, TrackKinds: tracks, Started: make(chan struct{}, 64)}
}

// Gated makes every following Acquire block until Open is called.
func (s *Source) Gated() *Source {
	s.mu.Lock()
	s.Gate = make(chan struct{})
	s.mu.Unlock()
	return s
}

// Open releases acquisitions blocked on the gate.
func (s *Source) Open() {
	s.mu.Lock()
	g := s.Gate
	s.Gate = nil
	s.mu.Unlock()
	if g != nil {
		close(g)
	}
}

func (s *Source) Acquire(ctx context.Context, c media.Constraints) (*media.Handle, error) {
	s.mu.Lock()
	gate := s.Gate
	s.constraints = append(s.constraints, c)
	s.mu.Unlock()
	if s.Started != nil {
		select {
		case s.Started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	tracks := make([]media.Track, 0, len(s.TrackKinds))
	for _, k := range s.TrackKinds {
		tracks = append(tracks, NewTrack(k))
	}
	h := media.NewHandle(s.Kind, tracks...)
	s.mu.Lock()
	s.handles = append(s.handles, h)
	s.mu.Unlock()
	return h, nil
}

// Handles returns every handle the source produced, oldest first.
func (s *Source) Handles() []*media.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*media.Handle(nil), s.handles...)
}

// Constraints returns the constraints of every Acquire call.
func (s *Source) Constraints() []media.Constraints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Constraints(nil), s.constraints...)
}

// FakeTracks returns the fake tracks of h.
func FakeTracks(h *media.Handle) []*Track {
	out := make([]*Track, 0, len(h.Tracks))
	for _, t := range h.Tracks {
		if ft, ok := t.(*Track); ok {
			out = append(out, ft)
		}
	}
	return out
}

// Display is a fake media.Display. Requests fire change notifications like
// the platform does.
type Display struct {
	RequestErr error
	ExitErr    error

	mu         sync.Mutex
	fullscreen bool
	nextID     int
	listeners  map[int]func(bool)
	requests   int
	exits      int
}

// NewDisplay returns a windowed fake display.
func NewDisplay() *Display { return &Display{listeners: make(map[int]func(bool))} }

func (d *Display) RequestFullscreen() error {
	d.mu.Lock()
	d.requests++
	err := d.RequestErr
	d.mu.Unlock()
	if err != nil {
		return err
	}
	d.change(true)
	return nil
}

func (d *Display) ExitFullscreen() error {
	d.mu.Lock()
	d.exits++
	err := d.ExitErr
	d.mu.Unlock()
	if err != nil {
		return err
	}
	d.change(false)
	return nil
}

func (d *Display) IsFullscreen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fullscreen
}

func (d *Display) OnFullscreenChange(fn func(bool)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

// UserExit simulates the user leaving fullscreen with a key shortcut.
func (d *Display) UserExit() { d.change(false) }

// Exits returns how many times ExitFullscreen was called.
func (d *Display) Exits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exits
}

// Listeners returns the number of change subscribers.
func (d *Display) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}

func (d *Display) change(v bool) {
	d.mu.Lock()
	if d.fullscreen == v {
		d.mu.Unlock()
		return
	}
	d.fullscreen = v
	ls := make([]func(bool), 0, len(d.listeners))
	for _, l := range d.listeners {
		ls = append(ls, l)
	}
	d.mu.Unlock()
	for _, l := range ls {
		l(v)
	}
}
