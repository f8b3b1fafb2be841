package media

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// ChangeListener is called after a kind becomes active or inactive.
type ChangeListener func(kind Kind, active bool)

type slot struct {
	gen    uint64
	handle *Handle
	unsubs []func()
}

// Acquirer requests camera and screen handles, keeps at most one per kind and
// mirrors platform-ended tracks back into its state.
//
// Every acquisition captures its kind's generation before calling the Source.
// A new acquisition, an explicit Release or ReleaseAll bumps the generation;
// an acquisition that resolves against an older generation stops its handle
// and returns ErrStale without touching shared state.
type Acquirer struct {
	mu        sync.Mutex
	registry  *Registry
	sources   map[Kind]Source
	slots     [kindCount]slot
	listeners []ChangeListener
	logger    *slog.Logger
}

// NewAcquirer constructs an acquirer that registers handles in registry.
func NewAcquirer(registry *Registry, sources map[Kind]Source, logger *slog.Logger) *Acquirer {
	if sources == nil {
		sources = map[Kind]Source{}
	}
	return &Acquirer{registry: registry, sources: sources, logger: logger}
}

// OnChange adds a listener for active-state transitions.
func (a *Acquirer) OnChange(l ChangeListener) {
	if a == nil || l == nil {
		return
	}
	a.mu.Lock()
	a.listeners = append(a.listeners, l)
	a.mu.Unlock()
}

// AcquireCamera replaces any held camera handle with a new one.
func (a *Acquirer) AcquireCamera(ctx context.Context, c Constraints) error {
	return a.acquire(ctx, KindCamera, c)
}

// AcquireScreen replaces any held screen-capture handle with a new one.
func (a *Acquirer) AcquireScreen(ctx context.Context) error {
	return a.acquire(ctx, KindScreen, Constraints{})
}

func (a *Acquirer) acquire(ctx context.Context, kind Kind, c Constraints) error {
	if a == nil {
		return ErrNotSupported
	}
	src := a.sources[kind]
	if src == nil {
		return fmt.Errorf("acquire %s: %w", kind, ErrNotSupported)
	}

	a.mu.Lock()
	prev, prevUnsubs := a.detachLocked(kind)
	gen := a.slots[kind].gen
	a.mu.Unlock()
	if prev != nil {
		a.dropHandle(prev, prevUnsubs)
		a.notify(kind, false)
	}

	h, err := src.Acquire(ctx, c)

	a.mu.Lock()
	if a.slots[kind].gen != gen {
		a.mu.Unlock()
		if h != nil {
			h.Stop()
		}
		if a.logger != nil {
			a.logger.Debug("acquisition discarded", "kind", kind.String(), "error", err)
		}
		return ErrStale
	}
	if err != nil {
		a.mu.Unlock()
		if a.logger != nil {
			a.logger.Error("capture acquire failed", "kind", kind.String(), "error", err)
		}
		return fmt.Errorf("acquire %s: %w", kind, err)
	}
	if h == nil {
		a.mu.Unlock()
		return fmt.Errorf("acquire %s: %w", kind, ErrNoDevice)
	}
	a.registry.Register(h)
	a.slots[kind].handle = h
	a.mu.Unlock()

	// Subscribe outside the lock: a track that already ended fires immediately.
	unsubs := make([]func(), 0, len(h.Tracks))
	for _, t := range h.Tracks {
		if t == nil {
			continue
		}
		unsubs = append(unsubs, t.OnEnded(func() { a.trackEnded(kind, h) }))
	}
	a.mu.Lock()
	current := a.slots[kind].handle == h
	if current {
		a.slots[kind].unsubs = unsubs
	}
	a.mu.Unlock()
	if !current {
		// Dropped while subscribing; the listeners are ours to remove.
		for _, u := range unsubs {
			u()
		}
		return ErrStale
	}

	if a.logger != nil {
		a.logger.Info("capture acquired", "kind", kind.String(), "handle", h.ID, "tracks", len(h.Tracks))
	}
	a.notify(kind, true)
	return nil
}

// Release stops and unregisters the held handle of kind and marks it inactive.
// It also supersedes any acquisition of that kind still in flight.
func (a *Acquirer) Release(kind Kind) {
	if a == nil || kind < 0 || kind >= kindCount {
		return
	}
	a.mu.Lock()
	h, unsubs := a.detachLocked(kind)
	a.mu.Unlock()
	if h == nil {
		return
	}
	a.dropHandle(h, unsubs)
	if a.logger != nil {
		a.logger.Info("capture released", "kind", kind.String(), "handle", h.ID)
	}
	a.notify(kind, false)
}

// ReleaseAll supersedes every in-flight acquisition, forgets the held
// handles and stops every registry member, all under one lock. Listeners run
// afterwards, so an acquisition they start lands after the release and stays
// registered. It returns the number of handles the registry stopped.
func (a *Acquirer) ReleaseAll() int {
	if a == nil {
		return 0
	}
	type dropped struct {
		kind   Kind
		unsubs []func()
	}
	var out []dropped
	a.mu.Lock()
	for _, k := range Kinds() {
		h, unsubs := a.detachLocked(k)
		if h != nil {
			out = append(out, dropped{kind: k, unsubs: unsubs})
		}
	}
	released := a.registry.ReleaseAll()
	a.mu.Unlock()
	for _, d := range out {
		for _, u := range d.unsubs {
			u()
		}
		a.notify(d.kind, false)
	}
	return released
}

// Active reports whether a live handle of kind is held.
func (a *Acquirer) Active(kind Kind) bool {
	return a.Handle(kind) != nil
}

// Handle returns the held handle of kind, or nil.
func (a *Acquirer) Handle(kind Kind) *Handle {
	if a == nil || kind < 0 || kind >= kindCount {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.slots[kind].handle
}

// trackEnded mirrors an explicit Release when the platform ends a track of
// the currently held handle. Events from superseded handles are ignored.
func (a *Acquirer) trackEnded(kind Kind, h *Handle) {
	defer recoverLog(a.logger, "track ended listener panic")
	a.mu.Lock()
	if a.slots[kind].handle != h {
		a.mu.Unlock()
		return
	}
	_, unsubs := a.detachLocked(kind)
	a.mu.Unlock()
	a.dropHandle(h, unsubs)
	if a.logger != nil {
		a.logger.Info("capture track ended", "kind", kind.String(), "handle", h.ID)
	}
	a.notify(kind, false)
}

// detachLocked bumps the generation of kind and clears its slot, returning
// what was held. Caller holds a.mu.
func (a *Acquirer) detachLocked(kind Kind) (*Handle, []func()) {
	s := &a.slots[kind]
	s.gen++
	h, unsubs := s.handle, s.unsubs
	s.handle, s.unsubs = nil, nil
	return h, unsubs
}

func (a *Acquirer) dropHandle(h *Handle, unsubs []func()) {
	for _, u := range unsubs {
		u()
	}
	a.registry.StopAndUnregister(h)
}

func (a *Acquirer) notify(kind Kind, active bool) {
	a.mu.Lock()
	ls := append([]ChangeListener(nil), a.listeners...)
	a.mu.Unlock()
	for _, l := range ls {
		l(kind, active)
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
