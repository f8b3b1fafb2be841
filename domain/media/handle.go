package media

import (
	"sync"

	"github.com/google/uuid"
)

// Handle is one acquired camera or screen-capture resource. It is owned by
// the acquisition that created it; the Registry only holds membership.
type Handle struct {
	ID     string
	Kind   Kind
	Tracks []Track

	stopOnce sync.Once
	mu       sync.Mutex
	stopped  bool
}

// NewHandle wraps tracks into a handle with a fresh identifier.
func NewHandle(kind Kind, tracks ...Track) *Handle {
	return &Handle{ID: uuid.NewString(), Kind: kind, Tracks: tracks}
}

// Stop stops every track exactly once. Later calls are no-ops.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.stopOnce.Do(func() {
		for _, t := range h.Tracks {
			if t != nil {
				t.Stop()
			}
		}
		h.mu.Lock()
		h.stopped = true
		h.mu.Unlock()
	})
}

// Stopped reports whether Stop has run.
func (h *Handle) Stopped() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

// Track returns the first track of the given kind, or nil.
func (h *Handle) Track(kind TrackKind) Track {
	if h == nil {
		return nil
	}
	for _, t := range h.Tracks {
		if t != nil && t.Kind() == kind {
			return t
		}
	}
	return nil
}
