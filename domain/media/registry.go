package media

import (
	"log/slog"
	"sync"
)

// Registry is the set of live capture handles for one assessment session.
// It is the single arbiter of what hardware is currently held. Only the
// Acquirer and session teardown mutate it; UI code reads snapshots.
type Registry struct {
	mu      sync.Mutex
	handles map[*Handle]struct{}
	logger  *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{handles: make(map[*Handle]struct{}), logger: logger}
}

// Register adds h to the live set. Registering a member again is a no-op.
func (r *Registry) Register(h *Handle) {
	if r == nil || h == nil {
		return
	}
	r.mu.Lock()
	r.handles[h] = struct{}{}
	n := len(r.handles)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Debug("registry register", "handle", h.ID, "kind", h.Kind.String(), "live", n)
	}
}

// Unregister removes h without stopping it.
func (r *Registry) Unregister(h *Handle) {
	if r == nil || h == nil {
		return
	}
	r.mu.Lock()
	delete(r.handles, h)
	r.mu.Unlock()
}

// StopAndUnregister stops every track of h and removes it in one step, so a
// stopped handle is never observed as a member.
func (r *Registry) StopAndUnregister(h *Handle) {
	if r == nil || h == nil {
		return
	}
	r.mu.Lock()
	h.Stop()
	delete(r.handles, h)
	r.mu.Unlock()
	if r.logger != nil {
		r.logger.Debug("registry release", "handle", h.ID, "kind", h.Kind.String())
	}
}

// ReleaseAll stops every member's tracks and clears the set. It returns the
// number of handles released; an empty registry is a no-op.
func (r *Registry) ReleaseAll() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	n := len(r.handles)
	for h := range r.handles {
		h.Stop()
	}
	clear(r.handles)
	r.mu.Unlock()
	if n > 0 && r.logger != nil {
		r.logger.Info("registry release all", "released", n)
	}
	return n
}

// Contains reports whether h is a member.
func (r *Registry) Contains(h *Handle) bool {
	if r == nil || h == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[h]
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Handles returns a copy of the current members in no particular order.
func (r *Registry) Handles() []*Handle {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Handle, 0, len(r.handles))
	for h := range r.handles {
		out = append(out, h)
	}
	return out
}
