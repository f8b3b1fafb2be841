package capture

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/soocke/proctor-go/domain/media"
)

// trackBase carries identity and ended-listener bookkeeping shared by the
// concrete tracks. Stop never fires listeners; end does, once.
type trackBase struct {
	id     string
	kind   media.TrackKind
	logger *slog.Logger

	mu        sync.Mutex
	ended     bool
	stopped   bool
	nextID    int
	listeners map[int]func()
}

func newTrackBase(kind media.TrackKind, logger *slog.Logger) trackBase {
	return trackBase{id: uuid.NewString(), kind: kind, logger: logger, listeners: make(map[int]func())}
}

func (t *trackBase) ID() string            { return t.id }
func (t *trackBase) Kind() media.TrackKind { return t.kind }

func (t *trackBase) OnEnded(fn func()) func() {
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

// markStopped returns false if the track was already stopped.
func (t *trackBase) markStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Stopped reports whether Stop ran.
func (t *trackBase) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// end marks the track ended by the platform and notifies listeners. It is a
// no-op once the track was stopped or already ended.
func (t *trackBase) end(reason string) {
	t.mu.Lock()
	if t.ended || t.stopped {
		t.mu.Unlock()
		return
	}
	t.ended = true
	ls := make([]func(), 0, len(t.listeners))
	for _, l := range t.listeners {
		ls = append(ls, l)
	}
	clear(t.listeners)
	t.mu.Unlock()
	if t.logger != nil {
		t.logger.Info("track ended", "track", t.id, "kind", t.kind.String(), "reason", reason)
	}
	for _, l := range ls {
		func() {
			defer recoverLog(t.logger, "ended listener panic")
			l()
		}()
	}
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
