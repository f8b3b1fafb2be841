package app

import (
	"log/slog"
	"sync"

	"github.com/soocke/proctor-go/domain/session"
)

// unloadNotifier delivers the before-unload notification: the main window is
// closing or the process received SIGINT/SIGTERM. It fires at most once.
type unloadNotifier struct {
	mu        sync.Mutex
	fired     bool
	nextID    int
	listeners map[int]func()
	logger    *slog.Logger
}

var _ session.UnloadNotifier = (*unloadNotifier)(nil)

func newUnloadNotifier(logger *slog.Logger) *unloadNotifier {
	return &unloadNotifier{listeners: make(map[int]func()), logger: logger}
}

func (u *unloadNotifier) OnBeforeUnload(fn func()) func() {
	u.mu.Lock()
	defer u.mu.Unlock()
	id := u.nextID
	u.nextID++
	u.listeners[id] = fn
	return func() {
		u.mu.Lock()
		delete(u.listeners, id)
		u.mu.Unlock()
	}
}

// Fire runs the listeners once. Later calls do nothing.
func (u *unloadNotifier) Fire(reason string) {
	u.mu.Lock()
	if u.fired {
		u.mu.Unlock()
		return
	}
	u.fired = true
	ls := make([]func(), 0, len(u.listeners))
	for _, l := range u.listeners {
		ls = append(ls, l)
	}
	u.mu.Unlock()
	if u.logger != nil {
		u.logger.Info("before unload", "reason", reason, "listeners", len(ls))
	}
	for _, l := range ls {
		l()
	}
}
