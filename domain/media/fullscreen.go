package media

import (
	"fmt"
	"log/slog"
	"sync"
)

// Display is the platform presentation surface that can enter fullscreen.
// OnFullscreenChange delivers the platform's own state after every change,
// including ones the application did not request (a key shortcut).
type Display interface {
	RequestFullscreen() error
	ExitFullscreen() error
	IsFullscreen() bool
	OnFullscreenChange(fn func(fullscreen bool)) (unsubscribe func())
}

// Fullscreen mirrors the display's fullscreen state and drives requests to
// enter or leave it. Platform notifications win over locally tracked state.
type Fullscreen struct {
	mu        sync.Mutex
	display   Display
	active    bool
	unsub     func()
	listeners []func(bool)
	logger    *slog.Logger
}

// NewFullscreen subscribes to display changes. Call Close to unsubscribe.
func NewFullscreen(display Display, logger *slog.Logger) *Fullscreen {
	f := &Fullscreen{display: display, logger: logger}
	if display != nil {
		f.active = display.IsFullscreen()
		f.unsub = display.OnFullscreenChange(f.set)
	}
	return f
}

// OnChange adds a listener called after the active flag flips.
func (f *Fullscreen) OnChange(fn func(bool)) {
	if f == nil || fn == nil {
		return
	}
	f.mu.Lock()
	f.listeners = append(f.listeners, fn)
	f.mu.Unlock()
}

// Enter requests fullscreen. On rejection the flag is unchanged and the
// error is logged and returned; callers may ignore it.
func (f *Fullscreen) Enter() error {
	if f == nil || f.display == nil {
		return ErrNotSupported
	}
	if err := f.display.RequestFullscreen(); err != nil {
		if f.logger != nil {
			f.logger.Error("fullscreen request rejected", "error", err)
		}
		return fmt.Errorf("enter fullscreen: %w", err)
	}
	f.set(true)
	return nil
}

// Exit leaves fullscreen with the same failure contract as Enter.
func (f *Fullscreen) Exit() error {
	if f == nil || f.display == nil {
		return ErrNotSupported
	}
	if err := f.display.ExitFullscreen(); err != nil {
		if f.logger != nil {
			f.logger.Error("fullscreen exit rejected", "error", err)
		}
		return fmt.Errorf("exit fullscreen: %w", err)
	}
	f.set(false)
	return nil
}

// Toggle enters or exits depending on the platform's current state.
func (f *Fullscreen) Toggle() error {
	if f == nil || f.display == nil {
		return ErrNotSupported
	}
	if f.display.IsFullscreen() {
		return f.Exit()
	}
	return f.Enter()
}

// Active reports the mirrored fullscreen state.
func (f *Fullscreen) Active() bool {
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Reset clears the local flag without talking to the display.
func (f *Fullscreen) Reset() { f.set(false) }

// Close unsubscribes from display notifications. Idempotent.
func (f *Fullscreen) Close() {
	if f == nil {
		return
	}
	f.mu.Lock()
	unsub := f.unsub
	f.unsub = nil
	f.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (f *Fullscreen) set(v bool) {
	if f == nil {
		return
	}
	f.mu.Lock()
	if f.active == v {
		f.mu.Unlock()
		return
	}
	f.active = v
	ls := make([]func(bool), len(f.listeners))
	copy(ls, f.listeners)
	f.mu.Unlock()
	if f.logger != nil {
		f.logger.Debug("fullscreen state", "active", v)
	}
	for _, l := range ls {
		l(v)
	}
}
