package media

import (
	"context"
	"errors"
)

// Kind enumerates the capture resources the manager owns. At most one live
// handle exists per kind.
type Kind int

const (
	KindCamera Kind = iota
	KindScreen
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindScreen:
		return "screen"
	default:
		return "unknown"
	}
}

// Kinds lists every capture kind in a stable order.
func Kinds() []Kind { return []Kind{KindCamera, KindScreen} }

// TrackKind distinguishes audio and video feeds inside a handle.
type TrackKind int

const (
	TrackVideo TrackKind = iota
	TrackAudio
)

func (k TrackKind) String() string {
	if k == TrackAudio {
		return "audio"
	}
	return "video"
}

// Track is the smallest independently stoppable unit of a capture resource.
//
// Stop releases the underlying device and must not invoke ended listeners.
// OnEnded registers fn to run when the platform ends the track on its own
// (device unplugged, sharing revoked). If the track already ended, fn runs
// immediately. The returned func removes the listener.
type Track interface {
	ID() string
	Kind() TrackKind
	Stop()
	OnEnded(fn func()) (unsubscribe func())
}

// Constraints carries the ideal camera settings passed to a Source.
type Constraints struct {
	Width      int
	Height     int
	FacingMode string
	Audio      bool
}

// Source requests a capture handle from the platform. Acquire may block for
// as long as the platform waits on the user (a permission decision); the
// manager imposes no timeout of its own.
type Source interface {
	Acquire(ctx context.Context, c Constraints) (*Handle, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, c Constraints) (*Handle, error)

func (f SourceFunc) Acquire(ctx context.Context, c Constraints) (*Handle, error) { return f(ctx, c) }

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrDeviceBusy       = errors.New("device busy")
	ErrNoDevice         = errors.New("no capture device")
	ErrNotSupported     = errors.New("not supported on this platform")
	// ErrStale is returned by an acquisition that resolved after a newer
	// acquisition or a teardown superseded it. Its handle has been stopped.
	ErrStale = errors.New("acquisition superseded")
)
