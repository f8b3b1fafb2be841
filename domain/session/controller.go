// Package session composes the capture acquirer, the stream registry and the
// fullscreen coordinator into the single object that UI surfaces drive and
// observe during assessment setup.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/resume"
)

// UploadFailedMessage is shown when the resume upload fails.
const UploadFailedMessage = "Failed to upload resume"

var (
	ErrNoResume = errors.New("no resume attached")
	ErrNotReady = errors.New("setup incomplete")
	// ErrSuperseded is returned by StartTest when a teardown ran while the
	// upload was in flight.
	ErrSuperseded = errors.New("session torn down during start")
)

// Policy decides what StartTest requires before it uploads.
type Policy int

const (
	// PolicyStrict requires camera, screen, fullscreen and a resume.
	PolicyStrict Policy = iota
	// PolicyLoose requires only a resume.
	PolicyLoose
)

func (p Policy) String() string {
	if p == PolicyLoose {
		return "loose"
	}
	return "strict"
}

// ParsePolicy maps a config value to a Policy. Unknown values are strict.
func ParsePolicy(s string) Policy {
	if strings.EqualFold(strings.TrimSpace(s), "loose") {
		return PolicyLoose
	}
	return PolicyStrict
}

// Navigator moves the application between surfaces.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// UnloadNotifier delivers the platform's before-unload notification.
type UnloadNotifier interface {
	OnBeforeUnload(fn func()) (unsubscribe func())
}

// Routes names the navigation targets.
type Routes struct {
	Landing   string
	Questions string
}

// Options configure a Controller.
type Options struct {
	Sources           map[media.Kind]media.Source
	Display           media.Display
	Navigator         Navigator
	Unload            UnloadNotifier
	Policy            Policy
	MaxResumeBytes    int64
	CameraConstraints media.Constraints
	Routes            Routes
	Logger            *slog.Logger
}

// Snapshot is the state UI surfaces render. Readiness fields are derived on
// every call and never cached.
type Snapshot struct {
	SessionID        string
	CameraActive     bool
	ScreenActive     bool
	FullscreenActive bool
	ResumeAttached   bool
	ResumeName       string
	ResumeSize       int64
	UploadError      string
	UploadedURL      string
	Uploading        bool
	Policy           Policy
	CanStart         bool
	StartEnabled     bool
	Missing          []string
}

// Readiness returns the gate inputs of the snapshot.
func (s Snapshot) Readiness() media.Readiness {
	return media.Readiness{
		CameraActive:     s.CameraActive,
		ScreenActive:     s.ScreenActive,
		FullscreenActive: s.FullscreenActive,
		ResumeAttached:   s.ResumeAttached,
	}
}

// Controller is one assessment session's media lifecycle. It owns the
// registry for the session's lifetime; every exit path converges on
// Teardown.
type Controller struct {
	id          string
	registry    *media.Registry
	acquirer    *media.Acquirer
	fullscreen  *media.Fullscreen
	nav         Navigator
	policy      Policy
	maxResume   int64
	constraints media.Constraints
	routes      Routes
	logger      *slog.Logger

	mu          sync.Mutex
	epoch       uint64
	resume      *resume.File
	uploadError string
	uploadedURL string
	uploading   bool
	listeners   map[int]func(Snapshot)
	nextID      int
	unloadUnsub func()
	closed      bool
}

// New starts a session: it builds the registry, acquirer and fullscreen
// coordinator and subscribes teardown to the unload notifier.
func New(opts Options) *Controller {
	registry := media.NewRegistry(opts.Logger)
	c := &Controller{
		id:          uuid.NewString(),
		registry:    registry,
		acquirer:    media.NewAcquirer(registry, opts.Sources, opts.Logger),
		fullscreen:  media.NewFullscreen(opts.Display, opts.Logger),
		nav:         opts.Navigator,
		policy:      opts.Policy,
		maxResume:   opts.MaxResumeBytes,
		constraints: opts.CameraConstraints,
		routes:      opts.Routes,
		logger:      opts.Logger,
		listeners:   make(map[int]func(Snapshot)),
	}
	if c.maxResume <= 0 {
		c.maxResume = resume.MaxBytes
	}
	if c.logger != nil {
		c.logger = c.logger.With("session", c.id)
	}
	c.acquirer.OnChange(func(media.Kind, bool) { c.emit() })
	c.fullscreen.OnChange(func(bool) { c.emit() })
	if opts.Unload != nil {
		c.unloadUnsub = opts.Unload.OnBeforeUnload(func() {
			c.logf("before unload, releasing media")
			c.Teardown()
		})
	}
	return c
}

// ID returns the session identifier.
func (c *Controller) ID() string { return c.id }

// Registry exposes the session's registry for observation.
func (c *Controller) Registry() *media.Registry { return c.registry }

// CameraHandle returns the live camera handle for rendering, or nil. Callers
// must not stop it.
func (c *Controller) CameraHandle() *media.Handle { return c.acquirer.Handle(media.KindCamera) }

// ScreenHandle returns the live screen-capture handle for rendering, or nil.
func (c *Controller) ScreenHandle() *media.Handle { return c.acquirer.Handle(media.KindScreen) }

// Snapshot derives the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	s := Snapshot{
		SessionID:   c.id,
		UploadError: c.uploadError,
		UploadedURL: c.uploadedURL,
		Uploading:   c.uploading,
		Policy:      c.policy,
	}
	if c.resume != nil {
		s.ResumeAttached = true
		s.ResumeName = c.resume.Name
		s.ResumeSize = c.resume.Size
	}
	c.mu.Unlock()
	s.CameraActive = c.acquirer.Active(media.KindCamera)
	s.ScreenActive = c.acquirer.Active(media.KindScreen)
	s.FullscreenActive = c.fullscreen.Active()
	r := s.Readiness()
	s.CanStart = r.CanStart()
	s.Missing = r.Missing()
	s.StartEnabled = !s.Uploading && c.startAllowed(r)
	return s
}

// Subscribe registers fn to receive a snapshot after every state change.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// EnableCamera acquires the camera with the session's constraints. A result
// superseded by teardown or a newer request is dropped silently.
func (c *Controller) EnableCamera(ctx context.Context) error {
	return quiet(c.acquirer.AcquireCamera(ctx, c.constraints))
}

// EnableScreen acquires a screen-capture handle.
func (c *Controller) EnableScreen(ctx context.Context) error {
	return quiet(c.acquirer.AcquireScreen(ctx))
}

// DisableCamera releases the camera.
func (c *Controller) DisableCamera() { c.acquirer.Release(media.KindCamera) }

// DisableScreen releases the screen capture.
func (c *Controller) DisableScreen() { c.acquirer.Release(media.KindScreen) }

// ToggleFullscreen enters or leaves fullscreen. The error may be ignored;
// state stays consistent either way.
func (c *Controller) ToggleFullscreen() error { return c.fullscreen.Toggle() }

// AttachResume validates f. On rejection the message is recorded and any
// previously attached resume is kept; on acceptance f replaces it and the
// error is cleared.
func (c *Controller) AttachResume(f resume.File) error {
	if err := resume.Validate(f, c.maxResume); err != nil {
		c.mu.Lock()
		c.uploadError = err.Error()
		c.mu.Unlock()
		c.logf("resume rejected", "name", f.Name, "size", f.Size, "type", f.ContentType, "error", err)
		c.emit()
		return err
	}
	c.mu.Lock()
	c.resume = &f
	c.uploadError = ""
	c.mu.Unlock()
	c.logf("resume attached", "name", f.Name, "size", f.Size)
	c.emit()
	return nil
}

// ClearUploadError dismisses the recorded message.
func (c *Controller) ClearUploadError() {
	c.mu.Lock()
	c.uploadError = ""
	c.mu.Unlock()
	c.emit()
}

// StartTest uploads the attached resume and, on success, navigates to the
// question flow.
func (c *Controller) StartTest(ctx context.Context, up resume.Uploader) error {
	snap := c.Snapshot()
	if !snap.ResumeAttached {
		return ErrNoResume
	}
	if !c.startAllowed(snap.Readiness()) {
		return fmt.Errorf("%w: missing %s", ErrNotReady, strings.Join(snap.Missing, ", "))
	}
	if up == nil {
		return fmt.Errorf("%w: no uploader", resume.ErrUpload)
	}

	c.mu.Lock()
	if c.resume == nil || c.uploading {
		c.mu.Unlock()
		return ErrNoResume
	}
	file := *c.resume
	epoch := c.epoch
	c.uploading = true
	c.mu.Unlock()
	c.emit()

	url, err := up.Upload(ctx, file)

	c.mu.Lock()
	c.uploading = false
	if c.epoch != epoch {
		c.mu.Unlock()
		c.emit()
		return ErrSuperseded
	}
	if err != nil {
		c.uploadError = UploadFailedMessage
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Error("resume upload failed", "error", err)
		}
		c.emit()
		return fmt.Errorf("start test: %w", err)
	}
	c.uploadedURL = url
	c.uploadError = ""
	c.mu.Unlock()
	c.emit()
	c.logf("test starting", "resume_url", url)
	if c.nav != nil {
		c.nav.Navigate(c.routes.Questions)
	}
	return nil
}

// Quit tears the session down and returns to the landing surface.
func (c *Controller) Quit() {
	c.logf("quit requested")
	c.Teardown()
	if c.nav != nil {
		c.nav.Navigate(c.routes.Landing)
	}
}

// Teardown releases every held capture handle, exits fullscreen and resets
// the readiness sources. Acquisitions still in flight are superseded and stop
// their own handles when they resolve. Safe to call repeatedly.
func (c *Controller) Teardown() {
	c.mu.Lock()
	c.epoch++
	c.resume = nil
	c.uploadError = ""
	c.uploadedURL = ""
	c.mu.Unlock()

	released := c.acquirer.ReleaseAll()
	if c.fullscreen.Active() {
		_ = c.fullscreen.Exit()
	}
	c.fullscreen.Reset()
	if released > 0 {
		c.logf("teardown complete", "released", released)
	}
	c.emit()
}

// Mount records a UI surface that owns the session. The returned unmount
// func tears the session down; calling it more than once has no further
// effect.
func (c *Controller) Mount(surface string) (unmount func()) {
	c.logf("surface mounted", "surface", surface)
	var once sync.Once
	return func() {
		once.Do(func() {
			c.logf("surface unmounted, releasing media", "surface", surface)
			c.Teardown()
		})
	}
}

// Close ends the session: teardown plus unsubscribing from platform
// notifications. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	unsub := c.unloadUnsub
	c.unloadUnsub = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
	c.Teardown()
	c.fullscreen.Close()
}

func (c *Controller) startAllowed(r media.Readiness) bool {
	if c.policy == PolicyLoose {
		return r.ResumeAttached
	}
	return r.CanStart()
}

func (c *Controller) emit() {
	c.mu.Lock()
	ls := make([]func(Snapshot), 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.mu.Unlock()
	if len(ls) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, l := range ls {
		l(snap)
	}
}

func (c *Controller) logf(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}

func quiet(err error) error {
	if errors.Is(err, media.ErrStale) {
		return nil
	}
	return err
}
