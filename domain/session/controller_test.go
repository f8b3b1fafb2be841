package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/soocke/proctor-go/domain/media"
	"github.com/soocke/proctor-go/domain/media/mediatest"
	"github.com/soocke/proctor-go/domain/resume"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeUnload struct {
	mu  sync.Mutex
	fns map[int]func()
	id  int
}

func (u *fakeUnload) OnBeforeUnload(fn func()) func() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.fns == nil {
		u.fns = make(map[int]func())
	}
	id := u.id
	u.id++
	u.fns[id] = fn
	return func() {
		u.mu.Lock()
		delete(u.fns, id)
		u.mu.Unlock()
	}
}

func (u *fakeUnload) fire() {
	u.mu.Lock()
	fns := make([]func(), 0, len(u.fns))
	for _, fn := range u.fns {
		fns = append(fns, fn)
	}
	u.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (u *fakeUnload) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.fns)
}

type navRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (n *navRecorder) Navigate(route string) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *navRecorder) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.routes...)
}

type fixture struct {
	c       *Controller
	cam     *mediatest.Source
	scr     *mediatest.Source
	display *mediatest.Display
	unload  *fakeUnload
	nav     *navRecorder
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()
	f := &fixture{
		cam:     mediatest.NewSource(media.KindCamera, media.TrackVideo, media.TrackAudio),
		scr:     mediatest.NewSource(media.KindScreen, media.TrackVideo),
		display: mediatest.NewDisplay(),
		unload:  &fakeUnload{},
		nav:     &navRecorder{},
	}
	f.c = New(Options{
		Sources:           map[media.Kind]media.Source{media.KindCamera: f.cam, media.KindScreen: f.scr},
		Display:           f.display,
		Navigator:         f.nav,
		Unload:            f.unload,
		Policy:            policy,
		CameraConstraints: media.Constraints{Width: 640, Height: 480, FacingMode: "user", Audio: true},
		Routes:            Routes{Landing: "/", Questions: "/test/mcq"},
		Logger:            discardLogger,
	})
	t.Cleanup(f.c.Close)
	return f
}

func pdf(size int64) resume.File {
	return resume.File{
		Name:        "cv.pdf",
		ContentType: "application/pdf",
		Size:        size,
		Open:        func() (io.ReadCloser, error) { return io.NopCloser(nil), nil },
	}
}

func (f *fixture) ready(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.c.EnableCamera(ctx))
	require.NoError(t, f.c.EnableScreen(ctx))
	require.NoError(t, f.c.ToggleFullscreen())
	require.NoError(t, f.c.AttachResume(pdf(2<<20)))
}

func allHandles(f *fixture) []*media.Handle {
	return append(f.cam.Handles(), f.scr.Handles()...)
}

func requireNoLeaks(t *testing.T, f *fixture) {
	t.Helper()
	require.Zero(t, f.c.Registry().Len())
	for _, h := range allHandles(f) {
		for _, tr := range mediatest.FakeTracks(h) {
			require.Equal(t, 1, tr.Stops(), "track %s of %s", tr.ID(), h.Kind)
		}
	}
}

func TestController_ReadyFlow(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	s := f.c.Snapshot()
	require.False(t, s.CanStart)
	require.Equal(t, []string{"camera", "screen", "fullscreen", "resume"}, s.Missing)

	f.ready(t)
	s = f.c.Snapshot()
	require.True(t, s.CameraActive && s.ScreenActive && s.FullscreenActive && s.ResumeAttached)
	require.True(t, s.CanStart)
	require.True(t, s.StartEnabled)
	require.Equal(t, "cv.pdf", s.ResumeName)
	require.Equal(t, []media.Constraints{{Width: 640, Height: 480, FacingMode: "user", Audio: true}}, f.cam.Constraints())
}

func TestController_TeardownReleasesEverything(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	// Toggle camera a few times before teardown.
	for i := 0; i < 3; i++ {
		require.NoError(t, f.c.EnableCamera(context.Background()))
	}
	f.c.Teardown()

	s := f.c.Snapshot()
	require.False(t, s.CameraActive || s.ScreenActive || s.FullscreenActive || s.ResumeAttached)
	require.False(t, f.display.IsFullscreen())
	requireNoLeaks(t, f)

	before := f.c.Snapshot()
	f.c.Teardown()
	after := f.c.Snapshot()
	require.Equal(t, before, after, "teardown is idempotent")
	requireNoLeaks(t, f)
	require.Equal(t, 1, f.display.Exits(), "second teardown does not exit again")
}

func TestController_UnloadTriggersTeardown(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	f.unload.fire()
	require.False(t, f.c.Snapshot().CameraActive)
	requireNoLeaks(t, f)
}

func TestController_UnmountTriggersTeardown(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	unmount := f.c.Mount("results")
	f.ready(t)
	unmount()
	requireNoLeaks(t, f)
	require.False(t, f.c.Snapshot().ScreenActive)
	unmount()
}

func TestController_QuitNavigatesToLanding(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	f.c.Quit()
	requireNoLeaks(t, f)
	require.Equal(t, []string{"/"}, f.nav.list())
}

func TestController_CloseUnsubscribes(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	require.Equal(t, 1, f.unload.count())
	require.Equal(t, 1, f.display.Listeners())
	f.c.Close()
	require.Zero(t, f.unload.count())
	require.Zero(t, f.display.Listeners())
}

func TestController_TrackEndedWithoutRelease(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	require.NoError(t, f.c.EnableCamera(context.Background()))
	h := f.c.CameraHandle()
	require.NotNil(t, h)

	mediatest.FakeTracks(h)[0].End()

	require.False(t, f.c.Snapshot().CameraActive)
	require.False(t, f.c.Registry().Contains(h))
	require.Nil(t, f.c.CameraHandle())
}

func TestController_AcquisitionResolvingAfterTeardownIsDiscarded(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.cam.Gated()

	errc := make(chan error, 1)
	go func() { errc <- f.c.EnableCamera(context.Background()) }()
	select {
	case <-f.cam.Started:
	case <-time.After(2 * time.Second):
		t.Fatal("camera request never issued")
	}

	f.c.Teardown()
	f.cam.Open()
	require.NoError(t, <-errc, "staleness is not surfaced")

	require.False(t, f.c.Snapshot().CameraActive)
	require.Zero(t, f.c.Registry().Len())
	hs := f.cam.Handles()
	require.Len(t, hs, 1)
	require.True(t, hs[0].Stopped())
	requireNoLeaks(t, f)
}

// requireHeldRegistered checks that every handle the controller exposes is a
// live registry member.
func requireHeldRegistered(t *testing.T, f *fixture) {
	t.Helper()
	for _, h := range []*media.Handle{f.c.CameraHandle(), f.c.ScreenHandle()} {
		if h == nil {
			continue
		}
		require.True(t, f.c.Registry().Contains(h), "held %s handle is not registered", h.Kind)
		require.False(t, h.Stopped(), "held %s handle is stopped", h.Kind)
	}
}

func TestController_ReacquireFromTeardownListenerStaysRegistered(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	require.NoError(t, f.c.EnableCamera(context.Background()))
	first := f.c.CameraHandle()

	var once sync.Once
	reacquired := make(chan error, 1)
	f.c.Subscribe(func(s Snapshot) {
		if s.CameraActive {
			return
		}
		once.Do(func() { reacquired <- f.c.EnableCamera(context.Background()) })
	})

	f.c.Teardown()

	require.NoError(t, <-reacquired)
	require.True(t, first.Stopped())
	require.False(t, f.c.Registry().Contains(first))

	h := f.c.CameraHandle()
	require.NotNil(t, h)
	require.NotSame(t, first, h)
	require.True(t, f.c.Snapshot().CameraActive)
	require.Equal(t, 1, f.c.Registry().Len())
	requireHeldRegistered(t, f)
}

func TestController_ConcurrentAcquireAndTeardownKeepHeldRegistered(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := f.c.EnableCamera(ctx); err != nil {
					t.Errorf("enable camera: %v", err)
					return
				}
				if err := f.c.EnableScreen(ctx); err != nil {
					t.Errorf("enable screen: %v", err)
					return
				}
			}
		}()
	}
	for i := 0; i < 50; i++ {
		f.c.Teardown()
	}
	wg.Wait()
	requireHeldRegistered(t, f)

	live := 0
	for _, h := range allHandles(f) {
		if !h.Stopped() {
			live++
			require.True(t, f.c.Registry().Contains(h))
		}
	}
	require.Equal(t, f.c.Registry().Len(), live)
	require.LessOrEqual(t, live, 2, "at most one handle per kind")

	f.c.Teardown()
	requireNoLeaks(t, f)
}

func TestController_PermissionDeniedSurfaced(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.scr.Err = media.ErrPermissionDenied
	err := f.c.EnableScreen(context.Background())
	require.ErrorIs(t, err, media.ErrPermissionDenied)
	require.False(t, f.c.Snapshot().ScreenActive)
}

func TestController_FullscreenRejectedKeepsState(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.display.RequestErr = errors.New("not allowed")
	require.Error(t, f.c.ToggleFullscreen())
	require.False(t, f.c.Snapshot().FullscreenActive)
}

func TestController_UserLeavesFullscreen(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	f.display.UserExit()
	s := f.c.Snapshot()
	require.False(t, s.FullscreenActive)
	require.False(t, s.CanStart)
	require.Equal(t, []string{"fullscreen"}, s.Missing)
}

func TestController_ResumeValidation(t *testing.T) {
	f := newFixture(t, PolicyStrict)

	err := f.c.AttachResume(pdf(9 << 20))
	require.ErrorIs(t, err, resume.ErrTooLarge)
	s := f.c.Snapshot()
	require.False(t, s.ResumeAttached)
	require.Equal(t, "File size must be less than 8MB", s.UploadError)

	require.NoError(t, f.c.AttachResume(pdf(2<<20)))
	s = f.c.Snapshot()
	require.True(t, s.ResumeAttached)
	require.Empty(t, s.UploadError)

	// Rejections never clear a valid attachment.
	doc := resume.File{Name: "cv.docx", ContentType: "application/msword", Size: 10}
	require.ErrorIs(t, f.c.AttachResume(doc), resume.ErrNotPDF)
	require.ErrorIs(t, f.c.AttachResume(pdf(resume.MaxBytes+1)), resume.ErrTooLarge)
	s = f.c.Snapshot()
	require.True(t, s.ResumeAttached)
	require.Equal(t, "cv.pdf", s.ResumeName)
	require.Equal(t, int64(2<<20), s.ResumeSize)

	require.NoError(t, f.c.AttachResume(pdf(resume.MaxBytes)), "exactly 8MiB is accepted")
	f.c.ClearUploadError()
	require.Empty(t, f.c.Snapshot().UploadError)
}

func TestController_ResumeLimitFromOptions(t *testing.T) {
	c := New(Options{MaxResumeBytes: 2 << 20, Logger: discardLogger})
	t.Cleanup(c.Close)

	require.ErrorIs(t, c.AttachResume(pdf(3<<20)), resume.ErrTooLarge)
	require.Equal(t, "File size must be less than 2MB", c.Snapshot().UploadError)
	require.NoError(t, c.AttachResume(pdf(2<<20)))
}

func TestController_StartTestStrictRequiresGate(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	up := resume.UploaderFunc(func(context.Context, resume.File) (string, error) { return "u", nil })

	require.ErrorIs(t, f.c.StartTest(context.Background(), up), ErrNoResume)
	require.NoError(t, f.c.AttachResume(pdf(1024)))
	require.False(t, f.c.Snapshot().StartEnabled)
	require.ErrorIs(t, f.c.StartTest(context.Background(), up), ErrNotReady)
	require.Empty(t, f.nav.list())
}

func TestController_StartTestLooseNeedsOnlyResume(t *testing.T) {
	f := newFixture(t, PolicyLoose)
	up := resume.UploaderFunc(func(context.Context, resume.File) (string, error) { return "https://x/cv.pdf", nil })
	require.NoError(t, f.c.AttachResume(pdf(1024)))
	require.True(t, f.c.Snapshot().StartEnabled)
	require.False(t, f.c.Snapshot().CanStart)
	require.NoError(t, f.c.StartTest(context.Background(), up))
	require.Equal(t, []string{"/test/mcq"}, f.nav.list())
	require.Equal(t, "https://x/cv.pdf", f.c.Snapshot().UploadedURL)
}

func TestController_StartTestSuccess(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	var got resume.File
	up := resume.UploaderFunc(func(_ context.Context, file resume.File) (string, error) {
		got = file
		return "https://files/cv.pdf", nil
	})
	require.NoError(t, f.c.StartTest(context.Background(), up))
	require.Equal(t, "cv.pdf", got.Name)
	require.Equal(t, []string{"/test/mcq"}, f.nav.list())
	require.True(t, f.c.Snapshot().CameraActive, "media stays live into the question flow")
}

func TestController_StartTestUploadFailure(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	up := resume.UploaderFunc(func(context.Context, resume.File) (string, error) {
		return "", resume.ErrUpload
	})
	err := f.c.StartTest(context.Background(), up)
	require.ErrorIs(t, err, resume.ErrUpload)
	s := f.c.Snapshot()
	require.Equal(t, UploadFailedMessage, s.UploadError)
	require.True(t, s.ResumeAttached)
	require.Empty(t, f.nav.list())
}

func TestController_TeardownDuringUpload(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	f.ready(t)
	started := make(chan struct{})
	release := make(chan struct{})
	up := resume.UploaderFunc(func(context.Context, resume.File) (string, error) {
		close(started)
		<-release
		return "https://files/cv.pdf", nil
	})
	errc := make(chan error, 1)
	go func() { errc <- f.c.StartTest(context.Background(), up) }()
	<-started
	require.True(t, f.c.Snapshot().Uploading)
	f.c.Teardown()
	close(release)
	require.ErrorIs(t, <-errc, ErrSuperseded)
	require.Empty(t, f.nav.list())
	require.False(t, f.c.Snapshot().Uploading)
}

func TestController_SubscribeReceivesChanges(t *testing.T) {
	f := newFixture(t, PolicyStrict)
	var mu sync.Mutex
	var got []Snapshot
	unsub := f.c.Subscribe(func(s Snapshot) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})
	require.NoError(t, f.c.EnableCamera(context.Background()))
	mu.Lock()
	require.NotEmpty(t, got)
	require.True(t, got[len(got)-1].CameraActive)
	n := len(got)
	mu.Unlock()

	unsub()
	f.c.DisableCamera()
	mu.Lock()
	require.Len(t, got, n)
	mu.Unlock()
	require.False(t, f.c.Snapshot().CameraActive)
}

func TestParsePolicy(t *testing.T) {
	require.Equal(t, PolicyLoose, ParsePolicy(" Loose "))
	require.Equal(t, PolicyStrict, ParsePolicy("strict"))
	require.Equal(t, PolicyStrict, ParsePolicy("whatever"))
	require.Equal(t, "loose", PolicyLoose.String())
}
