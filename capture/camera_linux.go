//go:build linux

package capture

// Camera and microphone capture on linux. A track is an open file descriptor
// on a V4L2 video node or an ALSA capture PCM node; holding the descriptor is
// what lights the device's in-use indicator, and closing it releases the
// device. A watcher goroutine probes each descriptor with a cheap ioctl and
// ends the track once the kernel reports the device gone (unplugged, driver
// unbound). poll(2) is not usable for this: V4L2 reports POLLERR whenever the
// queue is not streaming.

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/soocke/proctor-go/domain/media"
)

// V4L2 ioctl requests and flags (linux/videodev2.h).
const (
	vidiocQueryCap   = 0x80685600 // _IOR('V', 0, struct v4l2_capability)
	vidiocGFmt       = 0xc0d05604 // _IOWR('V', 4, struct v4l2_format)
	vidiocSFmt       = 0xc0d05605 // _IOWR('V', 5, struct v4l2_format)
	sndrvPcmPVersion = 0x80044100 // _IOR('A', 0x00, int)

	v4l2CapVideoCapture = 0x00000001
	v4l2CapDeviceCaps   = 0x80000000
	v4l2BufTypeCapture  = 1

	v4l2FormatSize = 208
	// Offset of the pix union inside struct v4l2_format on 64-bit kernels.
	v4l2PixOffset = 8
)

const deviceProbeInterval = 500 * time.Millisecond

type v4l2Capability struct {
	Driver       [16]byte
	Card         [32]byte
	BusInfo      [32]byte
	Version      uint32
	Capabilities uint32
	DeviceCaps   uint32
	Reserved     [3]uint32
}

// CameraSource opens the configured video node and, when audio is
// requested, the configured capture PCM node.
type CameraSource struct {
	VideoDevice string
	AudioDevice string
	Logger      *slog.Logger
}

// NewCameraSource returns a source for the given device nodes.
func NewCameraSource(videoDevice, audioDevice string, logger *slog.Logger) *CameraSource {
	return &CameraSource{VideoDevice: videoDevice, AudioDevice: audioDevice, Logger: logger}
}

func (s *CameraSource) Acquire(ctx context.Context, c media.Constraints) (*media.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vfd, err := openDevice(s.VideoDevice, unix.O_RDWR)
	if err != nil {
		return nil, err
	}
	if err := checkCapture(vfd); err != nil {
		unix.Close(vfd) //nolint:errcheck // error path
		return nil, fmt.Errorf("%s: %w", s.VideoDevice, err)
	}
	if c.Width > 0 && c.Height > 0 {
		// Resolution is a hint; drivers may pick the closest mode or refuse.
		if err := setResolution(vfd, c.Width, c.Height); err != nil && s.Logger != nil {
			s.Logger.Debug("camera resolution hint ignored", "device", s.VideoDevice, "error", err)
		}
	}
	tracks := []media.Track{newDeviceTrack(vfd, s.VideoDevice, media.TrackVideo, s.Logger)}

	if c.Audio && s.AudioDevice != "" {
		afd, err := openDevice(s.AudioDevice, unix.O_RDONLY)
		if err != nil {
			// All-or-nothing, like a browser camera request with audio.
			tracks[0].Stop()
			return nil, err
		}
		tracks = append(tracks, newDeviceTrack(afd, s.AudioDevice, media.TrackAudio, s.Logger))
	}
	if err := ctx.Err(); err != nil {
		for _, t := range tracks {
			t.Stop()
		}
		return nil, err
	}
	return media.NewHandle(media.KindCamera, tracks...), nil
}

func openDevice(path string, mode int) (int, error) {
	fd, err := unix.Open(path, mode|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, mapErrno(err))
	}
	return fd, nil
}

func mapErrno(err error) error {
	switch {
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%v: %w", err, media.ErrPermissionDenied)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%v: %w", err, media.ErrDeviceBusy)
	case errors.Is(err, unix.ENOENT), errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO), errors.Is(err, unix.ENOTTY):
		return fmt.Errorf("%v: %w", err, media.ErrNoDevice)
	default:
		return err
	}
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func checkCapture(fd int) error {
	var cp v4l2Capability
	if err := ioctl(fd, vidiocQueryCap, unsafe.Pointer(&cp)); err != nil {
		return mapErrno(err)
	}
	caps := cp.Capabilities
	if caps&v4l2CapDeviceCaps != 0 {
		caps = cp.DeviceCaps
	}
	if caps&v4l2CapVideoCapture == 0 {
		return fmt.Errorf("not a video capture node: %w", media.ErrNoDevice)
	}
	return nil
}

func setResolution(fd, width, height int) error {
	var buf [v4l2FormatSize]byte
	binary.LittleEndian.PutUint32(buf[0:], v4l2BufTypeCapture)
	if err := ioctl(fd, vidiocGFmt, unsafe.Pointer(&buf[0])); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(buf[v4l2PixOffset:], uint32(width))
	binary.LittleEndian.PutUint32(buf[v4l2PixOffset+4:], uint32(height))
	return ioctl(fd, vidiocSFmt, unsafe.Pointer(&buf[0]))
}

type deviceTrack struct {
	trackBase
	path  string
	probe func(fd int) error

	done     chan struct{}
	doneOnce sync.Once
	fdMu     sync.RWMutex
	fd       int
	closed   bool
}

func newDeviceTrack(fd int, path string, kind media.TrackKind, logger *slog.Logger) *deviceTrack {
	t := &deviceTrack{trackBase: newTrackBase(kind, logger), path: path, fd: fd, done: make(chan struct{})}
	t.probe = probeVideo
	if kind == media.TrackAudio {
		t.probe = probeAudio
	}
	go t.watch()
	return t
}

// Stop closes the descriptor. The watcher holds the read lock only for the
// duration of one probe ioctl and never while running ended listeners.
func (t *deviceTrack) Stop() {
	if !t.markStopped() {
		return
	}
	t.doneOnce.Do(func() { close(t.done) })
	t.fdMu.Lock()
	defer t.fdMu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if err := unix.Close(t.fd); err != nil && t.logger != nil {
		t.logger.Error("close capture device", "device", t.path, "error", err)
	}
}

func (t *deviceTrack) watch() {
	defer recoverLog(t.logger, "device watcher panic")
	ticker := time.NewTicker(deviceProbeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
		}
		t.fdMu.RLock()
		if t.closed {
			t.fdMu.RUnlock()
			return
		}
		err := t.probe(t.fd)
		t.fdMu.RUnlock()
		if errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENXIO) || errors.Is(err, unix.EBADF) {
			t.end("device gone: " + err.Error())
			return
		}
	}
}

func probeVideo(fd int) error {
	var cp v4l2Capability
	return ioctl(fd, vidiocQueryCap, unsafe.Pointer(&cp))
}

func probeAudio(fd int) error {
	var version int32
	return ioctl(fd, sndrvPcmPVersion, unsafe.Pointer(&version))
}
