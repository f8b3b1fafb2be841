//go:build !linux

package capture

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soocke/proctor-go/domain/media"
)

// CameraSource is unavailable outside linux; Acquire always fails.
type CameraSource struct {
	VideoDevice string
	AudioDevice string
	Logger      *slog.Logger
}

func NewCameraSource(videoDevice, audioDevice string, logger *slog.Logger) *CameraSource {
	return &CameraSource{VideoDevice: videoDevice, AudioDevice: audioDevice, Logger: logger}
}

func (s *CameraSource) Acquire(context.Context, media.Constraints) (*media.Handle, error) {
	return nil, fmt.Errorf("camera: %w", media.ErrNotSupported)
}
