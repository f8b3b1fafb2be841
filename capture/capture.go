// Package capture provides the platform capture sources behind the media
// acquirer: screen capture through the screenshot library and camera and
// microphone devices opened directly on linux.
package capture

import (
	"image"

	"github.com/vova616/screenshot"
)

// Grab returns a capture of the whole primary screen.
func Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

// GrabRect captures the given area of the screen.
func GrabRect(area image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(area)
}

// ScreenRect reports the bounds of the primary screen.
func ScreenRect() (image.Rectangle, error) {
	return screenshot.ScreenRect()
}
