package media

// Readiness holds the four sources of the test-start gate. It is derived on
// demand and never stored.
type Readiness struct {
	CameraActive     bool
	ScreenActive     bool
	FullscreenActive bool
	ResumeAttached   bool
}

// CanStart is true iff every source is true.
func (r Readiness) CanStart() bool {
	return r.CameraActive && r.ScreenActive && r.FullscreenActive && r.ResumeAttached
}

// Missing names the unmet requirements in checklist order.
func (r Readiness) Missing() []string {
	var out []string
	if !r.CameraActive {
		out = append(out, "camera")
	}
	if !r.ScreenActive {
		out = append(out, "screen")
	}
	if !r.FullscreenActive {
		out = append(out, "fullscreen")
	}
	if !r.ResumeAttached {
		out = append(out, "resume")
	}
	return out
}
