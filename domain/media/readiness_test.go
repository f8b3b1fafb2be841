package media

import "testing"

func TestReadiness_CanStartIsLogicalAnd(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		r := Readiness{
			CameraActive:     mask&1 != 0,
			ScreenActive:     mask&2 != 0,
			FullscreenActive: mask&4 != 0,
			ResumeAttached:   mask&8 != 0,
		}
		want := r.CameraActive && r.ScreenActive && r.FullscreenActive && r.ResumeAttached
		if got := r.CanStart(); got != want {
			t.Fatalf("mask %04b: CanStart=%v want %v", mask, got, want)
		}
		if got := len(r.Missing()) == 0; got != want {
			t.Fatalf("mask %04b: Missing=%v inconsistent with CanStart=%v", mask, r.Missing(), want)
		}
	}
}

func TestReadiness_MissingOrder(t *testing.T) {
	got := Readiness{ScreenActive: true}.Missing()
	want := []string{"camera", "fullscreen", "resume"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}
