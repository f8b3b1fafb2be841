package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{1920, 1080, 320, 180, 320, 180},
		{1000, 500, 200, 200, 200, 100},
		{640, 480, 800, 600, 640, 480},
		{1000, 10, 100, 100, 100, 1},
		{0, 10, 100, 100, 0, 0},
	}
	for _, c := range cases {
		gw, gh := FitSize(c.w, c.h, c.maxW, c.maxH)
		if gw != c.wantW || gh != c.wantH {
			t.Errorf("FitSize(%d,%d,%d,%d) = %d,%d want %d,%d", c.w, c.h, c.maxW, c.maxH, gw, gh, c.wantW, c.wantH)
		}
	}
}

func TestScaleToFit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 400; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	out := ScaleToFit(src, 100, 100)
	if got := out.Bounds(); got.Dx() != 100 || got.Dy() != 50 {
		t.Fatalf("unexpected bounds %v", got)
	}
	r, _, _, a := out.At(50, 25).RGBA()
	if r>>8 < 198 || r>>8 > 202 || a>>8 < 253 {
		t.Fatalf("unexpected pixel r=%d a=%d", r>>8, a>>8)
	}
	if ScaleToFit(src, 1000, 1000) != image.Image(src) {
		t.Fatalf("fitting image should be returned as-is")
	}
	if ScaleToFit(nil, 10, 10) != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestEncodePNG(t *testing.T) {
	data := EncodePNG(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Fatalf("unexpected width %d", img.Bounds().Dx())
	}
	if EncodePNG(nil) != nil {
		t.Fatalf("nil image should encode to nil")
	}
}
