package screenshot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"screenotate/src/geometry"
)

func TestPixelRectFlipsOrigin(t *testing.T) {
	display := image.Rect(1920, 0, 3200, 800)
	local := geometry.NewRect(10, 700, 50, 40) // bottom-left origin

	got := pixelRect(display, local)

	want := image.Rect(1930, 60, 1980, 100)
	if got != want {
		t.Fatalf("pixelRect = %v, want %v", got, want)
	}
}

func TestPixelRectClipsToDisplay(t *testing.T) {
	display := image.Rect(0, 0, 100, 100)
	got := pixelRect(display, geometry.NewRect(90, 0, 50, 20))
	if got != image.Rect(90, 80, 100, 100) {
		t.Fatalf("unexpected clip: %v", got)
	}
}

func TestLocalRectFromTopLeftRoundTrip(t *testing.T) {
	display := image.Rect(0, 0, 1280, 800)
	local := LocalRectFromTopLeft(100, 50, 200, 100, 800)
	if local != geometry.NewRect(100, 650, 200, 100) {
		t.Fatalf("unexpected local rect: %v", local)
	}
	if got := pixelRect(display, local); got != image.Rect(100, 50, 300, 150) {
		t.Fatalf("pixelRect = %v", got)
	}
}

func TestEncodePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", decoded.Bounds())
	}

	if _, err := EncodePNG(nil); err != ErrNoImage {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestCaptureRejectsEmptyRegion(t *testing.T) {
	if _, err := (Capturer{}).Capture(0, geometry.NewRect(0, 0, 0, 10)); err == nil {
		t.Error("Expected error for invalid region dimensions")
	}
}

func TestCaptureDisplay(t *testing.T) {
	if os.Getenv("SCREENOTATE_INTERACTIVE_TESTS") != "1" {
		t.Skip("set SCREENOTATE_INTERACTIVE_TESTS=1 to capture a real display")
	}
	displays, err := Displays()
	if err != nil {
		t.Skipf("no displays: %v", err)
	}
	img, err := (Capturer{}).Capture(displays[0].ID, geometry.NewRect(0, 0, 100, 100))
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("expected width 100, got %d", img.Bounds().Dx())
	}
}
