package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/kbinani/screenshot"

	"screenotate/src/geometry"
)

// ErrNoImage is returned when the capture primitive produced no pixels.
var ErrNoImage = errors.New("capture produced no image")

// Displays enumerates the active displays. Display IDs are the indices used
// by Capture; bounds are in global top-left-origin space.
func Displays() ([]geometry.Display, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays found")
	}
	displays := make([]geometry.Display, 0, n)
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays = append(displays, geometry.Display{
			ID:     i,
			Bounds: geometry.NewRect(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy())),
		})
	}
	return displays, nil
}

// Capturer grabs pixels from one display.
type Capturer struct{}

// Capture returns the pixels under local, a bottom-left-origin rectangle
// relative to the display's own frame, as selection surfaces report it.
func (Capturer) Capture(displayID int, local geometry.Rect) (image.Image, error) {
	if local.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: %s", local)
	}
	if displayID < 0 || displayID >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d not active", displayID)
	}

	bounds := screenshot.GetDisplayBounds(displayID)
	rect := pixelRect(bounds, local)
	if rect.Empty() {
		return nil, fmt.Errorf("region %s outside display %d", local, displayID)
	}

	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	if img == nil {
		return nil, ErrNoImage
	}
	return img, nil
}

// pixelRect flips a bottom-left-origin display-local rectangle into the
// global top-left-origin pixel space and clips it to the display.
func pixelRect(display image.Rectangle, local geometry.Rect) image.Rectangle {
	h := float64(display.Dy())
	top := h - local.MaxY()
	r := image.Rect(
		display.Min.X+int(math.Floor(local.Origin.X)),
		display.Min.Y+int(math.Floor(top)),
		display.Min.X+int(math.Ceil(local.MaxX())),
		display.Min.Y+int(math.Ceil(top+local.Size.Height)),
	)
	return r.Intersect(display)
}

// LocalRectFromTopLeft converts a top-left-origin rectangle within a display
// of height displayHeight into the bottom-left-origin form Capture expects.
func LocalRectFromTopLeft(x, y, w, h, displayHeight float64) geometry.Rect {
	return geometry.NewRect(x, displayHeight-(y+h), w, h)
}

// EncodePNG encodes a single frame without additional metadata.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, ErrNoImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
