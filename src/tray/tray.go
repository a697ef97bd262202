// Package tray shows the status-area menu of the resident process.
package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log"
	"sync"

	"github.com/getlantern/systray"
)

const DefaultTooltip = "Screenotate"

// Menu wires the tray items to the resident's actions. Callbacks run on the
// tray's own goroutine and must not block.
type Menu struct {
	OnCapture func()
	OnCopy    func()
	OnQuit    func()
}

var (
	mu    sync.Mutex
	ready bool
)

// Run shows the tray icon and blocks until Quit. It must be called from
// the main goroutine.
func Run(m Menu) {
	systray.Run(func() { onReady(m) }, onExit)
}

// Quit removes the icon and makes Run return.
func Quit() {
	systray.Quit()
}

func onReady(m Menu) {
	systray.SetIcon(Icon())
	systray.SetTitle("Screenotate")
	systray.SetTooltip(DefaultTooltip)

	mCapture := systray.AddMenuItem("Capture Screenshot", "Select a region and save it")
	mCopy := systray.AddMenuItem("Capture to Clipboard", "Select a region and copy the image")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	mu.Lock()
	ready = true
	mu.Unlock()

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				call(m.OnCapture)
			case <-mCopy.ClickedCh:
				call(m.OnCopy)
			case <-mQuit.ClickedCh:
				log.Printf("tray: quit requested")
				call(m.OnQuit)
				systray.Quit()
				return
			}
		}
	}()
}

func onExit() {
	mu.Lock()
	ready = false
	mu.Unlock()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// UpdateTooltip is a no-op until the tray is ready.
func UpdateTooltip(text string) {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		systray.SetTooltip(text)
	}
}

// Hide blanks the icon and title so the tray does not show up in a capture
// of the panel. It is a no-op until the tray is ready.
func Hide() {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		systray.SetIcon(blankIcon())
		systray.SetTitle("")
		systray.SetTooltip("")
	}
}

// Show restores what Hide blanked.
func Show() {
	mu.Lock()
	defer mu.Unlock()
	if ready {
		systray.SetIcon(Icon())
		systray.SetTitle("Screenotate")
	}
}

func blankIcon() []byte {
	return encodeIcon(image.NewNRGBA(image.Rect(0, 0, 16, 16)))
}

// Icon renders the 16x16 tray icon: a dashed selection rectangle.
func Icon() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	stroke := color.NRGBA{R: 0x00, G: 0x78, B: 0xd4, A: 0xff}
	for i := 2; i <= 13; i++ {
		if i%3 == 2 {
			continue
		}
		img.Set(i, 3, stroke)
		img.Set(i, 12, stroke)
		img.Set(2, i, stroke)
		img.Set(13, i, stroke)
	}
	return encodeIcon(img)
}

func encodeIcon(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		log.Printf("tray: icon encode failed: %v", err)
		return nil
	}
	return buf.Bytes()
}
