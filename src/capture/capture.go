// Package capture turns a finalized selection surface into a stored
// document: settle, resolve context, grab pixels, encode, store.
package capture

import (
	"context"
	"image"
	"log"
	"time"

	"screenotate/src/browser"
	"screenotate/src/geometry"
	"screenotate/src/screenshot"
	"screenotate/src/selection"
	"screenotate/src/storage"
	"screenotate/src/window"
)

// DefaultSettle gives the selection surfaces time to disappear from the
// screen before pixels are read.
const DefaultSettle = 30 * time.Millisecond

type WindowResolver interface {
	Resolve(ctx context.Context, p geometry.Point) window.Context
}

type PageResolver interface {
	Resolve(ctx context.Context, app string) (string, bool)
}

type Capturer interface {
	Capture(displayID int, local geometry.Rect) (image.Image, error)
}

type ImageClipboard interface {
	WriteImage(png []byte) error
}

type Store interface {
	Save(ctx context.Context, c storage.Capture)
}

type EncodeFunc func(img image.Image) ([]byte, error)

type Pipeline struct {
	Settle    time.Duration
	Windows   WindowResolver
	Pages     PageResolver
	Capturer  Capturer
	Clipboard ImageClipboard
	Store     Store
	Encode    EncodeFunc
}

var (
	_ WindowResolver = (*window.Resolver)(nil)
	_ PageResolver   = (*browser.Resolver)(nil)
	_ Capturer       = screenshot.Capturer{}
	_ Store          = (*storage.Pipeline)(nil)
)

// Run captures the finalized surface s. It is a no-op for surfaces that were
// not finalized with a non-empty rectangle. Failures are logged.
func (p *Pipeline) Run(ctx context.Context, s *selection.Surface) {
	if s == nil || !s.Finalized() {
		log.Printf("capture: ignoring surface that was not finalized")
		return
	}
	rect := s.Rect()
	if rect.Empty() {
		log.Printf("capture: ignoring empty selection")
		return
	}
	if p.Capturer == nil || p.Store == nil {
		log.Printf("capture: pipeline not configured")
		return
	}

	if p.Settle > 0 {
		t := time.NewTimer(p.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			log.Printf("capture: cancelled before capture: %v", ctx.Err())
			return
		case <-t.C:
		}
	}

	display := s.Display
	origin := geometry.ToGlobal(rect.Origin, display.Bounds.Size.Height, display)

	var wc window.Context
	if p.Windows != nil {
		wc = p.Windows.Resolve(ctx, origin)
	}
	var pageURL *string
	if wc.Owner != nil && p.Pages != nil {
		if u, ok := p.Pages.Resolve(ctx, *wc.Owner); ok {
			pageURL = &u
		}
	}

	img, err := p.Capturer.Capture(display.ID, rect)
	if err != nil || img == nil {
		log.Printf("capture: no image for %s on display %d: %v", rect, display.ID, err)
		return
	}

	// Encoding comes before the copy-mode clipboard write because the
	// clipboard only accepts PNG bytes.
	encode := p.Encode
	if encode == nil {
		encode = screenshot.EncodePNG
	}
	data, err := encode(img)
	if err != nil {
		log.Printf("capture: encode failed: %v", err)
		return
	}

	copyMode := s.Session().CopyMode()
	if copyMode && p.Clipboard != nil {
		if err := p.Clipboard.WriteImage(data); err != nil {
			log.Printf("capture: clipboard image write failed: %v", err)
		}
	}

	p.Store.Save(ctx, storage.Capture{
		Image:       data,
		PointHeight: rect.Size.Height,
		WindowTitle: wc.Title,
		AppTitle:    wc.Owner,
		URL:         pageURL,
		CopyMode:    copyMode,
	})
}
