// Package overlay turns a global mouse drag into a selection on the surface
// it started on. Nothing is drawn; the pointer and Escape key are read from
// the shared input hub.
package overlay

import (
	"log"
	"math"
	"sync"

	gohook "github.com/robotn/gohook"

	"screenotate/src/geometry"
	"screenotate/src/hotkey"
	"screenotate/src/selection"
)

// gohook names libuiohook's pressed/released mouse events MouseHold and
// MouseDown respectively.
const (
	mousePressed  = gohook.MouseHold
	mouseReleased = gohook.MouseDown
	leftButton    = 1
)

// Subscriber is satisfied by *hotkey.Hub.
type Subscriber interface {
	Subscribe(fn hotkey.Handler) func()
}

// Drag serves one selection session. Create it per session and pass NewView
// as the session's view factory.
type Drag struct {
	hub Subscriber

	mu          sync.Mutex
	views       []*view
	open        int
	start       *geometry.Point
	unsubscribe func()
}

func NewDrag(hub Subscriber) *Drag {
	return &Drag{hub: hub}
}

func (d *Drag) NewView(s *selection.Surface) selection.SurfaceView {
	v := &view{drag: d, surface: s}
	d.mu.Lock()
	d.views = append(d.views, v)
	d.open++
	d.mu.Unlock()
	return v
}

type view struct {
	drag    *Drag
	surface *selection.Surface
	closed  bool
}

func (v *view) Show() {
	v.drag.mu.Lock()
	defer v.drag.mu.Unlock()
	if v.drag.unsubscribe == nil && v.drag.hub != nil {
		v.drag.unsubscribe = v.drag.hub.Subscribe(v.drag.Feed)
	}
}

func (v *view) BringToFront() {
	log.Printf("overlay: display %d has the pointer", v.surface.Display.ID)
}

func (v *view) HideContent() {}

func (v *view) Close() {
	d := v.drag
	d.mu.Lock()
	if v.closed {
		d.mu.Unlock()
		return
	}
	v.closed = true
	d.open--
	var unsubscribe func()
	if d.open == 0 {
		unsubscribe, d.unsubscribe = d.unsubscribe, nil
	}
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	v.surface.Finish(geometry.Rect{})
}

// Feed handles one input event. A left-button press starts a drag, its
// release finishes the surface under the press point, and Escape cancels
// the session.
func (d *Drag) Feed(ev gohook.Event) {
	switch {
	case ev.Kind == gohook.KeyDown && ev.Keycode == hotkey.EscapeKeycode:
		if s := d.session(); s != nil {
			log.Printf("overlay: selection cancelled")
			s.Cancel()
		}
	case ev.Kind == mousePressed && ev.Button == leftButton:
		p := geometry.Point{X: float64(ev.X), Y: float64(ev.Y)}
		d.mu.Lock()
		d.start = &p
		d.mu.Unlock()
	case ev.Kind == mouseReleased && ev.Button == leftButton:
		d.mu.Lock()
		start := d.start
		d.start = nil
		d.mu.Unlock()
		if start == nil {
			return
		}
		end := geometry.Point{X: float64(ev.X), Y: float64(ev.Y)}
		d.finish(*start, end)
	}
}

func (d *Drag) session() *selection.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.views) == 0 {
		return nil
	}
	return d.views[0].surface.Session()
}

func (d *Drag) finish(start, end geometry.Point) {
	d.mu.Lock()
	var target *selection.Surface
	for _, v := range d.views {
		if !v.closed && geometry.PointInRect(start, v.surface.Display.Bounds) {
			target = v.surface
			break
		}
	}
	d.mu.Unlock()
	if target == nil {
		log.Printf("overlay: drag started outside every open surface")
		return
	}
	target.Finish(DragRect(start, end, target.Display))
}

// DragRect converts a drag between two global top-left-origin points into
// the display-local bottom-left-origin rectangle surfaces report. The end
// point is clamped to the display.
func DragRect(start, end geometry.Point, d geometry.Display) geometry.Rect {
	b := d.Bounds
	clamp := func(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
	end.X = clamp(end.X, b.Origin.X, b.MaxX())
	end.Y = clamp(end.Y, b.Origin.Y, b.MaxY())

	minX, maxX := math.Min(start.X, end.X), math.Max(start.X, end.X)
	minY, maxY := math.Min(start.Y, end.Y), math.Max(start.Y, end.Y)

	return geometry.NewRect(
		minX-b.Origin.X,
		b.Size.Height-(maxY-b.Origin.Y),
		maxX-minX,
		maxY-minY,
	)
}
