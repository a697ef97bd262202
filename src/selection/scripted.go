package selection

import (
	"sync"

	"screenotate/src/geometry"
)

// Scripted builds headless views for the CLI, IPC requests and tests.
type Scripted struct {
	// ReportOnClose makes a closed view report Finish with its CloseRect,
	// the way a real window reports its own close.
	ReportOnClose bool

	mu    sync.Mutex
	views []*ScriptedView
}

func (sc *Scripted) NewView(s *Surface) SurfaceView {
	v := &ScriptedView{Surface: s, reportOnClose: sc.ReportOnClose}
	sc.mu.Lock()
	sc.views = append(sc.views, v)
	sc.mu.Unlock()
	return v
}

// Views returns the views created so far, in display order.
func (sc *Scripted) Views() []*ScriptedView {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return append([]*ScriptedView(nil), sc.views...)
}

type ScriptedView struct {
	Surface *Surface
	// CloseRect is reported when the view closes with ReportOnClose set.
	CloseRect geometry.Rect

	reportOnClose bool
	mu            sync.Mutex
	calls         []string
}

func (v *ScriptedView) record(call string) {
	v.mu.Lock()
	v.calls = append(v.calls, call)
	v.mu.Unlock()
}

func (v *ScriptedView) Show()         { v.record("show") }
func (v *ScriptedView) BringToFront() { v.record("front") }
func (v *ScriptedView) HideContent()  { v.record("hide") }

func (v *ScriptedView) Close() {
	v.record("close")
	if v.reportOnClose {
		v.Surface.Finish(v.CloseRect)
	}
}

// Select finishes the surface with rect as if the user had dragged it.
func (v *ScriptedView) Select(rect geometry.Rect) {
	v.Surface.Finish(rect)
}

func (v *ScriptedView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}
