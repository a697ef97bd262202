package overlay

import (
	"context"
	"testing"

	gohook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenotate/src/geometry"
	"screenotate/src/hotkey"
	"screenotate/src/selection"
)

type fakeHub struct {
	handlers     []hotkey.Handler
	unsubscribed int
}

func (f *fakeHub) Subscribe(fn hotkey.Handler) func() {
	f.handlers = append(f.handlers, fn)
	return func() { f.unsubscribed++ }
}

func (f *fakeHub) send(ev gohook.Event) {
	for _, h := range f.handlers {
		h(ev)
	}
}

var displays = []geometry.Display{
	{ID: 0, Bounds: geometry.NewRect(0, 0, 1440, 900)},
	{ID: 1, Bounds: geometry.NewRect(1440, 0, 1920, 1080)},
}

func TestDragRect(t *testing.T) {
	d := displays[1]

	r := DragRect(geometry.Point{X: 1500, Y: 100}, geometry.Point{X: 1450, Y: 300}, d)
	assert.Equal(t, geometry.NewRect(10, 780, 50, 200), r)

	// End point past the display edge is clamped.
	r = DragRect(geometry.Point{X: 3300, Y: 1000}, geometry.Point{X: 4000, Y: 2000}, d)
	assert.Equal(t, geometry.NewRect(1860, 0, 60, 80), r)

	assert.True(t, DragRect(geometry.Point{X: 5, Y: 5}, geometry.Point{X: 5, Y: 9}, displays[0]).Empty())
}

func newSession(t *testing.T, hub *fakeHub) (*selection.Session, *[]*selection.Surface) {
	t.Helper()
	var captured []*selection.Surface
	drag := NewDrag(hub)
	s, err := selection.New(selection.Options{
		Displays: displays,
		NewView:  drag.NewView,
		Dispatch: func(f func()) { f() },
		Capture:  func(ctx context.Context, sf *selection.Surface) { captured = append(captured, sf) },
	})
	require.NoError(t, err)
	s.Start(context.Background())
	return s, &captured
}

func TestDragFinishesSurfaceUnderPress(t *testing.T) {
	hub := &fakeHub{}
	s, captured := newSession(t, hub)
	require.Len(t, hub.handlers, 1, "one subscription per session")

	hub.send(gohook.Event{Kind: mousePressed, Button: leftButton, X: 1500, Y: 100})
	hub.send(gohook.Event{Kind: mouseReleased, Button: leftButton, X: 1450, Y: 300})

	require.Len(t, *captured, 1)
	assert.Equal(t, 1, (*captured)[0].Display.ID)
	assert.Equal(t, geometry.NewRect(10, 780, 50, 200), (*captured)[0].Rect())
	assert.Equal(t, selection.Closed, s.State())
	assert.Equal(t, 1, hub.unsubscribed)
}

func TestClickWithoutDragCancelsThatSurface(t *testing.T) {
	hub := &fakeHub{}
	s, captured := newSession(t, hub)

	hub.send(gohook.Event{Kind: mousePressed, Button: leftButton, X: 20, Y: 20})
	hub.send(gohook.Event{Kind: mouseReleased, Button: leftButton, X: 20, Y: 20})

	assert.Empty(t, *captured)
	assert.Equal(t, selection.Active, s.State())
}

func TestEscapeCancelsSession(t *testing.T) {
	hub := &fakeHub{}
	s, captured := newSession(t, hub)

	hub.send(gohook.Event{Kind: gohook.KeyDown, Keycode: hotkey.EscapeKeycode})

	assert.Empty(t, *captured)
	assert.Equal(t, selection.Closed, s.State())
	assert.Equal(t, 1, hub.unsubscribed)
}

func TestReleaseWithoutPressIgnored(t *testing.T) {
	hub := &fakeHub{}
	s, captured := newSession(t, hub)

	hub.send(gohook.Event{Kind: mouseReleased, Button: leftButton, X: 1450, Y: 300})
	hub.send(gohook.Event{Kind: mousePressed, Button: 2, X: 10, Y: 10})
	hub.send(gohook.Event{Kind: mouseReleased, Button: 2, X: 100, Y: 100})

	assert.Empty(t, *captured)
	assert.Equal(t, selection.Active, s.State())
}
