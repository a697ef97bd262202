// Package selection runs one interactive region selection across every
// display and hands the finalized surface to the capture pipeline.
package selection

import (
	"context"
	"errors"
	"log"
	"sync"

	"screenotate/src/geometry"
)

var ErrNoDisplays = errors.New("no displays to select on")

type State int

const (
	Active State = iota
	Finalizing
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Finalizing:
		return "finalizing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// SurfaceView is the on-screen half of a Surface.
type SurfaceView interface {
	Show()
	BringToFront()
	HideContent()
	Close()
}

type ViewFactory func(s *Surface) SurfaceView

// PointerFunc returns the pointer position in global coordinates.
type PointerFunc func(ctx context.Context) (geometry.Point, error)

// Dispatcher schedules f to run later, off the caller's stack.
type Dispatcher func(f func())

// PipelineFunc captures and stores the finalized surface.
type PipelineFunc func(ctx context.Context, s *Surface)

type Options struct {
	Displays []geometry.Display
	CopyMode bool
	NewView  ViewFactory
	Pointer  PointerFunc
	Dispatch Dispatcher
	Capture  PipelineFunc
	HideApp  func()
}

// Surface covers one display for the duration of a session.
type Surface struct {
	Display geometry.Display

	session   *Session
	view      SurfaceView
	rect      geometry.Rect
	finalized bool
	closed    bool
}

// Rect is the finalized selection in display-local, bottom-left-origin
// coordinates.
func (s *Surface) Rect() geometry.Rect {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()
	return s.rect
}

func (s *Surface) Finalized() bool {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()
	return s.finalized
}

func (s *Surface) Session() *Session { return s.session }

// Finish is called by the view when the user completes or abandons the
// selection on this surface, and when the surface closes. An empty rect
// cancels.
func (s *Surface) Finish(rect geometry.Rect) {
	s.session.finish(s, rect)
}

type Session struct {
	mu       sync.Mutex
	opts     Options
	ctx      context.Context
	surfaces []*Surface
	state    State
	open     int
	done     chan struct{}
}

func New(opts Options) (*Session, error) {
	if len(opts.Displays) == 0 {
		return nil, ErrNoDisplays
	}
	if opts.NewView == nil {
		return nil, errors.New("NewView is required")
	}
	if opts.Capture == nil {
		return nil, errors.New("Capture is required")
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { go f() }
	}
	s := &Session{opts: opts, ctx: context.Background(), done: make(chan struct{})}
	for _, d := range opts.Displays {
		s.surfaces = append(s.surfaces, &Surface{Display: d, session: s})
	}
	s.open = len(s.surfaces)
	return s, nil
}

func (s *Session) CopyMode() bool { return s.opts.CopyMode }

func (s *Session) Surfaces() []*Surface { return s.surfaces }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once every surface has closed and any capture has run.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start shows one surface per display and raises the one under the pointer.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	for _, sf := range s.surfaces {
		sf.view = s.opts.NewView(sf)
	}
	s.mu.Unlock()

	for _, sf := range s.surfaces {
		sf.view.Show()
	}

	if s.opts.Pointer == nil {
		return
	}
	p, err := s.opts.Pointer(ctx)
	if err != nil {
		log.Printf("selection: pointer location unavailable: %v", err)
		return
	}
	for _, sf := range s.surfaces {
		if geometry.PointInRect(p, sf.Display.Bounds) {
			sf.view.BringToFront()
			return
		}
	}
}

// Cancel closes every open surface without capturing.
func (s *Session) Cancel() {
	for _, sf := range s.surfaces {
		sf.Finish(geometry.Rect{})
	}
}

func (s *Session) finish(sf *Surface, rect geometry.Rect) {
	s.mu.Lock()
	if sf.closed || sf.finalized {
		s.mu.Unlock()
		return
	}

	if s.state != Active || rect.Empty() {
		sf.closed = true
		s.open--
		s.closeIfDoneLocked()
		view := sf.view
		s.mu.Unlock()
		if view != nil {
			view.Close()
		}
		return
	}

	sf.rect = rect
	sf.finalized = true
	s.state = Finalizing
	var others []SurfaceView
	for _, o := range s.surfaces {
		if o == sf || o.closed {
			continue
		}
		o.closed = true
		s.open--
		if o.view != nil {
			others = append(others, o.view)
		}
	}
	ctx := s.ctx
	s.mu.Unlock()

	log.Printf("selection: finalized %v on display %d", rect, sf.Display.ID)
	for _, v := range others {
		v.Close()
	}
	if sf.view != nil {
		sf.view.HideContent()
	}
	s.opts.Dispatch(func() {
		s.opts.Capture(ctx, sf)
		s.mu.Lock()
		sf.closed = true
		s.open--
		view := sf.view
		s.closeIfDoneLocked()
		s.mu.Unlock()
		if view != nil {
			view.Close()
		}
	})
	if s.opts.HideApp != nil {
		s.opts.HideApp()
	}
}

func (s *Session) closeIfDoneLocked() {
	if s.open == 0 && s.state != Closed {
		s.state = Closed
		close(s.done)
	}
}
