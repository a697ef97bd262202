package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screenotate/src/geometry"
	"screenotate/src/hotkey"
	"screenotate/src/notification"
	"screenotate/src/selection"
	"screenotate/src/singleinstance"
	"screenotate/src/worker"
)

// ErrBusy rejects a capture request while a session or capture is running.
var ErrBusy = errors.New("Busy")

const busyTooltip = "Screenotate: capturing..."

type Options struct {
	Displays func() ([]geometry.Display, error)
	// Views returns the view factory for a new session.
	Views    func() selection.ViewFactory
	Pointer  selection.PointerFunc
	Capture  selection.PipelineFunc
	// HideApp runs once a selection is finalized; ShowApp runs when the loop
	// is idle again.
	HideApp  func()
	ShowApp  func()
	Notifier notification.Notifier
	// Server accepts delegated requests; nil disables them.
	Server  singleinstance.Server
	Tooltip func(string)
	// DefaultTooltip is restored when a capture finishes.
	DefaultTooltip string
}

// Loop is the single-threaded coordinator for hotkey, tray and delegated
// capture requests. It owns the active selection session.
type Loop struct {
	opts     Options
	pool     *worker.Pool
	tasks    chan func()
	triggers chan trigger
	session  *selection.Session
	busy     bool
	// closed is closed when Run returns.
	closed chan struct{}
}

type trigger struct {
	copyMode bool
	conn     singleinstance.Conn
}

func New(opts Options) *Loop {
	return &Loop{
		opts:     opts,
		pool:     worker.New(1),
		tasks:    make(chan func(), 16),
		triggers: make(chan trigger, 4),
		closed:   make(chan struct{}),
	}
}

// Trigger asks the loop to start a session. Safe from any goroutine; extra
// triggers are dropped while the queue is full.
func (l *Loop) Trigger(copyMode bool) {
	select {
	case l.triggers <- trigger{copyMode: copyMode}:
	default:
		log.Printf("eventloop: trigger queue full, dropping request")
	}
}

// StartHotkeys registers the capture and copy combinations.
func (l *Loop) StartHotkeys(capture, copyCombo string) {
	if capture != "" {
		hotkey.Listen(capture, func() { l.Trigger(false) })
	}
	if copyCombo != "" {
		hotkey.Listen(copyCombo, func() { l.Trigger(true) })
	}
}

// post schedules f on the loop goroutine. It never blocks the caller.
func (l *Loop) post(f func()) {
	select {
	case l.tasks <- f:
	default:
		go func() {
			select {
			case l.tasks <- f:
			case <-l.closed:
			}
		}()
	}
}

// Run processes requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.closed)
	defer l.pool.Close()

	var reqCh chan singleinstance.Conn
	if srv := l.opts.Server; srv != nil {
		if err := srv.Start(ctx); err != nil {
			return err
		}
		if p := srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			for {
				conn, err := srv.Next(ctx)
				if err != nil {
					close(reqCh)
					return
				}
				reqCh <- conn
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.tasks:
			f()
		case t := <-l.triggers:
			l.handleTrigger(ctx, t)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleTrigger(ctx, trigger{copyMode: conn.Request().CopyMode, conn: conn})
		}
	}
}

func (l *Loop) handleTrigger(ctx context.Context, t trigger) {
	if l.session != nil || l.busy {
		log.Printf("eventloop: capture already in progress, rejecting request")
		l.reject(t, ErrBusy)
		return
	}

	displays, err := l.opts.Displays()
	if err != nil {
		log.Printf("eventloop: cannot enumerate displays: %v", err)
		l.reject(t, fmt.Errorf("no displays: %w", err))
		return
	}

	s, err := selection.New(selection.Options{
		Displays: displays,
		CopyMode: t.copyMode,
		NewView:  l.opts.Views(),
		Pointer:  l.opts.Pointer,
		Dispatch: l.post,
		Capture:  l.runCapture,
		HideApp:  l.opts.HideApp,
	})
	if err != nil {
		log.Printf("eventloop: cannot start session: %v", err)
		l.reject(t, err)
		return
	}

	l.session = s
	log.Printf("eventloop: selection started on %d display(s), copy=%v", len(displays), t.copyMode)
	s.Start(ctx)
	if t.conn != nil {
		_ = t.conn.RespondSuccess("")
		_ = t.conn.Close()
	}

	go func() {
		select {
		case <-s.Done():
			l.post(func() {
				if l.session == s {
					l.session = nil
				}
				if !l.busy {
					l.showApp()
				}
			})
		case <-ctx.Done():
		}
	}()
}

// runCapture runs on the loop goroutine as a dispatched task and hands the
// surface to the worker pool.
func (l *Loop) runCapture(ctx context.Context, sf *selection.Surface) {
	l.setBusy(true)
	ok := l.opts.Capture != nil && l.pool.Submit(ctx, "capture", func(jobCtx context.Context) {
		l.opts.Capture(jobCtx, sf)
	}, func() {
		l.post(func() { l.setBusy(false) })
	})
	if !ok {
		log.Printf("eventloop: capture dropped, worker busy")
		l.setBusy(false)
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if !b {
		l.showApp()
	}
	if l.opts.Tooltip == nil {
		return
	}
	if b {
		l.opts.Tooltip(busyTooltip)
	} else {
		l.opts.Tooltip(l.opts.DefaultTooltip)
	}
}

func (l *Loop) showApp() {
	if l.opts.ShowApp != nil {
		l.opts.ShowApp()
	}
}

func (l *Loop) reject(t trigger, err error) {
	if t.conn != nil {
		_ = t.conn.RespondError(err.Error())
		_ = t.conn.Close()
		return
	}
	if l.opts.Notifier != nil {
		_ = l.opts.Notifier.Notify("Screenotate", err.Error()+", please retry", false)
	}
}
