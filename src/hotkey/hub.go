package hotkey

import (
	"log"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Handler receives every global input event.
type Handler func(ev gohook.Event)

// Hub owns the process-wide gohook event stream and fans it out to
// subscribers. gohook supports a single stream per process, so hotkeys and
// drag selection share one Hub.
type Hub struct {
	mu       sync.Mutex
	handlers map[int]Handler
	next     int
	started  bool
}

// Default is the hub used by Listen.
var Default = &Hub{}

// Subscribe registers fn and starts the stream on first use. The returned
// function removes the subscription.
func (h *Hub) Subscribe(fn Handler) func() {
	h.mu.Lock()
	if h.handlers == nil {
		h.handlers = map[int]Handler{}
	}
	id := h.next
	h.next++
	h.handlers[id] = fn
	start := !h.started
	h.started = true
	h.mu.Unlock()

	if start {
		go h.run()
	}
	return func() {
		h.mu.Lock()
		delete(h.handlers, id)
		h.mu.Unlock()
	}
}

// Dispatch delivers ev to every subscriber. Handlers may subscribe or
// unsubscribe while being called.
func (h *Hub) Dispatch(ev gohook.Event) {
	h.mu.Lock()
	handlers := make([]Handler, 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func (h *Hub) run() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in hotkey goroutine: %v", r)
		}
	}()

	log.Printf("hotkey: starting gohook event loop")
	evChan := gohook.Start()
	if evChan == nil {
		log.Printf("ERROR: gohook.Start() returned nil channel")
		return
	}
	for ev := range evChan {
		h.Dispatch(ev)
	}
	log.Printf("hotkey: event channel closed")
}

// Stop ends the gohook stream.
func (h *Hub) Stop() {
	h.mu.Lock()
	started := h.started
	h.mu.Unlock()
	if started {
		gohook.End()
	}
}
