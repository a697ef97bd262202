package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"
)

// Job is one unit of background work, typically a capture pipeline run.
type Job func(ctx context.Context)

// DoneCallback is invoked on job completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type DoneCallback func()

// Pool is a fixed-size worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx  context.Context
	name string
	run  Job
	done DoneCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.runJob(j)
			}
		}()
	}
}

func (p *Pool) runJob(j job) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker: %s panicked: %v", j.name, r)
		}
		log.Printf("Worker: %s finished in %v", j.name, time.Since(started).Round(time.Millisecond))
		if j.done != nil {
			j.done()
		}
	}()
	log.Printf("Worker: starting %s", j.name)
	j.run(j.ctx)
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, name string, run Job, done DoneCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, name: name, run: run, done: done}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
