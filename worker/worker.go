package worker

import (
	"runtime"
	"sync"

	"github.com/getsentry/sentry-go"
)

// Pool runs submitted functions on a fixed set of goroutines. A panicking job is reported to
// sentry and does not take its goroutine down.
type Pool struct {
	queue chan func()
	jobs  sync.WaitGroup
	done  sync.WaitGroup
	once  sync.Once
}

// New starts a pool of n goroutines with a queue of n pending jobs. n below 1 uses the number
// of CPUs.
func New(n int) *Pool {
	return NewBuffered(n, n)
}

// NewBuffered starts a pool of n goroutines that queues up to size jobs before Submit blocks.
func NewBuffered(n, size int) *Pool {
	if n < 1 {
		n = runtime.NumCPU()
	}
	p := &Pool{queue: make(chan func(), max(size, 0))}
	p.done.Add(n)
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.done.Done()
	for f := range p.queue {
		p.run(f)
	}
}

func (p *Pool) run(f func()) {
	defer p.jobs.Done()
	defer sentry.Recover()
	f()
}

// Submit queues f. It blocks while every goroutine is busy and the queue is full.
func (p *Pool) Submit(f func()) {
	p.jobs.Add(1)
	p.queue <- f
}

// TrySubmit queues f unless the queue is full. It never blocks and returns false if f was
// dropped.
func (p *Pool) TrySubmit(f func()) bool {
	p.jobs.Add(1)
	select {
	case p.queue <- f:
		return true
	default:
		p.jobs.Done()
		return false
	}
}

// Wait blocks until every submitted function has returned.
func (p *Pool) Wait() {
	p.jobs.Wait()
}

// Close waits for queued functions and stops the goroutines. Submit must not be called afterwards.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.queue)
		p.done.Wait()
	})
}

var defaultPool = New(runtime.NumCPU())

// Submit queues f on the shared pool. To be used by a function that may be CPU or IO intensive.
func Submit(f func()) {
	defaultPool.Submit(f)
}
