package worker

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsEveryJob(t *testing.T) {
	p := New(3)
	defer p.Close()

	var n atomic.Int32
	for i := 0; i < 100; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Wait()
	if n.Load() != 100 {
		t.Fatalf("expected 100 jobs to run, ran %d", n.Load())
	}
}

func TestPoolSurvivesPanics(t *testing.T) {
	p := New(1)
	defer p.Close()

	var ran atomic.Bool
	p.Submit(func() { panic("boom") })
	p.Submit(func() { ran.Store(true) })
	p.Wait()
	if !ran.Load() {
		t.Fatal("expected the pool to keep running after a panic")
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	p := New(2)
	var n atomic.Int32
	for i := 0; i < 10; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Close()
	p.Close()
	if n.Load() != 10 {
		t.Fatalf("expected queued jobs to finish before close returns, ran %d", n.Load())
	}
}

func TestSharedPool(t *testing.T) {
	done := make(chan struct{})
	Submit(func() { close(done) })
	<-done
}

func TestTrySubmitDropsWhenFull(t *testing.T) {
	p := NewBuffered(1, 1)
	defer p.Close()

	started, release := make(chan struct{}), make(chan struct{})
	p.Submit(func() {
		close(started)
		<-release
	})
	<-started

	var n atomic.Int32
	if !p.TrySubmit(func() { n.Add(1) }) {
		t.Fatal("expected the first job to fit in the queue")
	}
	if p.TrySubmit(func() { n.Add(1) }) {
		t.Fatal("expected a full queue to drop the job")
	}
	close(release)
	p.Wait()
	if n.Load() != 1 {
		t.Fatalf("expected exactly the queued job to run, ran %d", n.Load())
	}
}
