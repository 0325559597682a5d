// Package schedule runs periodic tasks with strictly non-overlapping
// ticks. A tick that overruns its interval is followed immediately by the
// next one; skipped ticks are never queued.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dhawton/log4g"
)

var log = log4g.Category("schedule")

// Task drives one periodic function. Start it once; Stop before
// restarting.
type Task struct {
	name string
	fn   func(context.Context)

	mu       sync.Mutex
	interval time.Duration
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

// New creates a task. fn runs once immediately on Start, then every
// interval measured from tick end.
func New(name string, interval time.Duration, fn func(context.Context)) *Task {
	return &Task{name: name, interval: interval, fn: fn}
}

// Start launches the task loop. Starting an already-running task is an
// error.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return fmt.Errorf("task %s already started", t.name)
	}
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.loop(ctx, t.stop, t.done)
	log.Info(fmt.Sprintf("task %s started, interval %s", t.name, t.interval))
	return nil
}

// Stop halts the task and waits for the current tick to finish.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	stop, done := t.stop, t.done
	t.running = false
	t.mu.Unlock()

	close(stop)
	<-done
	log.Info("task " + t.name + " stopped")
}

// ChangeInterval adjusts the wait before the next tick. Takes effect after
// the current wait expires.
func (t *Task) ChangeInterval(d time.Duration) {
	t.mu.Lock()
	t.interval = d
	t.mu.Unlock()
}

func (t *Task) currentInterval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// loop runs the tick, then waits. Because the wait starts after the tick
// returns, ticks can never overlap and an overrun simply delays the next
// tick rather than stacking them.
func (t *Task) loop(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		t.fn(ctx)

		timer := time.NewTimer(t.currentInterval())
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
