package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTaskRunsImmediatelyAndRepeats(t *testing.T) {
	var runs atomic.Int64
	task := New("test", 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer task.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 3 {
		t.Errorf("runs = %d, want at least 3", runs.Load())
	}
}

func TestTaskDoubleStartFails(t *testing.T) {
	task := New("test", time.Hour, func(context.Context) {})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer task.Stop()

	if err := task.Start(context.Background()); err == nil {
		t.Fatal("second Start succeeded, want error")
	}
}

func TestTaskTicksNeverOverlap(t *testing.T) {
	var active, maxActive atomic.Int64
	task := New("test", time.Millisecond, func(context.Context) {
		cur := active.Add(1)
		if cur > maxActive.Load() {
			maxActive.Store(cur)
		}
		time.Sleep(5 * time.Millisecond) // overrun the interval
		active.Add(-1)
	})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	task.Stop()

	if maxActive.Load() > 1 {
		t.Errorf("max concurrent ticks = %d, want 1", maxActive.Load())
	}
}

func TestTaskStopWaitsForTick(t *testing.T) {
	finished := make(chan struct{})
	task := New("test", time.Hour, func(context.Context) {
		time.Sleep(20 * time.Millisecond)
		close(finished)
	})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	time.Sleep(5 * time.Millisecond) // let the first tick begin
	task.Stop()
	select {
	case <-finished:
	default:
		t.Error("Stop returned before the running tick finished")
	}
}

func TestTaskStopTwiceIsSafe(t *testing.T) {
	task := New("test", time.Hour, func(context.Context) {})
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	task.Stop()
	task.Stop()
}

func TestTaskChangeInterval(t *testing.T) {
	var runs atomic.Int64
	task := New("test", time.Hour, func(context.Context) {
		runs.Add(1)
	})
	task.ChangeInterval(5 * time.Millisecond)
	if err := task.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer task.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Errorf("runs = %d, want at least 2 after shortening the interval", runs.Load())
	}
}
