package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingExpirer struct {
	calls atomic.Int32
	err   error
}

func (e *countingExpirer) ExpireIdle(context.Context) (int, error) {
	e.calls.Add(1)
	return 1, e.err
}

func TestCleanerRunsImmediatelyAndOnTick(t *testing.T) {
	exp := &countingExpirer{}
	c := NewCleaner(exp, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	deadline := time.After(2 * time.Second)
	for exp.calls.Load() < 3 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("calls = %d, want at least 3", exp.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	c.Wait()
}

func TestCleanerSurvivesErrors(t *testing.T) {
	exp := &countingExpirer{err: errors.New("db down")}
	c := NewCleaner(exp, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)

	deadline := time.After(2 * time.Second)
	for exp.calls.Load() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatalf("calls = %d, want at least 2", exp.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	c.Wait()
}

func TestNewCleanerDefaultInterval(t *testing.T) {
	c := NewCleaner(&countingExpirer{}, 0)
	if c.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", c.interval)
	}
}
