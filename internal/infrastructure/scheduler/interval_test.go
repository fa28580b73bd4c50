package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewIntervalSchedulerRejectsZero(t *testing.T) {
	t.Parallel()

	if _, err := NewIntervalScheduler(0, nil); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	s, err := NewIntervalScheduler(10*time.Millisecond, time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	var calls atomic.Int32
	fired := make(chan struct{}, 16)
	job := func(time.Time) {
		calls.Add(1)
		select {
		case fired <- struct{}{}:
		default:
		}
	}

	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("start: %v", err)
	}
	// second Start must not spawn another loop
	if err := s.Start(context.Background(), job); err != nil {
		t.Fatalf("second start: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("job fired %d times, want at least 3", calls.Load())
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("job kept running after Stop")
	}
}

func TestIntervalSchedulerStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	s, err := NewIntervalScheduler(time.Hour, nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan time.Time, 1)
	if err := s.Start(ctx, func(t time.Time) { first <- t }); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case got := <-first:
		if got.Location() != time.UTC {
			t.Fatalf("trigger location = %v, want UTC", got.Location())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not run on start")
	}

	cancel()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop after cancel: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
