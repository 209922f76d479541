package runner

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRun_ResultsInTaskOrder(t *testing.T) {
	t.Parallel()

	tasks := []Task{
		func(ctx context.Context) (any, error) {
			time.Sleep(10 * time.Millisecond)
			return "slow", nil
		},
		func(ctx context.Context) (any, error) {
			return "fast", nil
		},
	}

	results, err := Run(context.Background(), 0, tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0] != "slow" || results[1] != "fast" {
		t.Fatalf("results not in task order: %v", results)
	}
}

func TestRun_EmptyTasks(t *testing.T) {
	t.Parallel()

	results, err := Run(context.Background(), 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %v", results)
	}
}

func TestRun_LimitBoundsInFlight(t *testing.T) {
	t.Parallel()

	const limit = 2
	var inflight, peak atomic.Int64

	tasks := make([]Task, 8)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (any, error) {
			n := inflight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inflight.Add(-1)
			return nil, nil
		}
	}

	if _, err := Run(context.Background(), limit, tasks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak.Load() > limit {
		t.Fatalf("observed %d in flight, limit is %d", peak.Load(), limit)
	}
}

func TestRun_FirstErrorReturnsEarly(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("boom")
	release := make(chan struct{})
	var straggler atomic.Bool

	tasks := []Task{
		func(ctx context.Context) (any, error) {
			return nil, sentinel
		},
		func(ctx context.Context) (any, error) {
			<-release
			straggler.Store(true)
			return "late", nil
		},
	}

	start := time.Now()
	_, err := Run(context.Background(), 0, tasks)
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("Run must not wait for the straggler")
	}
	if straggler.Load() {
		t.Fatalf("straggler finished before Run returned")
	}

	// The straggler keeps running in the background; let it drain.
	close(release)
}

func TestRun_ErrorOnLastCompletion(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("tail failure")
	tasks := []Task{
		func(ctx context.Context) (any, error) { return 1, nil },
		func(ctx context.Context) (any, error) { return nil, sentinel },
	}

	if _, err := Run(context.Background(), 1, tasks); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel even when failure settles last, got %v", err)
	}
}
