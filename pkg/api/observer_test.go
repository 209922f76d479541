package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestBasicMetrics_CountsLifecycle(t *testing.T) {
	t.Parallel()

	m := &BasicMetrics{}
	ctx := context.Background()
	info := WorkflowInfo{ID: "wf", RunID: "run"}
	ec := ExecutionContext{Kind: KindSequential}

	m.OnWorkflowStart(ctx, info)
	m.OnStepCompleted(ctx, info, "a", ec, 1, nil, 10*time.Millisecond)
	m.OnStepCompleted(ctx, info, "b", ec, 1, errors.New("boom"), time.Millisecond)
	m.OnStepCompleted(ctx, info, "b", ec, 2, nil, 20*time.Millisecond)
	m.OnWorkflowCompleted(ctx, info, nil)

	snap := m.Snapshot()
	if snap.WorkflowsStarted != 1 || snap.WorkflowsCompleted != 1 || snap.WorkflowsFailed != 0 {
		t.Fatalf("unexpected workflow counters: %+v", snap)
	}
	if snap.StepsCompleted != 2 {
		t.Fatalf("expected 2 completed steps, got %d", snap.StepsCompleted)
	}
	if snap.StepRetries != 1 {
		t.Fatalf("expected 1 retry, got %d", snap.StepRetries)
	}
	if snap.AvgStepDuration != 15*time.Millisecond {
		t.Fatalf("expected 15ms average, got %v", snap.AvgStepDuration)
	}
}

func TestBasicMetrics_CountsFailedRun(t *testing.T) {
	t.Parallel()

	m := &BasicMetrics{}
	_, err := New(WithObserver(m), WithRetries(0)).
		AddStep(NewStep(StepConfig{
			ID: "doomed",
			Run: func(ctx context.Context, req *Request) (any, error) {
				return nil, errors.New("boom")
			},
		})).
		Run(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected failure")
	}

	snap := m.Snapshot()
	if snap.WorkflowsFailed != 1 || snap.WorkflowsCompleted != 0 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.StepsCompleted != 0 {
		t.Fatalf("failed attempts must not count as completed: %+v", snap)
	}
}

func TestCompositeObserver_FansOut(t *testing.T) {
	t.Parallel()

	a := &BasicMetrics{}
	b := &BasicMetrics{}
	obs := NewCompositeObserver(a, nil, b)

	_, err := New(WithObserver(obs)).
		AddStep(constStep("only", 1)).
		Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Snapshot().StepsCompleted != 1 || b.Snapshot().StepsCompleted != 1 {
		t.Fatalf("both observers must see the step")
	}
}

func TestCompositeObserver_CollapsesTrivialCases(t *testing.T) {
	t.Parallel()

	if _, ok := NewCompositeObserver().(NoopObserver); !ok {
		t.Fatalf("empty composite must collapse to noop")
	}

	m := &BasicMetrics{}
	if NewCompositeObserver(nil, m) != Observer(m) {
		t.Fatalf("single-member composite must collapse to the member")
	}
}

func TestLoggingObserver_EmitsStructuredEvents(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(WithObserver(NewLoggingObserver(logger)), WithID("logged-wf")).
		AddStep(constStep("noisy", 1)).
		Run(context.Background(), nil, WithRunID("log-run"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"workflow_start", "step_start", "step_completed", "workflow_completed", "run_id=log-run", "step=noisy"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}
