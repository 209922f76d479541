package api

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestBranch_NoMatchYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	var invoked atomic.Int64
	arm := func(id string) *Step {
		return NewStep(StepConfig{
			ID: id,
			Run: func(ctx context.Context, req *Request) (any, error) {
				invoked.Add(1)
				return req.Input, nil
			},
		})
	}

	out, err := New().
		AddStep(constStep("seed", 5)).
		Branch(
			BranchArm{Step: arm("big"), When: func(v any) bool { return v.(int) > 10 }},
			BranchArm{Step: arm("small"), When: func(v any) bool { return v.(int) < 3 }},
		).
		Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", out)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
	if invoked.Load() != 0 {
		t.Fatalf("expected no executor invocations, got %d", invoked.Load())
	}
}

func TestBranch_MultipleMatchesRunAll(t *testing.T) {
	t.Parallel()

	branchStep1 := NewStep(StepConfig{
		ID: "branchStep1",
		Run: func(ctx context.Context, req *Request) (any, error) {
			return req.Input.(int) + 1, nil
		},
	})
	branchStep2 := NewStep(StepConfig{
		ID: "branchStep2",
		Run: func(ctx context.Context, req *Request) (any, error) {
			return req.Input.(int) * 2, nil
		},
	})

	out, err := New().
		AddStep(constStep("seed", 10)).
		Branch(
			BranchArm{Step: branchStep1, When: func(v any) bool { return v.(int) > 0 }},
			BranchArm{Step: branchStep2, When: func(v any) bool { return v.(int)%2 == 0 }},
		).
		Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := out.(map[string]any)
	if m["branchStep1"] != 11 {
		t.Fatalf("expected branchStep1=11, got %v", m["branchStep1"])
	}
	if m["branchStep2"] != 20 {
		t.Fatalf("expected branchStep2=20, got %v", m["branchStep2"])
	}
}

func TestBranch_SingleMatchRunsOnlySelected(t *testing.T) {
	t.Parallel()

	var unselected atomic.Int64

	out, err := New().
		AddStep(constStep("seed", 7)).
		Branch(
			BranchArm{Step: NewStep(StepConfig{
				ID: "odd",
				Run: func(ctx context.Context, req *Request) (any, error) {
					return "odd", nil
				},
			}), When: func(v any) bool { return v.(int)%2 == 1 }},
			BranchArm{Step: NewStep(StepConfig{
				ID: "even",
				Run: func(ctx context.Context, req *Request) (any, error) {
					unselected.Add(1)
					return "even", nil
				},
			}), When: func(v any) bool { return v.(int)%2 == 0 }},
		).
		Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := out.(map[string]any)
	if len(m) != 1 || m["odd"] != "odd" {
		t.Fatalf("expected only the odd arm, got %v", m)
	}
	if unselected.Load() != 0 {
		t.Fatalf("unselected arm must not execute")
	}
}

func TestBranch_NilPredicateNeverSelects(t *testing.T) {
	t.Parallel()

	out, err := New().
		AddStep(constStep("seed", 1)).
		Branch(BranchArm{Step: constStep("arm", "x")}).
		Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := out.(map[string]any); len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}
