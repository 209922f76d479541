package mule

import (
	"context"
	"fmt"

	"github.com/mulelabs/mule/pkg/api"
)

// TypeOf returns a Validator that requires values assignable to T.
func TypeOf[T any]() Validator {
	return api.TypeOf[T]()
}

// Typed wraps a strongly-typed function into an Executor. The input is
// asserted to I before the function runs; a mismatch fails the attempt
// like any other executor error.
//
// Example:
//
//	mule.Typed(func(ctx context.Context, name string, req *mule.Request) (int, error) {
//		return len(name), nil
//	})
func Typed[I, O any](fn func(ctx context.Context, in I, req *Request) (O, error)) Executor {
	return func(ctx context.Context, req *Request) (any, error) {
		in, ok := req.Input.(I)
		if !ok {
			var zero I
			return nil, fmt.Errorf("expected %T input, got %T", zero, req.Input)
		}
		return fn(ctx, in, req)
	}
}

// TypedStep builds a Step whose input and output contracts are the
// type parameters themselves.
func TypedStep[I, O any](id string, fn func(ctx context.Context, in I, req *Request) (O, error)) *Step {
	return NewStep(StepConfig{
		ID:     id,
		Input:  TypeOf[I](),
		Output: TypeOf[O](),
		Run:    Typed(fn),
	})
}

// When pairs a step with its predicate for use with Workflow.Branch.
func When(step *Step, pred Predicate) BranchArm {
	return BranchArm{Step: step, When: pred}
}
