// Package mule provides a small in-process workflow orchestrator for Go.
//
// Mule composes typed steps into workflows that run sequentially, in
// parallel batches, or through conditional branches, share one mutable
// state bag, and nest recursively: a workflow can be used as a step
// inside another workflow. It runs fully in Go with no external
// infrastructure; the only optional persistence is an append-only
// SQLite execution log.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Step
//  2. Workflow
//  3. State
//  4. ExecutionContext
//  5. Recorder / Observer
//
// # Step
//
// A Step is an immutable unit of work: an identifier, optional input
// and output validators, an executor, and an optional error handler.
// Validation is applied by the engine around each executor invocation;
// a rejected value surfaces exactly like an executor failure.
//
//	greet := mule.NewStep(mule.StepConfig{
//		ID: "greet",
//		Run: func(ctx context.Context, req *mule.Request) (any, error) {
//			return "Hello, World!", nil
//		},
//	})
//
// Registering an OnError handler changes failure semantics: after the
// retry budget is exhausted, the handler absorbs the error and the
// workflow continues with a nil contribution from the step.
//
// # Workflow
//
// A Workflow is built fluently and executed with Run. Each operation's
// output is threaded into the next operation as input; the final output
// is returned.
//
//	wf := mule.New(mule.WithID("greeting")).
//		AddStep(greet).
//		Parallel(countChars, countWords).
//		Branch(
//			mule.When(celebrate, func(v any) bool { return isLong(v) }),
//		)
//
//	out, err := wf.Run(ctx, nil)
//
// Parallel members all receive the same input and settle into a map
// keyed by member ID. Branch predicates select which arms run; zero
// matches yields an empty map and is normal control flow.
//
// Workflows nest: pass a *Workflow wherever an Operand is accepted.
// The child borrows the parent's state bag for the duration of its run
// and reports under a composed run ID (parentRunID->childWorkflowID).
// Failures inside a nested workflow always propagate to the parent;
// containment must happen inside the child.
//
// # State
//
// Every step is lent the workflow's shared State handle and mutates it
// through shallow merges:
//
//	req.State.Set(map[string]any{"counter": 1})
//
// State resets to the workflow's default template at the start of each
// Run, so reusing a Workflow instance never leaks state between runs.
//
// # Tunables
//
// Two environment variables, read once per process, control the retry
// and concurrency behavior: MULE_STEP_RETRIES (default 1, so two total
// attempts per step) and MULE_STEP_CONCURRENCY (per-batch cap on
// in-flight members, unset means unlimited). WithRetries and
// WithConcurrency override them per workflow.
//
// # Observability
//
// Observers receive workflow and step lifecycle events; use
// NewLoggingObserver for structured slog output or BasicMetrics for
// counters. A Recorder persists one ExecutionRecord per step attempt;
// NewSQLiteRecorder stores them in SQLite, NewMemoryRecorder keeps them
// in memory. Both carry the propagated ExecutionContext (parent step,
// execution group, kind, depth) for correlation. Recording never
// affects control flow: a failing sink is logged and ignored.
package mule
