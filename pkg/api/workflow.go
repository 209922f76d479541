package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mulelabs/mule/internal/runner"
)

// Operand is anything that can occupy a slot in a workflow's operation
// list: a *Step or a nested *Workflow. The distinction is resolved once,
// at append time, into a tagged variant; the engine never inspects
// concrete types during execution.
type Operand interface {
	operandID() string
	isOperand()
}

// Predicate decides whether a branch arm runs, evaluated synchronously
// against the current last output before any arm executes.
type Predicate func(v any) bool

// BranchArm pairs a step with the predicate that selects it.
type BranchArm struct {
	Step *Step
	When Predicate
}

// operand is the resolved form of an Operand: exactly one field is set.
type operand struct {
	step     *Step
	workflow *Workflow
}

func (o operand) id() string {
	if o.workflow != nil {
		return o.workflow.id
	}
	return o.step.id
}

func resolveOperand(op Operand) operand {
	switch v := op.(type) {
	case *Step:
		return operand{step: v}
	case *Workflow:
		return operand{workflow: v}
	default:
		panic("mule: unknown operand type")
	}
}

// operation is the tagged union of composed operations. Execution
// resolves it with a type switch in exec.
type operation interface{ isOperation() }

type sequentialOp struct{ op operand }
type parallelOp struct{ members []operand }
type branchOp struct{ arms []BranchArm }

func (sequentialOp) isOperation() {}
func (parallelOp) isOperation()   {}
func (branchOp) isOperation()     {}

// Workflow is an ordered, composable sequence of steps, parallel
// batches, branch batches, and nested workflows sharing one state bag.
//
// Build it with New and the fluent AddStep/Parallel/Branch methods, then
// execute with Run. The builder is append-only and performs no
// execution. A Workflow holds per-run mutable registers (state, last
// output, run ID), so a single instance must not be run concurrently
// with itself, and must not appear twice in one parallel batch.
type Workflow struct {
	id        string
	projectID string
	ops       []operation
	defaults  map[string]any
	input     Validator

	observer Observer
	recorder Recorder
	client   RemoteClient
	logger   *slog.Logger

	// -1 means "defer to the environment tunable".
	retries     int
	concurrency int

	// Per-run registers.
	state      *State
	lastOutput any
	runID      string
	ec         ExecutionContext
}

// Option configures a Workflow at construction time.
type Option func(*Workflow)

// WithID sets the workflow identifier. A random UUID is generated when
// not supplied.
func WithID(id string) Option { return func(w *Workflow) { w.id = id } }

// WithProjectID tags execution records and logs with a project.
func WithProjectID(id string) Option { return func(w *Workflow) { w.projectID = id } }

// WithInput declares the workflow's input contract; the initial input
// passed to Run is validated against it.
func WithInput(v Validator) Option { return func(w *Workflow) { w.input = v } }

// WithDefaultState sets the state template each Run starts from.
func WithDefaultState(defaults map[string]any) Option {
	return func(w *Workflow) { w.defaults = defaults }
}

// WithObserver attaches an Observer for lifecycle events.
func WithObserver(o Observer) Option { return func(w *Workflow) { w.observer = o } }

// WithRecorder attaches the execution-record sink.
func WithRecorder(r Recorder) Option { return func(w *Workflow) { w.recorder = r } }

// WithClient sets the RemoteClient forwarded into every executor.
func WithClient(c RemoteClient) Option { return func(w *Workflow) { w.client = c } }

// WithLogger sets the logger used for engine-internal warnings, such as
// a failing record sink. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(w *Workflow) { w.logger = l } }

// WithRetries overrides the MULE_STEP_RETRIES tunable for this
// workflow. Negative values defer to the environment.
func WithRetries(n int) Option { return func(w *Workflow) { w.retries = n } }

// WithConcurrency overrides the MULE_STEP_CONCURRENCY tunable for this
// workflow's batches. Zero means unlimited; negative values defer to
// the environment.
func WithConcurrency(n int) Option { return func(w *Workflow) { w.concurrency = n } }

// New creates an empty workflow.
func New(opts ...Option) *Workflow {
	w := &Workflow{
		retries:     -1,
		concurrency: -1,
	}
	for _, o := range opts {
		o(w)
	}
	if w.id == "" {
		w.id = uuid.NewString()
	}
	w.state = NewState(w.defaults)
	return w
}

// ID returns the workflow identifier.
func (w *Workflow) ID() string { return w.id }

func (w *Workflow) operandID() string { return w.id }
func (w *Workflow) isOperand()        {}

// AddStep appends a sequential operation: execute the step or nested
// workflow with the current last output as input, then set the last
// output to its result.
func (w *Workflow) AddStep(op Operand) *Workflow {
	if op == nil {
		panic("mule: AddStep requires a step or workflow")
	}
	w.ops = append(w.ops, sequentialOp{op: resolveOperand(op)})
	return w
}

// Parallel appends a batch whose members all receive the current last
// output. Members run concurrently under one fresh execution group,
// bounded by the concurrency cap. The last output becomes a map keyed
// by member ID, assembled only after every member has settled; members
// with duplicate IDs overwrite each other's key, last one wins.
func (w *Workflow) Parallel(members ...Operand) *Workflow {
	resolved := make([]operand, len(members))
	for i, m := range members {
		if m == nil {
			panic("mule: Parallel requires non-nil members")
		}
		resolved[i] = resolveOperand(m)
	}
	w.ops = append(w.ops, parallelOp{members: resolved})
	return w
}

// Branch appends a conditional batch. Predicates are evaluated
// synchronously against the current last output before any execution;
// every arm whose predicate returns true runs, exactly like a parallel
// batch. Zero matches is normal control flow: the last output becomes
// an empty map and nothing executes. This is a filtered fan-out, not an
// exclusive branch.
func (w *Workflow) Branch(arms ...BranchArm) *Workflow {
	for _, arm := range arms {
		if arm.Step == nil {
			panic("mule: Branch arm requires a step")
		}
	}
	w.ops = append(w.ops, branchOp{arms: arms})
	return w
}

// GetState returns a snapshot of the shared state bag. It remains
// queryable after a failed run and reflects every mutation made before
// the failure.
func (w *Workflow) GetState() map[string]any {
	return w.state.Snapshot()
}

// runConfig carries per-run options.
type runConfig struct {
	runID string
	state map[string]any
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) RunOption { return func(c *runConfig) { c.runID = id } }

// WithState supplies initial state, merged over the workflow's default
// state template.
func WithState(initial map[string]any) RunOption {
	return func(c *runConfig) { c.state = initial }
}

// Run executes the operation list strictly in append order, threading
// each operation's output into the next as input, and returns the final
// last output.
//
// The state bag is reset to the default template (merged with any
// WithState initial state) at the start of every Run, so reusing a
// Workflow instance never leaks state between independent runs.
func (w *Workflow) Run(ctx context.Context, input any, opts ...RunOption) (any, error) {
	var cfg runConfig
	for _, o := range opts {
		o(&cfg)
	}

	runID := cfg.runID
	if runID == "" {
		runID = uuid.NewString()
	}

	w.state = NewState(w.defaults)
	if cfg.state != nil {
		w.state.Set(cfg.state)
	}
	w.runID = runID
	w.ec = ExecutionContext{Kind: KindSequential}

	return w.runOps(ctx, input)
}

// runNested is the nested-workflow entry: the child borrows the
// parent's state object and configuration instead of resetting its own.
// Configuration is inherited at the moment of invocation, not at
// construction.
func (w *Workflow) runNested(ctx context.Context, parent *Workflow, runID string, input any, st *State, ec ExecutionContext) (any, error) {
	w.projectID = parent.projectID
	w.observer = parent.observer
	w.recorder = parent.recorder
	w.client = parent.client
	w.logger = parent.logger

	w.state = st
	w.runID = runID
	w.ec = ec

	return w.runOps(ctx, input)
}

func (w *Workflow) runOps(ctx context.Context, input any) (any, error) {
	info := w.info()
	obs := w.obs()
	obs.OnWorkflowStart(ctx, info)

	if w.input != nil {
		v, err := w.input.Parse(input)
		if err != nil {
			err = NewValidationError("workflow input", err)
			obs.OnWorkflowFailed(ctx, info, err)
			return nil, err
		}
		input = v
	}
	w.lastOutput = input

	for _, op := range w.ops {
		if err := w.execOp(ctx, op); err != nil {
			obs.OnWorkflowFailed(ctx, info, err)
			return nil, err
		}
	}

	obs.OnWorkflowCompleted(ctx, info, w.lastOutput)
	return w.lastOutput, nil
}

// execOp runs one operation to completion, with a settled barrier
// before the next operation starts.
func (w *Workflow) execOp(ctx context.Context, op operation) error {
	switch op := op.(type) {
	case sequentialOp:
		out, err := w.invoke(ctx, op.op, w.lastOutput, w.ec)
		if err != nil {
			return err
		}
		if op.op.workflow != nil {
			// Re-alias so later siblings observe every mutation the
			// nested workflow made.
			w.state = op.op.workflow.state
		}
		w.lastOutput = out

	case parallelOp:
		out, err := w.runBatch(ctx, op.members, KindParallel)
		if err != nil {
			return err
		}
		w.lastOutput = out

	case branchOp:
		selected := make([]operand, 0, len(op.arms))
		for _, arm := range op.arms {
			if arm.When != nil && arm.When(w.lastOutput) {
				selected = append(selected, operand{step: arm.Step})
			}
		}
		out, err := w.runBatch(ctx, selected, KindBranch)
		if err != nil {
			return err
		}
		w.lastOutput = out
	}
	return nil
}

// runBatch executes the members concurrently through the bounded
// runner, all against the same input, and assembles the result map in
// member order once every member has settled. An unhandled member
// failure aborts the join immediately; in-flight siblings are not
// cancelled, they run to completion in the background and their results
// are discarded.
func (w *Workflow) runBatch(ctx context.Context, members []operand, kind ExecutionKind) (map[string]any, error) {
	out := make(map[string]any, len(members))
	if len(members) == 0 {
		return out, nil
	}

	ec := w.ec.forGroup(kind, uuid.NewString())
	input := w.lastOutput

	tasks := make([]runner.Task, len(members))
	for i, m := range members {
		tasks[i] = func(ctx context.Context) (any, error) {
			return w.invoke(ctx, m, input, ec)
		}
	}

	results, err := runner.Run(ctx, w.batchLimit(), tasks)
	if err != nil {
		return nil, err
	}
	for i, m := range members {
		out[m.id()] = results[i]
	}
	return out, nil
}

// invoke is the single funnel every step and nested workflow passes
// through: the retry ladder, validation, OnError absorption, and error
// construction all live here.
func (w *Workflow) invoke(ctx context.Context, op operand, input any, ec ExecutionContext) (any, error) {
	attempts := w.maxAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		out, err := w.attempt(ctx, op, input, ec, attempt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}

	if op.workflow != nil {
		// Nested failures re-raise unconditionally; containment must
		// happen inside the child.
		return nil, &NestedWorkflowError{WorkflowID: op.workflow.id, Err: lastErr}
	}

	step := op.step
	if step.onError != nil {
		step.onError(ctx, lastErr, input, w.state)
		w.record(ctx, step.id, ec, attempts, StatusHandled, lastErr, nil, 0, time.Now())
		return nil, nil
	}
	return nil, &StepExecutionError{Path: w.runID, StepID: step.id, Err: lastErr}
}

// attempt runs a single attempt of one operand.
func (w *Workflow) attempt(ctx context.Context, op operand, input any, ec ExecutionContext, attempt int) (any, error) {
	if op.workflow != nil {
		return w.attemptNested(ctx, op.workflow, input, ec, attempt)
	}

	step := op.step
	info := w.info()
	obs := w.obs()

	start := time.Now()
	obs.OnStepStart(ctx, info, step.id, ec, attempt)

	out, err := w.attemptStep(ctx, step, input, ec)

	d := time.Since(start)
	obs.OnStepCompleted(ctx, info, step.id, ec, attempt, err, d)

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	w.record(ctx, step.id, ec, attempt, status, err, out, d, start)
	return out, err
}

// attemptStep validates input, invokes the executor, and validates
// output, all inside the retried scope. A validator rejection surfaces
// identically to an executor failure.
func (w *Workflow) attemptStep(ctx context.Context, step *Step, input any, ec ExecutionContext) (any, error) {
	in := input
	if step.input != nil {
		v, err := step.input.Parse(in)
		if err != nil {
			return nil, NewValidationError("input", err)
		}
		in = v
	}

	out, err := step.run(ctx, &Request{
		Input:   in,
		State:   w.state,
		Client:  w.client,
		Context: ec,
	})
	if err != nil {
		return nil, err
	}

	if step.output != nil {
		v, err := step.output.Parse(out)
		if err != nil {
			return nil, NewValidationError("output", err)
		}
		out = v
	}
	return out, nil
}

// attemptNested runs one attempt of a whole nested workflow as a single
// retryable unit.
func (w *Workflow) attemptNested(ctx context.Context, child *Workflow, input any, ec ExecutionContext, attempt int) (any, error) {
	childEC := ec.forChild(child.id)
	childRunID := w.runID + "->" + child.id

	start := time.Now()
	out, err := child.runNested(ctx, w, childRunID, input, w.state, childEC)
	d := time.Since(start)

	status := StatusCompleted
	if err != nil {
		status = StatusFailed
	}
	// The nested run is logged as one unit under the child's ID; the
	// child's own steps log under the composed run ID.
	w.record(ctx, child.id, ec, attempt, status, err, out, d, start)
	return out, err
}

// record emits one execution record. Sink failures are logged and
// dropped; they never alter the step result.
func (w *Workflow) record(ctx context.Context, stepID string, ec ExecutionContext, attempt int, status ExecutionStatus, err error, output any, d time.Duration, started time.Time) {
	if w.recorder == nil {
		return
	}
	rec := &ExecutionRecord{
		RunID:          w.runID,
		WorkflowID:     w.id,
		ProjectID:      w.projectID,
		StepID:         stepID,
		ParentStepID:   ec.ParentStepID,
		ExecutionGroup: ec.ExecutionGroup,
		Kind:           ec.Kind,
		Depth:          ec.Depth,
		Attempt:        attempt,
		Status:         status,
		Output:         output,
		Duration:       d,
		StartedAt:      started,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if _, rerr := w.recorder.Record(ctx, rec); rerr != nil {
		w.log().WarnContext(ctx, "execution record dropped",
			slog.String("run_id", w.runID),
			slog.String("step", stepID),
			slog.Any("error", rerr),
		)
	}
}

func (w *Workflow) info() WorkflowInfo {
	return WorkflowInfo{ID: w.id, RunID: w.runID, ProjectID: w.projectID}
}

func (w *Workflow) obs() Observer {
	if w.observer != nil {
		return w.observer
	}
	return NoopObserver{}
}

func (w *Workflow) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return slog.Default()
}

func (w *Workflow) maxAttempts() int {
	retries := w.retries
	if retries < 0 {
		retries = StepRetries()
	}
	return 1 + retries
}

func (w *Workflow) batchLimit() int {
	if w.concurrency < 0 {
		return StepConcurrency()
	}
	return w.concurrency
}
