package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// WorkflowInfo identifies a running workflow for observer callbacks.
type WorkflowInfo struct {
	ID        string
	RunID     string
	ProjectID string
}

// Observer receives callbacks from the engine for logging and metrics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay workflow execution.
type Observer interface {
	// OnWorkflowStart is called once per Run, before the first
	// operation executes. Nested workflows report their own start with
	// the composed run ID.
	OnWorkflowStart(ctx context.Context, info WorkflowInfo)

	// OnWorkflowCompleted is called when a run finishes successfully.
	OnWorkflowCompleted(ctx context.Context, info WorkflowInfo, output any)

	// OnWorkflowFailed is called when a run fails.
	OnWorkflowFailed(ctx context.Context, info WorkflowInfo, err error)

	// OnStepStart is called before each step attempt.
	OnStepStart(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int)

	// OnStepCompleted is called after each step attempt, for both
	// successes and failures (err != nil).
	OnStepCompleted(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int, err error, duration time.Duration)
}

// NoopObserver is an Observer that does nothing. It is the default when
// no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnWorkflowStart(ctx context.Context, info WorkflowInfo)                 {}
func (NoopObserver) OnWorkflowCompleted(ctx context.Context, info WorkflowInfo, output any) {}
func (NoopObserver) OnWorkflowFailed(ctx context.Context, info WorkflowInfo, err error)     {}
func (NoopObserver) OnStepStart(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int) {
}
func (NoopObserver) OnStepCompleted(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int, err error, d time.Duration) {
}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnWorkflowStart(ctx context.Context, info WorkflowInfo) {
	for _, o := range c.observers {
		o.OnWorkflowStart(ctx, info)
	}
}

func (c *CompositeObserver) OnWorkflowCompleted(ctx context.Context, info WorkflowInfo, output any) {
	for _, o := range c.observers {
		o.OnWorkflowCompleted(ctx, info, output)
	}
}

func (c *CompositeObserver) OnWorkflowFailed(ctx context.Context, info WorkflowInfo, err error) {
	for _, o := range c.observers {
		o.OnWorkflowFailed(ctx, info, err)
	}
}

func (c *CompositeObserver) OnStepStart(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int) {
	for _, o := range c.observers {
		o.OnStepStart(ctx, info, stepID, ec, attempt)
	}
}

func (c *CompositeObserver) OnStepCompleted(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int, err error, d time.Duration) {
	for _, o := range c.observers {
		o.OnStepCompleted(ctx, info, stepID, ec, attempt, err, d)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs workflow and step
// lifecycle events with the provided slog.Logger. If logger is nil,
// slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnWorkflowStart(ctx context.Context, info WorkflowInfo) {
	o.Logger.InfoContext(ctx, "workflow_start",
		slog.String("workflow", info.ID),
		slog.String("run_id", info.RunID),
		slog.String("project_id", info.ProjectID),
	)
}

func (o *LoggingObserver) OnWorkflowCompleted(ctx context.Context, info WorkflowInfo, output any) {
	o.Logger.InfoContext(ctx, "workflow_completed",
		slog.String("workflow", info.ID),
		slog.String("run_id", info.RunID),
	)
}

func (o *LoggingObserver) OnWorkflowFailed(ctx context.Context, info WorkflowInfo, err error) {
	o.Logger.ErrorContext(ctx, "workflow_failed",
		slog.String("workflow", info.ID),
		slog.String("run_id", info.RunID),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnStepStart(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int) {
	o.Logger.DebugContext(ctx, "step_start",
		slog.String("workflow", info.ID),
		slog.String("run_id", info.RunID),
		slog.String("step", stepID),
		slog.Int("attempt", attempt),
		slog.String("execution_group", ec.ExecutionGroup),
		slog.String("kind", string(ec.Kind)),
		slog.Int("depth", ec.Depth),
	)
}

func (o *LoggingObserver) OnStepCompleted(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int, err error, d time.Duration) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "step_completed",
		slog.String("workflow", info.ID),
		slog.String("run_id", info.RunID),
		slog.String("step", stepID),
		slog.Int("attempt", attempt),
		slog.String("execution_group", ec.ExecutionGroup),
		slog.String("kind", string(ec.Kind)),
		slog.Int("depth", ec.Depth),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

// BasicMetrics collects simple counters and aggregate step durations.
// It implements Observer and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	workflowsStarted   atomic.Int64
	workflowsCompleted atomic.Int64
	workflowsFailed    atomic.Int64
	stepsCompleted     atomic.Int64
	stepRetries        atomic.Int64
	totalStepDuration  atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	WorkflowsStarted   int64
	WorkflowsCompleted int64
	WorkflowsFailed    int64

	StepsCompleted  int64
	StepRetries     int64
	AvgStepDuration time.Duration
}

func (m *BasicMetrics) OnWorkflowStart(ctx context.Context, info WorkflowInfo) {
	m.workflowsStarted.Add(1)
}

func (m *BasicMetrics) OnWorkflowCompleted(ctx context.Context, info WorkflowInfo, output any) {
	m.workflowsCompleted.Add(1)
}

func (m *BasicMetrics) OnWorkflowFailed(ctx context.Context, info WorkflowInfo, err error) {
	m.workflowsFailed.Add(1)
}

func (m *BasicMetrics) OnStepCompleted(ctx context.Context, info WorkflowInfo, stepID string, ec ExecutionContext, attempt int, err error, d time.Duration) {
	if attempt > 1 {
		m.stepRetries.Add(1)
	}
	// Only successful attempts count toward the average duration.
	if err == nil {
		m.stepsCompleted.Add(1)
		m.totalStepDuration.Add(d.Nanoseconds())
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	steps := m.stepsCompleted.Load()
	totalNs := m.totalStepDuration.Load()

	var avg time.Duration
	if steps > 0 {
		avg = time.Duration(totalNs / steps)
	}

	return BasicMetricsSnapshot{
		WorkflowsStarted:   m.workflowsStarted.Load(),
		WorkflowsCompleted: m.workflowsCompleted.Load(),
		WorkflowsFailed:    m.workflowsFailed.Load(),
		StepsCompleted:     steps,
		StepRetries:        m.stepRetries.Load(),
		AvgStepDuration:    avg,
	}
}
