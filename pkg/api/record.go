package api

import (
	"context"
	"time"
)

// ExecutionStatus is the outcome of one step attempt.
type ExecutionStatus string

const (
	// StatusCompleted marks a successful attempt.
	StatusCompleted ExecutionStatus = "COMPLETED"
	// StatusFailed marks a failed attempt.
	StatusFailed ExecutionStatus = "FAILED"
	// StatusHandled marks a step whose final failure was absorbed by
	// its OnError handler.
	StatusHandled ExecutionStatus = "HANDLED"
)

// ExecutionRecord is one row of the execution log. The engine emits a
// record per step attempt, after the attempt's result is known.
type ExecutionRecord struct {
	RunID      string
	WorkflowID string
	ProjectID  string
	StepID     string

	// Propagated ExecutionContext.
	ParentStepID   string
	ExecutionGroup string
	Kind           ExecutionKind
	Depth          int

	Attempt   int
	Status    ExecutionStatus
	Error     string
	Output    any
	Duration  time.Duration
	StartedAt time.Time
}

// Key is the hierarchical lookup key for this record.
func (r *ExecutionRecord) Key() string {
	return r.RunID + ":" + r.StepID
}

// Recorder is an append-only sink for execution records. Record returns
// an opaque identifier for the stored record.
//
// The engine calls Record after a step's result is already known; a
// slow or failing sink never alters the step's outcome. Sink errors are
// logged and dropped.
type Recorder interface {
	Record(ctx context.Context, rec *ExecutionRecord) (string, error)
}

// RecordLookup is an optional extension of Recorder for sinks that can
// look a record back up by its key (see ExecutionRecord.Key). When
// multiple records share a key, the most recent one is returned.
type RecordLookup interface {
	Lookup(ctx context.Context, key string) (*ExecutionRecord, error)
}
