package api

import (
	"errors"
	"fmt"
)

// ValidationError reports a value that failed a declared input, output,
// or workflow-input contract. It travels through the same retry and
// OnError path as an executor failure.
type ValidationError struct {
	// Contract names the boundary that rejected the value:
	// "input", "output", or "workflow input".
	Contract string
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Contract, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for the given contract.
func NewValidationError(contract string, err error) error {
	return &ValidationError{Contract: contract, Err: err}
}

// AsValidationError returns the ValidationError in err's chain, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// StepExecutionError is raised when a step exhausts its attempts and has
// no OnError handler. Path is the hierarchical run identifier
// (runID, extended with "->childWorkflowID" segments across nesting).
type StepExecutionError struct {
	Path   string
	StepID string
	Err    error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("Step '%s:%s' failed: %s", e.Path, e.StepID, e.Err)
}

func (e *StepExecutionError) Unwrap() error { return e.Err }

// AsStepExecutionError returns the StepExecutionError in err's chain, if any.
func AsStepExecutionError(err error) (*StepExecutionError, bool) {
	var s *StepExecutionError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}

// NestedWorkflowError marks a failure that escaped a nested workflow's
// run. It is re-raised to the parent unconditionally; a parent-side
// OnError never absorbs it. Error containment for nested workflows must
// happen inside the child.
//
// The message is the child failure's message unchanged, so the
// hierarchical path assembled by the child survives to the top-level
// caller.
type NestedWorkflowError struct {
	WorkflowID string
	Err        error
}

func (e *NestedWorkflowError) Error() string { return e.Err.Error() }

func (e *NestedWorkflowError) Unwrap() error { return e.Err }

// AsNestedWorkflowError returns the NestedWorkflowError in err's chain, if any.
func AsNestedWorkflowError(err error) (*NestedWorkflowError, bool) {
	var n *NestedWorkflowError
	if errors.As(err, &n) {
		return n, true
	}
	return nil, false
}
