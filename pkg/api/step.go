package api

import (
	"context"
	"fmt"
)

// Request carries everything an executor receives besides the
// context.Context: the validated input value, the lent State handle,
// the configured RemoteClient, and the propagated ExecutionContext.
type Request struct {
	Input  any
	State  *State
	Client RemoteClient

	// Context is observability metadata; executors may log it but the
	// engine never reads it back.
	Context ExecutionContext
}

// Executor is the unit of work inside a Step.
type Executor func(ctx context.Context, req *Request) (any, error)

// ErrorHandler absorbs a step's final failure. It receives the error
// that exhausted the attempts, the step's input, and the shared state
// at the time of failure. Registering a handler changes failure
// semantics: the workflow continues with a nil contribution from the
// step instead of failing the run.
type ErrorHandler func(ctx context.Context, err error, input any, state *State)

// StepConfig describes a Step.
type StepConfig struct {
	// ID must be unique within a workflow; uniqueness is not enforced,
	// and duplicate IDs inside one batch overwrite each other's result
	// key (last write wins).
	ID string

	// Input and Output validate the executor's input and output. Either
	// may be nil, in which case the value passes through unchecked.
	Input  Validator
	Output Validator

	// Run is the executor. Required.
	Run Executor

	// OnError, if set, absorbs the step's final failure.
	OnError ErrorHandler
}

// Step is an immutable unit of work. Construct it once with NewStep;
// it may then be referenced by any number of workflow operations.
type Step struct {
	id      string
	input   Validator
	output  Validator
	run     Executor
	onError ErrorHandler
}

// NewStep packages the config into a Step. No execution happens here;
// validation is applied by the engine around each executor invocation.
func NewStep(cfg StepConfig) *Step {
	if cfg.ID == "" {
		panic("mule: step ID must not be empty")
	}
	if cfg.Run == nil {
		panic(fmt.Sprintf("mule: step %q has nil executor", cfg.ID))
	}
	return &Step{
		id:      cfg.ID,
		input:   cfg.Input,
		output:  cfg.Output,
		run:     cfg.Run,
		onError: cfg.OnError,
	}
}

// ID returns the step identifier.
func (s *Step) ID() string { return s.id }

func (s *Step) operandID() string { return s.id }
func (s *Step) isOperand()        {}
