package mule

import (
	"github.com/mulelabs/mule/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Workflow         = api.Workflow
	Step             = api.Step
	StepConfig       = api.StepConfig
	Request          = api.Request
	Executor         = api.Executor
	ErrorHandler     = api.ErrorHandler
	Operand          = api.Operand
	BranchArm        = api.BranchArm
	Predicate        = api.Predicate
	State            = api.State
	Validator        = api.Validator
	ValidatorFunc    = api.ValidatorFunc
	RemoteClient     = api.RemoteClient
	RemoteClientFunc = api.RemoteClientFunc

	ExecutionContext = api.ExecutionContext
	ExecutionKind    = api.ExecutionKind
	ExecutionRecord  = api.ExecutionRecord
	ExecutionStatus  = api.ExecutionStatus
	Recorder         = api.Recorder
	RecordLookup     = api.RecordLookup
	WorkflowInfo     = api.WorkflowInfo

	Observer             = api.Observer
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot

	Option    = api.Option
	RunOption = api.RunOption

	ValidationError     = api.ValidationError
	StepExecutionError  = api.StepExecutionError
	NestedWorkflowError = api.NestedWorkflowError
)

// Re-export execution kinds and statuses for convenience.

const (
	KindSequential = api.KindSequential
	KindParallel   = api.KindParallel
	KindBranch     = api.KindBranch

	StatusCompleted = api.StatusCompleted
	StatusFailed    = api.StatusFailed
	StatusHandled   = api.StatusHandled
)

// Constructors and options.

var (
	New     = api.New
	NewStep = api.NewStep

	WithID           = api.WithID
	WithProjectID    = api.WithProjectID
	WithInput        = api.WithInput
	WithDefaultState = api.WithDefaultState
	WithObserver     = api.WithObserver
	WithRecorder     = api.WithRecorder
	WithClient       = api.WithClient
	WithLogger       = api.WithLogger
	WithRetries      = api.WithRetries
	WithConcurrency  = api.WithConcurrency

	WithRunID = api.WithRunID
	WithState = api.WithState

	NewValidationError = api.NewValidationError
	NonNil             = api.NonNil

	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver

	AsValidationError     = api.AsValidationError
	AsStepExecutionError  = api.AsStepExecutionError
	AsNestedWorkflowError = api.AsNestedWorkflowError

	StepRetries     = api.StepRetries
	StepConcurrency = api.StepConcurrency
)
