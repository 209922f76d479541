package api

// ExecutionKind classifies how a step invocation was scheduled.
type ExecutionKind string

const (
	KindSequential ExecutionKind = "sequential"
	KindParallel   ExecutionKind = "parallel"
	KindBranch     ExecutionKind = "branch"
)

// ExecutionContext is the metadata record threaded through every step
// invocation. It exists for observability only: the scheduler carries
// it into Observer callbacks and ExecutionRecords but never reads it
// back for control decisions.
type ExecutionContext struct {
	// ParentStepID is set when execution happens inside a nested
	// workflow; it holds the child workflow's ID.
	ParentStepID string

	// ExecutionGroup correlates the members of one parallel or branch
	// batch. Empty outside a batch.
	ExecutionGroup string

	// Kind is how the current invocation was scheduled.
	Kind ExecutionKind

	// Depth is the nesting level, 0 at the top-level workflow.
	Depth int
}

// forChild derives the context for a nested workflow entry.
func (c ExecutionContext) forChild(workflowID string) ExecutionContext {
	child := c
	child.ParentStepID = workflowID
	child.Depth = c.Depth + 1
	return child
}

// forGroup derives the context shared by all members of one batch.
func (c ExecutionContext) forGroup(kind ExecutionKind, group string) ExecutionContext {
	batch := c
	batch.ExecutionGroup = group
	batch.Kind = kind
	return batch
}
