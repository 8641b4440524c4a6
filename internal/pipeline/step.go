package pipeline

import (
	"context"
)

// Step is a single named stage of a load operation. Steps run strictly in
// order; each sees the shared operation state and reports progress through
// the broadcaster it was constructed with.
type Step interface {
	// ID returns the stable step identifier.
	ID() string

	// Name returns the human-readable step name.
	Name() string

	// Execute runs the step.
	Execute(ctx context.Context, state *OperationState) error
}

// BaseStep carries the identity shared by all step implementations.
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a step identity.
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the step ID.
func (b *BaseStep) ID() string {
	return b.id
}

// Name returns the step name.
func (b *BaseStep) Name() string {
	return b.name
}
