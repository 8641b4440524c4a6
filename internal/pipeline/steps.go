package pipeline

import (
	"context"
	"fmt"

	"espresso/internal/experiment"
)

// ValidateStep checks the session folder layout before anything is read:
// every FeedLog must have its MetaData companion, and FeedStats when no
// duration override was given.
type ValidateStep struct {
	BaseStep
	loader *experiment.Loader
}

// NewValidateStep creates the folder validation step.
func NewValidateStep(loader *experiment.Loader) *ValidateStep {
	return &ValidateStep{
		BaseStep: NewBaseStep(StepIDValidate, StepNameValidate),
		loader:   loader,
	}
}

// Execute validates the session folder and discovers its triplets.
func (s *ValidateStep) Execute(ctx context.Context, state *OperationState) error {
	return s.loader.Validate(ctx)
}

// ReadStep reads every discovered triplet: metadata, feedlog, padding and
// derived columns, reporting per-feedlog progress to the broadcaster.
type ReadStep struct {
	BaseStep
	loader      *experiment.Loader
	broadcaster *StatusBroadcaster
}

// NewReadStep creates the source reading step.
func NewReadStep(loader *experiment.Loader, broadcaster *StatusBroadcaster) *ReadStep {
	return &ReadStep{
		BaseStep:    NewBaseStep(StepIDRead, StepNameRead),
		loader:      loader,
		broadcaster: broadcaster,
	}
}

// Execute reads all triplets, streaming progress as each feedlog lands.
func (s *ReadStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStep(s.ID())
	var tracker *ProgressTracker

	return s.loader.ReadSources(ctx, func(done, total int, feedlog string) {
		if tracker == nil {
			tracker = NewProgressTracker(s.ID(), total)
		}
		message := fmt.Sprintf("Read %s (%d/%d)", feedlog, done, total)
		tracker.Update(done, message)
		_, _, percentage, _ := tracker.GetProgress()

		if stepState != nil {
			stepState.UpdateProgress(percentage, message)
			stepState.SetMetadata("feedlogs_read", done)
			stepState.SetMetadata("feedlogs_total", total)
		}
		if s.broadcaster != nil {
			s.broadcaster.UpdateStepWithMetadata(state.ID, s.ID(), int(percentage), message,
				map[string]interface{}{
					"feedlogs_read":  done,
					"feedlogs_total": total,
					"eta":            tracker.GetETA(),
				})
		}
	})
}

// AssembleStep builds the merged tables: food choice, normalization,
// categories, metadata merge, per-fly columns, sort, and finally the
// Experiment aggregate itself.
type AssembleStep struct {
	BaseStep
	loader *experiment.Loader
}

// NewAssembleStep creates the table assembly step.
func NewAssembleStep(loader *experiment.Loader) *AssembleStep {
	return &AssembleStep{
		BaseStep: NewBaseStep(StepIDAssemble, StepNameAssemble),
		loader:   loader,
	}
}

// Execute assembles the aggregate and records it on the operation state.
func (s *AssembleStep) Execute(ctx context.Context, state *OperationState) error {
	exp, err := s.loader.Assemble(ctx)
	if err != nil {
		return err
	}
	state.SetResult(exp)

	if stepState := state.GetStep(s.ID()); stepState != nil {
		stepState.SetMetadata("fly_count", exp.FlyCount())
		stepState.SetMetadata("feed_count", exp.FeedCount())
	}
	return nil
}
