package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster(t *testing.T) (*StatusBroadcaster, *fakeHub) {
	t.Helper()
	hub := &fakeHub{}
	sb := NewStatusBroadcaster(hub, nil)
	t.Cleanup(sb.Stop)
	return sb, hub
}

func seedSteps() []Step {
	return []Step{
		NewValidateStep(nil),
		NewReadStep(nil, nil),
		NewAssembleStep(nil),
	}
}

func TestBroadcasterLifecycle(t *testing.T) {
	sb, hub := newTestBroadcaster(t)

	sb.CreateOperation("op-1", seedSteps())
	sb.StartOperation("op-1")

	snapshot, ok := sb.GetSnapshot("op-1")
	require.True(t, ok)
	assert.Equal(t, string(OperationStatusRunning), snapshot.Status)
	require.Len(t, snapshot.Steps, 3)
	assert.Equal(t, StepIDValidate, snapshot.Steps[0].ID)
	assert.Equal(t, StepNameValidate, snapshot.Steps[0].Name)

	sb.CompleteStep("op-1", StepIDValidate, "done")
	snapshot, _ = sb.GetSnapshot("op-1")
	assert.Equal(t, string(StepStatusCompleted), snapshot.Steps[0].Status)
	// Overall progress is the mean of step progresses: 100+0+0 over 3.
	assert.Equal(t, 33, snapshot.Progress)

	sb.UpdateStepProgress("op-1", StepIDRead, 50, "halfway")
	snapshot, _ = sb.GetSnapshot("op-1")
	assert.Equal(t, string(StepStatusActive), snapshot.Steps[1].Status)
	assert.Equal(t, StepNameRead, snapshot.CurrentStep)
	assert.Equal(t, 50, snapshot.Steps[1].Progress)

	sb.CompleteOperation("op-1", "all done")
	snapshot, _ = sb.GetSnapshot("op-1")
	assert.Equal(t, string(OperationStatusCompleted), snapshot.Status)
	assert.Equal(t, 100, snapshot.Progress)
	require.NotNil(t, snapshot.CompletedAt)
	for _, step := range snapshot.Steps {
		assert.Equal(t, string(StepStatusCompleted), step.Status)
	}

	assert.Greater(t, hub.eventCount(), 3, "every change broadcast a snapshot")
}

func TestBroadcasterProgressIsMonotonicWhileActive(t *testing.T) {
	sb, _ := newTestBroadcaster(t)

	sb.CreateOperation("op-2", seedSteps())
	sb.UpdateStepProgress("op-2", StepIDRead, 60, "later event")
	sb.UpdateStepProgress("op-2", StepIDRead, 40, "stale event")

	snapshot, _ := sb.GetSnapshot("op-2")
	assert.Equal(t, 60, snapshot.Steps[1].Progress, "stale lower progress is ignored")
	assert.Equal(t, "stale event", snapshot.Steps[1].Message, "messages still update")
}

func TestBroadcasterFailAndSkip(t *testing.T) {
	sb, _ := newTestBroadcaster(t)

	sb.CreateOperation("op-3", seedSteps())
	sb.StartOperation("op-3")
	sb.FailStep("op-3", StepIDValidate, errors.New("no metadata"))
	sb.SkipStep("op-3", StepIDRead, "previous step failed")
	sb.SkipStep("op-3", StepIDAssemble, "previous step failed")
	sb.FailOperation("op-3", errors.New("no metadata"))

	snapshot, ok := sb.GetSnapshot("op-3")
	require.True(t, ok)
	assert.Equal(t, string(OperationStatusFailed), snapshot.Status)
	assert.Equal(t, "no metadata", snapshot.Error)
	assert.Equal(t, string(StepStatusFailed), snapshot.Steps[0].Status)
	assert.Equal(t, string(StepStatusSkipped), snapshot.Steps[1].Status)
	require.NotNil(t, snapshot.CompletedAt)
}

func TestBroadcasterSnapshotIsACopy(t *testing.T) {
	sb, _ := newTestBroadcaster(t)

	sb.CreateOperation("op-4", seedSteps())
	first, ok := sb.GetSnapshot("op-4")
	require.True(t, ok)
	first.Status = "mangled"
	first.Steps[0].Status = "mangled"

	second, _ := sb.GetSnapshot("op-4")
	assert.Equal(t, string(OperationStatusPending), second.Status)
	assert.Equal(t, string(StepStatusPending), second.Steps[0].Status)
}

func TestBroadcasterCleanup(t *testing.T) {
	sb, _ := newTestBroadcaster(t)

	sb.CreateOperation("done-op", seedSteps())
	sb.CompleteOperation("done-op", "finished")
	sb.CreateOperation("live-op", seedSteps())
	sb.StartOperation("live-op")

	// A finished snapshot older than maxAge goes away; running ones stay.
	time.Sleep(time.Millisecond)
	sb.CleanupOldOperations(0)

	_, ok := sb.GetSnapshot("done-op")
	assert.False(t, ok)
	_, ok = sb.GetSnapshot("live-op")
	assert.True(t, ok)
	assert.Len(t, sb.GetAllSnapshots(), 1)
}

func TestProgressTracker(t *testing.T) {
	tracker := NewProgressTracker(StepIDRead, 4)
	assert.Equal(t, "calculating...", tracker.GetETA())
	assert.False(t, tracker.IsComplete())

	tracker.Update(2, "halfway")
	current, total, percentage, message := tracker.GetProgress()
	assert.Equal(t, 2, current)
	assert.Equal(t, 4, total)
	assert.Equal(t, 50.0, percentage)
	assert.Equal(t, "halfway", message)
	assert.NotEqual(t, "calculating...", tracker.GetETA())

	tracker.Increment("third")
	tracker.Increment("fourth")
	assert.True(t, tracker.IsComplete())
}

func TestProgressTrackerZeroTotal(t *testing.T) {
	tracker := NewProgressTracker(StepIDRead, 0)
	_, _, percentage, _ := tracker.GetProgress()
	assert.Zero(t, percentage)
	assert.True(t, tracker.IsComplete())
}
