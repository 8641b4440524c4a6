package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"espresso/internal/experiment"
)

// Manager orchestrates load operations. One load runs at a time; a second
// request while one is active fails with ErrLoadInProgress.
type Manager struct {
	config      *Config
	logger      *slog.Logger
	hub         WebSocketHub
	broadcaster *StatusBroadcaster

	mu         sync.RWMutex
	operations map[string]*OperationState
	activeID   string
}

// NewManager creates a load manager publishing progress to hub. A nil config
// gets the defaults; a nil logger falls back to slog.Default.
func NewManager(hub WebSocketHub, logger *slog.Logger, config *Config) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if config == nil {
		config = NewConfig()
	}

	return &Manager{
		config:      config,
		logger:      logger,
		hub:         hub,
		broadcaster: NewStatusBroadcaster(hub, logger),
		operations:  make(map[string]*OperationState),
	}
}

// Broadcaster returns the status broadcaster, the read surface for snapshot
// queries.
func (m *Manager) Broadcaster() *StatusBroadcaster {
	return m.broadcaster
}

// Config returns the active pipeline configuration.
func (m *Manager) Config() *Config {
	return m.config
}

// Execute runs a load operation to completion. The returned response carries
// the per-step states and, on success, the loaded aggregate.
func (m *Manager) Execute(ctx context.Context, req LoadRequest) (*LoadResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	state := NewOperationState(req.ID, req.Folder)
	state.DurationSeconds = req.DurationSeconds

	if err := m.beginOperation(state); err != nil {
		return nil, err
	}
	defer m.endOperation(req.ID)

	loader := experiment.NewLoader(req.Folder, experiment.LoadOptions{
		DurationSeconds: req.DurationSeconds,
		Logger:          m.logger,
	})
	steps := []Step{
		NewValidateStep(loader),
		NewReadStep(loader, m.broadcaster),
		NewAssembleStep(loader),
	}
	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	m.logger.InfoContext(ctx, "load operation starting",
		slog.String("operation_id", req.ID),
		slog.String("folder", req.Folder),
		slog.Int("step_count", len(steps)))

	m.broadcaster.CreateOperation(req.ID, steps)
	state.Start()
	m.broadcaster.StartOperation(req.ID)

	err := m.executeSequential(ctx, state, steps)
	switch {
	case err == nil:
		state.Complete()
		m.broadcaster.CompleteOperation(req.ID, "Load completed")
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel()
		m.broadcaster.CancelOperation(req.ID)
	default:
		state.Fail(err)
		m.broadcaster.FailOperation(req.ID, err)
	}

	return m.createResponse(state), err
}

// executeSequential runs the steps strictly in order, stopping at the first
// failure and skipping whatever was still pending.
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		select {
		case <-ctx.Done():
			m.logger.WarnContext(ctx, "load operation cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "load cancelled")
			return NewCancellationError(step.ID(), ctx.Err())
		default:
		}

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s did not complete", step.ID()))
			return err
		}
	}

	m.logger.InfoContext(ctx, "all load steps completed",
		slog.String("operation_id", state.ID))
	return nil
}

// executeStep runs one step under its timeout.
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return &OperationError{
			Type:    ErrorTypeExecution,
			Step:    step.ID(),
			Message: "step state not found",
		}
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepState.Start()
	m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, "Step started")

	m.logger.InfoContext(ctx, "executing load step",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))

	startTime := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(startTime)

	if err == nil {
		stepState.Complete()
		m.broadcaster.CompleteStep(state.ID, step.ID(), "Step completed")
		m.logger.InfoContext(ctx, "load step completed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration))
		return nil
	}

	m.logger.ErrorContext(ctx, "load step failed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration),
		slog.String("error", err.Error()))

	var opErr *OperationError
	switch {
	case errors.Is(err, context.Canceled):
		opErr = NewCancellationError(step.ID(), err)
	case errors.Is(err, context.DeadlineExceeded):
		opErr = NewTimeoutError(step.ID(), timeout.String())
	default:
		opErr = WrapError(err, step.ID(), "step execution failed")
	}

	stepState.Fail(err)
	m.broadcaster.FailStep(state.ID, step.ID(), err)
	return opErr
}

// skipRemaining marks every still-pending step skipped.
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		stepState := state.GetStep(step.ID())
		if stepState == nil || stepState.CurrentStatus() != StepStatusPending {
			continue
		}
		stepState.Skip(reason)
		m.broadcaster.SkipStep(state.ID, step.ID(), reason)
	}
}

// createResponse builds the caller-facing response from the final state.
func (m *Manager) createResponse(state *OperationState) *LoadResponse {
	resp := &LoadResponse{
		ID:         state.ID,
		Status:     state.Status,
		Duration:   state.Duration(),
		Steps:      state.Steps,
		Experiment: state.Result(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetOperation returns a copy of a running operation's state.
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, ErrOperationNotFound
	}
	return state.Clone(), nil
}

// ListOperations returns copies of every running operation's state.
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	operations := make([]*OperationState, 0, len(m.operations))
	for _, state := range m.operations {
		operations = append(operations, state.Clone())
	}
	return operations
}

// Active returns the ID of the running load, if any.
func (m *Manager) Active() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeID, m.activeID != ""
}

func (m *Manager) beginOperation(state *OperationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID != "" {
		return ErrLoadInProgress
	}
	m.activeID = state.ID
	m.operations[state.ID] = state
	return nil
}

func (m *Manager) endOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == id {
		m.activeID = ""
	}
	delete(m.operations, id)
}
