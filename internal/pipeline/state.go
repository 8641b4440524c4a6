package pipeline

import (
	"sync"
	"time"

	"espresso/internal/experiment"
)

// OperationStatus is the overall load operation status enum.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// StepStatus is the per-step status enum.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState is the runtime state of one pipeline step.
type StepState struct {
	mu        sync.RWMutex           `json:"-"`
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Status    StepStatus             `json:"status"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Progress  float64                `json:"progress"`
	Message   string                 `json:"message"`
	Error     error                  `json:"error,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewStepState creates a pending step state.
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the step active.
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
	s.Progress = 0
}

// Complete marks the step completed.
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Progress = 100
}

// Fail marks the step failed with the given error.
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the step skipped with the given reason.
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// UpdateProgress updates the step progress and message.
func (s *StepState) UpdateProgress(progress float64, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Progress = progress
	s.Message = message
}

// SetMetadata records a metadata value on the step.
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil {
		s.Metadata = make(map[string]interface{})
	}
	s.Metadata[key] = value
}

// CurrentStatus returns the step status under the read lock.
func (s *StepState) CurrentStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns how long the step has been (or was) running.
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// OperationState is the complete state of one load operation.
type OperationState struct {
	mu sync.RWMutex

	ID              string          `json:"id"`
	Folder          string          `json:"folder"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
	Status          OperationStatus `json:"status"`
	StartTime       time.Time       `json:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	Error error `json:"error,omitempty"`

	result *experiment.Experiment
}

// NewOperationState creates a pending operation state for a load of folder.
func NewOperationState(id, folder string) *OperationState {
	return &OperationState{
		ID:        id,
		Folder:    folder,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the operation running.
func (o *OperationState) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Status = OperationStatusRunning
	o.StartTime = time.Now()
}

// Complete marks the operation completed.
func (o *OperationState) Complete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCompleted
}

// Fail marks the operation failed.
func (o *OperationState) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusFailed
	o.Error = err
}

// Cancel marks the operation cancelled.
func (o *OperationState) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCancelled
}

// GetStep returns the state of one step.
func (o *OperationState) GetStep(stepID string) *StepState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Steps[stepID]
}

// SetStep installs the state of one step.
func (o *OperationState) SetStep(stepID string, state *StepState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps[stepID] = state
}

// SetResult records the loaded aggregate on a completed operation.
func (o *OperationState) SetResult(exp *experiment.Experiment) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.result = exp
}

// Result returns the loaded aggregate, nil until assembly completes.
func (o *OperationState) Result() *experiment.Experiment {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.result
}

// Duration returns how long the operation has been (or was) running.
func (o *OperationState) Duration() time.Duration {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.EndTime != nil {
		return o.EndTime.Sub(o.StartTime)
	}
	return time.Since(o.StartTime)
}

// HasFailures reports whether any step failed.
func (o *OperationState) HasFailures() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, step := range o.Steps {
		if step.CurrentStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the operation state for safe hand-out.
func (o *OperationState) Clone() *OperationState {
	o.mu.RLock()
	defer o.mu.RUnlock()

	clone := &OperationState{
		ID:              o.ID,
		Folder:          o.Folder,
		DurationSeconds: o.DurationSeconds,
		Status:          o.Status,
		StartTime:       o.StartTime,
		Steps:           make(map[string]*StepState),
		Error:           o.Error,
		result:          o.result,
	}
	if o.EndTime != nil {
		endTime := *o.EndTime
		clone.EndTime = &endTime
	}

	for id, step := range o.Steps {
		step.mu.RLock()
		stepCopy := &StepState{
			ID:        step.ID,
			Name:      step.Name,
			Status:    step.Status,
			StartTime: step.StartTime,
			EndTime:   step.EndTime,
			Progress:  step.Progress,
			Message:   step.Message,
			Error:     step.Error,
			Metadata:  make(map[string]interface{}, len(step.Metadata)),
		}
		for k, v := range step.Metadata {
			stepCopy.Metadata[k] = v
		}
		step.mu.RUnlock()
		clone.Steps[id] = stepCopy
	}

	return clone
}
