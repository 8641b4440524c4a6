package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

// WebSocketHub is the broadcast surface the pipeline publishes to.
type WebSocketHub interface {
	BroadcastUpdate(eventType, step, status string, metadata interface{})
}

// StatusBroadcaster is the single authority for load operation status. It
// holds the complete snapshot of every operation and broadcasts the whole
// snapshot on each change, so clients never have to stitch partial events.
type StatusBroadcaster struct {
	mu         sync.RWMutex
	operations map[string]*OperationSnapshot
	hub        WebSocketHub
	logger     *slog.Logger
	updates    chan updateRequest
	stop       chan struct{}
}

// OperationSnapshot is the complete state of one operation at a point in
// time. This is the only structure sent to the frontend.
type OperationSnapshot struct {
	OperationID string         `json:"operation_id"`
	Status      string         `json:"status"`       // pending|running|completed|failed|cancelled
	Progress    int            `json:"progress"`     // 0-100
	CurrentStep string         `json:"current_step"` // Active step name
	Steps       []StepSnapshot `json:"steps"`
	StartedAt   time.Time      `json:"started_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// StepSnapshot is the state of one step inside a snapshot.
type StepSnapshot struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`   // pending|running|completed|failed|skipped
	Progress int                    `json:"progress"` // 0-100
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

type updateRequest struct {
	operationID string
	updateFunc  func(*OperationSnapshot)
	done        chan struct{}
}

// NewStatusBroadcaster creates a broadcaster publishing to hub.
func NewStatusBroadcaster(hub WebSocketHub, logger *slog.Logger) *StatusBroadcaster {
	if logger == nil {
		logger = slog.Default()
	}

	sb := &StatusBroadcaster{
		operations: make(map[string]*OperationSnapshot),
		hub:        hub,
		logger:     logger,
		updates:    make(chan updateRequest, 100),
		stop:       make(chan struct{}),
	}

	go sb.processUpdates()

	return sb
}

// processUpdates applies updates one at a time so snapshots never race.
func (sb *StatusBroadcaster) processUpdates() {
	for {
		select {
		case <-sb.stop:
			return
		case req := <-sb.updates:
			sb.handleUpdate(req)
		}
	}
}

func (sb *StatusBroadcaster) handleUpdate(req updateRequest) {
	defer close(req.done)

	sb.mu.Lock()
	defer sb.mu.Unlock()

	snapshot, exists := sb.operations[req.operationID]
	if !exists {
		snapshot = &OperationSnapshot{
			OperationID: req.operationID,
			Status:      string(OperationStatusPending),
			StartedAt:   time.Now(),
			UpdatedAt:   time.Now(),
			Steps:       []StepSnapshot{},
		}
		sb.operations[req.operationID] = snapshot
	}

	req.updateFunc(snapshot)
	snapshot.UpdatedAt = time.Now()

	// Overall progress is the mean of the step progresses.
	if len(snapshot.Steps) > 0 {
		totalProgress := 0
		for _, step := range snapshot.Steps {
			totalProgress += step.Progress
		}
		snapshot.Progress = totalProgress / len(snapshot.Steps)
	}

	if snapshot.Status == string(OperationStatusCompleted) ||
		snapshot.Status == string(OperationStatusFailed) ||
		snapshot.Status == string(OperationStatusCancelled) {
		if snapshot.CompletedAt == nil {
			now := time.Now()
			snapshot.CompletedAt = &now
		}
	}

	sb.broadcast(snapshot)
}

func (sb *StatusBroadcaster) broadcast(snapshot *OperationSnapshot) {
	if sb.hub == nil {
		return
	}

	sb.logger.Debug("broadcasting operation snapshot",
		slog.String("operation_id", snapshot.OperationID),
		slog.String("status", snapshot.Status),
		slog.Int("progress", snapshot.Progress),
		slog.String("current_step", snapshot.CurrentStep))

	sb.hub.BroadcastUpdate(EventTypeLoadSnapshot, snapshot.OperationID, snapshot.Status, snapshot)
}

// UpdateStatus applies an update to one operation's snapshot and broadcasts
// the result. All status changes go through here.
func (sb *StatusBroadcaster) UpdateStatus(operationID string, updateFunc func(*OperationSnapshot)) {
	req := updateRequest{
		operationID: operationID,
		updateFunc:  updateFunc,
		done:        make(chan struct{}),
	}

	sb.updates <- req
	<-req.done
}

// CreateOperation seeds a snapshot with the operation's steps, in order.
func (sb *StatusBroadcaster) CreateOperation(operationID string, steps []Step) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusPending)
		snapshot.Progress = 0
		snapshot.Steps = make([]StepSnapshot, len(steps))
		for i, step := range steps {
			snapshot.Steps[i] = StepSnapshot{
				ID:     step.ID(),
				Name:   step.Name(),
				Status: string(StepStatusPending),
			}
		}
		snapshot.Message = "Load created"
	})
}

// StartOperation marks an operation running.
func (sb *StatusBroadcaster) StartOperation(operationID string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusRunning)
		snapshot.Message = "Load started"
	})
}

// UpdateStepProgress updates one step's progress.
func (sb *StatusBroadcaster) UpdateStepProgress(operationID, stepID string, progress int, message string) {
	sb.UpdateStepWithMetadata(operationID, stepID, progress, message, nil)
}

// UpdateStepWithMetadata updates one step's progress and metadata. Progress
// is monotonic while a step runs: a late, lower value never rolls it back.
func (sb *StatusBroadcaster) UpdateStepWithMetadata(operationID, stepID string, progress int, message string, metadata map[string]interface{}) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Steps {
			if snapshot.Steps[i].ID != stepID {
				continue
			}
			if progress >= snapshot.Steps[i].Progress || snapshot.Steps[i].Status != string(StepStatusActive) {
				snapshot.Steps[i].Progress = progress
			}
			snapshot.Steps[i].Message = message
			if metadata != nil {
				snapshot.Steps[i].Metadata = metadata
			}
			if progress >= 100 {
				snapshot.Steps[i].Status = string(StepStatusCompleted)
				snapshot.Steps[i].Progress = 100
			} else {
				snapshot.Steps[i].Status = string(StepStatusActive)
				snapshot.CurrentStep = snapshot.Steps[i].Name
			}
			break
		}
	})
}

// CompleteStep marks a step completed.
func (sb *StatusBroadcaster) CompleteStep(operationID, stepID string, message string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Steps {
			if snapshot.Steps[i].ID == stepID {
				snapshot.Steps[i].Status = string(StepStatusCompleted)
				snapshot.Steps[i].Progress = 100
				snapshot.Steps[i].Message = message
				break
			}
		}
	})
}

// FailStep marks a step failed.
func (sb *StatusBroadcaster) FailStep(operationID, stepID string, err error) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Steps {
			if snapshot.Steps[i].ID == stepID {
				snapshot.Steps[i].Status = string(StepStatusFailed)
				snapshot.Steps[i].Error = err.Error()
				break
			}
		}
	})
}

// SkipStep marks a step skipped with a reason.
func (sb *StatusBroadcaster) SkipStep(operationID, stepID string, reason string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		for i := range snapshot.Steps {
			if snapshot.Steps[i].ID == stepID {
				snapshot.Steps[i].Status = string(StepStatusSkipped)
				snapshot.Steps[i].Message = reason
				break
			}
		}
	})
}

// CompleteOperation marks an operation completed, closing out every step
// still open.
func (sb *StatusBroadcaster) CompleteOperation(operationID string, message string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusCompleted)
		snapshot.Progress = 100
		snapshot.CurrentStep = ""
		snapshot.Message = message
		for i := range snapshot.Steps {
			if snapshot.Steps[i].Status == string(StepStatusActive) ||
				snapshot.Steps[i].Status == string(StepStatusPending) {
				snapshot.Steps[i].Status = string(StepStatusCompleted)
				snapshot.Steps[i].Progress = 100
			}
		}
	})
}

// FailOperation marks an operation failed.
func (sb *StatusBroadcaster) FailOperation(operationID string, err error) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusFailed)
		snapshot.Error = err.Error()
		snapshot.CurrentStep = ""
	})
}

// CancelOperation marks an operation cancelled.
func (sb *StatusBroadcaster) CancelOperation(operationID string) {
	sb.UpdateStatus(operationID, func(snapshot *OperationSnapshot) {
		snapshot.Status = string(OperationStatusCancelled)
		snapshot.CurrentStep = ""
		snapshot.Message = "Load cancelled"
	})
}

// GetSnapshot returns a copy of one operation's snapshot.
func (sb *StatusBroadcaster) GetSnapshot(operationID string) (*OperationSnapshot, bool) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshot, exists := sb.operations[operationID]
	if !exists {
		return nil, false
	}

	out := *snapshot
	out.Steps = append([]StepSnapshot(nil), snapshot.Steps...)
	return &out, true
}

// GetAllSnapshots returns copies of every tracked operation snapshot.
func (sb *StatusBroadcaster) GetAllSnapshots() []*OperationSnapshot {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	snapshots := make([]*OperationSnapshot, 0, len(sb.operations))
	for _, snapshot := range sb.operations {
		out := *snapshot
		out.Steps = append([]StepSnapshot(nil), snapshot.Steps...)
		snapshots = append(snapshots, &out)
	}
	return snapshots
}

// CleanupOldOperations drops finished snapshots older than maxAge.
func (sb *StatusBroadcaster) CleanupOldOperations(maxAge time.Duration) {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	now := time.Now()
	for id, snapshot := range sb.operations {
		if snapshot.CompletedAt == nil {
			continue
		}
		if now.Sub(*snapshot.CompletedAt) > maxAge {
			delete(sb.operations, id)
			sb.logger.Info("cleaned up old operation",
				slog.String("operation_id", id),
				slog.String("status", snapshot.Status))
		}
	}
}

// Stop shuts the broadcaster down.
func (sb *StatusBroadcaster) Stop() {
	close(sb.stop)
}
