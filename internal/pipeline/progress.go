package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker tracks item-level progress inside a long-running step, the
// read step's per-feedlog counter in particular.
type ProgressTracker struct {
	step      string
	total     int
	current   int
	startTime time.Time
	message   string
	mu        sync.Mutex
}

// NewProgressTracker creates a tracker for total items in the given step.
func NewProgressTracker(step string, total int) *ProgressTracker {
	return &ProgressTracker{
		step:      step,
		total:     total,
		startTime: time.Now(),
	}
}

// Update sets the current progress.
func (p *ProgressTracker) Update(current int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.message = message
}

// Increment advances the current progress by one.
func (p *ProgressTracker) Increment(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	p.message = message
}

// GetProgress returns the current progress state.
func (p *ProgressTracker) GetProgress() (current, total int, percentage float64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	percentage = 0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100
	}
	return p.current, p.total, percentage, p.message
}

// GetETA estimates the remaining time from the observed rate.
func (p *ProgressTracker) GetETA() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == 0 || p.total == 0 {
		return "calculating..."
	}

	elapsed := time.Since(p.startTime)
	rate := float64(p.current) / elapsed.Seconds()
	if rate == 0 {
		return "calculating..."
	}

	remaining := float64(p.total-p.current) / rate
	switch {
	case remaining < 60:
		return fmt.Sprintf("%.0f seconds", remaining)
	case remaining < 3600:
		return fmt.Sprintf("%.1f minutes", remaining/60)
	default:
		return fmt.Sprintf("%.1f hours", remaining/3600)
	}
}

// IsComplete reports whether every item has been processed.
func (p *ProgressTracker) IsComplete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current >= p.total
}
