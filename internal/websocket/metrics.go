package websocket

import (
	"sync"
	"time"
)

// Metrics tracks in-process WebSocket counters. The hub records into the
// package-global instance; the health endpoint reads snapshots from it.
type Metrics struct {
	mu sync.RWMutex

	// Connection metrics
	TotalConnections  int64
	ActiveConnections int64
	MaxConcurrent     int64
	AvgConnectionTime time.Duration

	// Message metrics
	MessagesSent    int64
	DroppedMessages int64

	// Queue metrics
	AvgQueueDepth int64
	MaxQueueDepth int64

	LastReset       time.Time
	connectionTimes []time.Duration
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		LastReset:       time.Now(),
		connectionTimes: make([]time.Duration, 0, 100),
	}
}

// RecordConnection records a new connection
func (m *Metrics) RecordConnection() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections++
	m.ActiveConnections++

	if m.ActiveConnections > m.MaxConcurrent {
		m.MaxConcurrent = m.ActiveConnections
	}
}

// RecordDisconnection records a disconnection and folds the connection
// duration into a rolling average over the last 100 connections.
func (m *Metrics) RecordDisconnection(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ActiveConnections--

	m.connectionTimes = append(m.connectionTimes, duration)
	if len(m.connectionTimes) > 100 {
		m.connectionTimes = m.connectionTimes[1:]
	}

	var total time.Duration
	for _, d := range m.connectionTimes {
		total += d
	}
	if len(m.connectionTimes) > 0 {
		m.AvgConnectionTime = total / time.Duration(len(m.connectionTimes))
	}
}

// RecordSent records messages fanned out to clients
func (m *Metrics) RecordSent(count int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MessagesSent += count
}

// RecordDroppedMessage records a message lost to a full client buffer
func (m *Metrics) RecordDroppedMessage() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DroppedMessages++
}

// RecordQueueDepth records the current broadcast queue depth
func (m *Metrics) RecordQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if depth > m.MaxQueueDepth {
		m.MaxQueueDepth = depth
	}

	// Exponential moving average
	if m.AvgQueueDepth == 0 {
		m.AvgQueueDepth = depth
	} else {
		m.AvgQueueDepth = (m.AvgQueueDepth*9 + depth) / 10
	}
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"connections": map[string]interface{}{
			"total":           m.TotalConnections,
			"active":          m.ActiveConnections,
			"max_concurrent":  m.MaxConcurrent,
			"avg_duration_ms": m.AvgConnectionTime.Milliseconds(),
		},
		"messages": map[string]interface{}{
			"sent":    m.MessagesSent,
			"dropped": m.DroppedMessages,
		},
		"queue": map[string]interface{}{
			"avg_depth": m.AvgQueueDepth,
			"max_depth": m.MaxQueueDepth,
		},
		"uptime_seconds": time.Since(m.LastReset).Seconds(),
	}
}

// Reset resets all metrics
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalConnections = 0
	m.ActiveConnections = 0
	m.MaxConcurrent = 0
	m.AvgConnectionTime = 0
	m.MessagesSent = 0
	m.DroppedMessages = 0
	m.AvgQueueDepth = 0
	m.MaxQueueDepth = 0
	m.LastReset = time.Now()
	m.connectionTimes = make([]time.Duration, 0, 100)
}

// Global metrics instance
var globalMetrics = NewMetrics()

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}
