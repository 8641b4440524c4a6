package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMetrics(t *testing.T) {
	metrics := NewMetrics()

	assert.NotNil(t, metrics)
	assert.Equal(t, int64(0), metrics.TotalConnections)
	assert.Equal(t, int64(0), metrics.ActiveConnections)
	assert.Equal(t, int64(0), metrics.MessagesSent)
}

func TestMetrics_RecordConnection(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordConnection()

	assert.Equal(t, int64(1), metrics.TotalConnections)
	assert.Equal(t, int64(1), metrics.ActiveConnections)
	assert.Equal(t, int64(1), metrics.MaxConcurrent)
}

func TestMetrics_RecordDisconnection(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordConnection()
	assert.Equal(t, int64(1), metrics.ActiveConnections)

	duration := 5 * time.Minute
	metrics.RecordDisconnection(duration)

	assert.Equal(t, int64(0), metrics.ActiveConnections)
	assert.Equal(t, duration, metrics.AvgConnectionTime)
}

func TestMetrics_RecordSent(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordSent(3)
	metrics.RecordSent(2)

	assert.Equal(t, int64(5), metrics.MessagesSent)
}

func TestMetrics_RecordQueueDepth(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordQueueDepth(10)
	metrics.RecordQueueDepth(15)
	metrics.RecordQueueDepth(5)

	assert.Equal(t, int64(15), metrics.MaxQueueDepth)
	assert.Greater(t, metrics.AvgQueueDepth, int64(0))
}

func TestMetrics_RecordDroppedMessage(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordDroppedMessage()
	metrics.RecordDroppedMessage()
	metrics.RecordDroppedMessage()

	assert.Equal(t, int64(3), metrics.DroppedMessages)
}

func TestMetrics_GetSnapshot(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordConnection()
	metrics.RecordConnection()
	metrics.RecordDisconnection(1 * time.Minute)
	metrics.RecordSent(3)
	metrics.RecordDroppedMessage()

	snapshot := metrics.GetSnapshot()

	connections := snapshot["connections"].(map[string]interface{})
	messages := snapshot["messages"].(map[string]interface{})

	assert.Equal(t, int64(1), connections["active"])
	assert.Equal(t, int64(2), connections["total"])
	assert.Equal(t, int64(2), connections["max_concurrent"])
	assert.Equal(t, int64(3), messages["sent"])
	assert.Equal(t, int64(1), messages["dropped"])
	assert.NotZero(t, snapshot["uptime_seconds"])
}

func TestMetrics_Reset(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordConnection()
	metrics.RecordSent(1)
	metrics.RecordQueueDepth(10)
	metrics.RecordDroppedMessage()

	assert.Greater(t, metrics.ActiveConnections, int64(0))
	assert.Greater(t, metrics.MessagesSent, int64(0))

	metrics.Reset()

	assert.Equal(t, int64(0), metrics.TotalConnections)
	assert.Equal(t, int64(0), metrics.ActiveConnections)
	assert.Equal(t, int64(0), metrics.MaxConcurrent)
	assert.Equal(t, int64(0), metrics.MessagesSent)
	assert.Equal(t, int64(0), metrics.DroppedMessages)
	assert.Equal(t, int64(0), metrics.MaxQueueDepth)
	assert.Equal(t, int64(0), metrics.AvgQueueDepth)
}

func TestGetMetrics(t *testing.T) {
	metrics1 := GetMetrics()
	metrics2 := GetMetrics()

	assert.NotNil(t, metrics1)
	assert.Same(t, metrics1, metrics2)
}

func TestMetrics_ConcurrentAccess(t *testing.T) {
	metrics := NewMetrics()

	var wg sync.WaitGroup
	numGoroutines := 10
	numOperations := 100

	// Concurrent connections
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				metrics.RecordConnection()
			}
		}()
	}

	// Concurrent message counting
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				metrics.RecordSent(1)
				metrics.RecordDroppedMessage()
			}
		}()
	}

	wg.Wait()

	expected := int64(numGoroutines * numOperations)
	assert.Equal(t, expected, metrics.ActiveConnections)
	assert.Equal(t, expected, metrics.TotalConnections)
	assert.Equal(t, expected, metrics.MessagesSent)
	assert.Equal(t, expected, metrics.DroppedMessages)
}

func TestMetrics_RollingConnectionAverage(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordConnection()
	metrics.RecordConnection()
	metrics.RecordDisconnection(1 * time.Minute)
	metrics.RecordDisconnection(3 * time.Minute)

	assert.Equal(t, 2*time.Minute, metrics.AvgConnectionTime)
}
