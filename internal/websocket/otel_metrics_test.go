package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewOTelMetrics works against the global meter provider, which defaults
// to a no-op implementation, so the instruments can be created and
// recorded into without a full OTel pipeline.
func TestNewOTelMetrics(t *testing.T) {
	metrics, err := NewOTelMetrics()
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.connectionsTotal)
	assert.NotNil(t, metrics.connectionsActive)
	assert.NotNil(t, metrics.connectionDuration)
	assert.NotNil(t, metrics.connectionErrors)
	assert.NotNil(t, metrics.messagesTotal)
	assert.NotNil(t, metrics.messageBytes)
	assert.NotNil(t, metrics.droppedMessages)
	assert.NotNil(t, metrics.broadcastOperations)
	assert.NotNil(t, metrics.clientCount)
}

func TestOTelMetricsRecording(t *testing.T) {
	metrics, err := NewOTelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	// None of these should panic against the no-op provider
	metrics.RecordConnection(ctx, "client-1", "127.0.0.1:8077")
	metrics.RecordDisconnection(ctx, "client-1", 3*time.Second, "normal")
	metrics.RecordConnectionError(ctx, "client-2", "upgrade_failed", errors.New("bad handshake"))
	metrics.RecordMessageSent(ctx, "load:snapshot", "client-1", 128)
	metrics.RecordMessageReceived(ctx, "heartbeat", "client-1", 20)
	metrics.RecordDroppedMessage(ctx, "broadcast", "buffer_full")
	metrics.RecordBroadcast(ctx, "data:refresh", 10, 9, 1)
	metrics.RecordClientCount(ctx, 5)
}

func TestInitOTelMetrics(t *testing.T) {
	original := globalOTelMetrics
	defer func() { globalOTelMetrics = original }()

	globalOTelMetrics = nil
	assert.Nil(t, GetOTelMetrics())

	err := InitOTelMetrics()
	require.NoError(t, err)
	assert.NotNil(t, GetOTelMetrics())
	assert.Same(t, GetOTelMetrics(), GetOTelMetrics())
}

// BenchmarkGetOTelMetrics benchmarks getting global metrics
func BenchmarkGetOTelMetrics(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = GetOTelMetrics()
	}
}
