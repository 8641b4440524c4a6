package websocket

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "espresso.websocket"
)

// OTelMetrics provides OpenTelemetry metrics for WebSocket operations
type OTelMetrics struct {
	// Connection metrics
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram
	connectionErrors   metric.Int64Counter

	// Message metrics
	messagesTotal metric.Int64Counter
	messageBytes  metric.Int64Counter

	// Hub metrics
	droppedMessages     metric.Int64Counter
	broadcastOperations metric.Int64Counter
	clientCount         metric.Int64Gauge
}

// NewOTelMetrics creates a new OpenTelemetry metrics instance
func NewOTelMetrics() (*OTelMetrics, error) {
	meter := otel.Meter(meterName)

	connectionsTotal, err := meter.Int64Counter(
		"websocket_connections_total",
		metric.WithDescription("Total number of WebSocket connections"),
	)
	if err != nil {
		return nil, err
	}

	connectionsActive, err := meter.Int64UpDownCounter(
		"websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"),
	)
	if err != nil {
		return nil, err
	}

	connectionDuration, err := meter.Float64Histogram(
		"websocket_connection_duration_seconds",
		metric.WithDescription("Duration of WebSocket connections"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	connectionErrors, err := meter.Int64Counter(
		"websocket_connection_errors_total",
		metric.WithDescription("Total number of WebSocket connection errors"),
	)
	if err != nil {
		return nil, err
	}

	messagesTotal, err := meter.Int64Counter(
		"websocket_messages_total",
		metric.WithDescription("Total number of WebSocket messages"),
	)
	if err != nil {
		return nil, err
	}

	messageBytes, err := meter.Int64Counter(
		"websocket_message_bytes_total",
		metric.WithDescription("Total bytes of WebSocket messages"),
	)
	if err != nil {
		return nil, err
	}

	droppedMessages, err := meter.Int64Counter(
		"websocket_dropped_messages_total",
		metric.WithDescription("Total number of dropped WebSocket messages"),
	)
	if err != nil {
		return nil, err
	}

	broadcastOperations, err := meter.Int64Counter(
		"websocket_broadcast_operations_total",
		metric.WithDescription("Total number of WebSocket broadcast operations"),
	)
	if err != nil {
		return nil, err
	}

	clientCount, err := meter.Int64Gauge(
		"websocket_client_count",
		metric.WithDescription("Current number of connected WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelMetrics{
		connectionsTotal:    connectionsTotal,
		connectionsActive:   connectionsActive,
		connectionDuration:  connectionDuration,
		connectionErrors:    connectionErrors,
		messagesTotal:       messagesTotal,
		messageBytes:        messageBytes,
		droppedMessages:     droppedMessages,
		broadcastOperations: broadcastOperations,
		clientCount:         clientCount,
	}, nil
}

// Connection metrics

// RecordConnection records a new WebSocket connection
func (m *OTelMetrics) RecordConnection(ctx context.Context, clientID, remoteAddr string) {
	attrs := []attribute.KeyValue{
		attribute.String("client_id", clientID),
		attribute.String("remote_addr", remoteAddr),
	}

	m.connectionsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.connectionsActive.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDisconnection records a WebSocket disconnection
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, clientID string, duration time.Duration, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("client_id", clientID),
		attribute.String("disconnect_reason", reason),
	}

	m.connectionsActive.Add(ctx, -1, metric.WithAttributes(attrs...))
	m.connectionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordConnectionError records a failed WebSocket upgrade or handshake
func (m *OTelMetrics) RecordConnectionError(ctx context.Context, clientID, errorType string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("client_id", clientID),
		attribute.String("error_type", errorType),
		attribute.String("error", err.Error()),
	}

	m.connectionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Message metrics

// RecordMessageSent records a sent WebSocket message
func (m *OTelMetrics) RecordMessageSent(ctx context.Context, messageType, clientID string, size int64) {
	attrs := []attribute.KeyValue{
		attribute.String("direction", "outbound"),
		attribute.String("message_type", messageType),
		attribute.String("client_id", clientID),
	}

	m.messagesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.messageBytes.Add(ctx, size, metric.WithAttributes(attrs...))
}

// RecordMessageReceived records a received WebSocket message
func (m *OTelMetrics) RecordMessageReceived(ctx context.Context, messageType, clientID string, size int64) {
	attrs := []attribute.KeyValue{
		attribute.String("direction", "inbound"),
		attribute.String("message_type", messageType),
		attribute.String("client_id", clientID),
	}

	m.messagesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.messageBytes.Add(ctx, size, metric.WithAttributes(attrs...))
}

// Hub metrics

// RecordDroppedMessage records a message lost to a full client buffer
func (m *OTelMetrics) RecordDroppedMessage(ctx context.Context, messageType, reason string) {
	attrs := []attribute.KeyValue{
		attribute.String("message_type", messageType),
		attribute.String("drop_reason", reason),
	}

	m.droppedMessages.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordBroadcast records a broadcast operation
func (m *OTelMetrics) RecordBroadcast(ctx context.Context, messageType string, clientCount, successCount, failCount int64) {
	attrs := []attribute.KeyValue{
		attribute.String("message_type", messageType),
		attribute.Int64("client_count", clientCount),
		attribute.Int64("success_count", successCount),
		attribute.Int64("fail_count", failCount),
	}

	m.broadcastOperations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordClientCount records the current number of connected clients
func (m *OTelMetrics) RecordClientCount(ctx context.Context, count int64) {
	m.clientCount.Record(ctx, count)
}

// Global OTel metrics instance
var globalOTelMetrics *OTelMetrics

// InitOTelMetrics initializes the global OpenTelemetry metrics
func InitOTelMetrics() error {
	metrics, err := NewOTelMetrics()
	if err != nil {
		return err
	}
	globalOTelMetrics = metrics
	return nil
}

// GetOTelMetrics returns the global OpenTelemetry metrics instance
func GetOTelMetrics() *OTelMetrics {
	return globalOTelMetrics
}
