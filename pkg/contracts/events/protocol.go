package events

import (
	"time"
)

// Protocol version
const (
	ProtocolVersion = "1.0"
	ProtocolName    = "espresso-websocket-protocol"
)

// ConnectionState tracks the lifecycle of a socket
type ConnectionState string

const (
	ConnectionStateConnecting    ConnectionState = "connecting"
	ConnectionStateConnected     ConnectionState = "connected"
	ConnectionStateDisconnecting ConnectionState = "disconnecting"
	ConnectionStateDisconnected  ConnectionState = "disconnected"
	ConnectionStateReconnecting  ConnectionState = "reconnecting"
)

// ProtocolError represents a protocol-level error
type ProtocolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}

// Protocol error codes
const (
	ErrCodeInvalidFrame    = "INVALID_FRAME"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeMessageTooLarge = "MESSAGE_TOO_LARGE"
	ErrCodeTimeout         = "TIMEOUT"
	ErrCodeServerError     = "SERVER_ERROR"
)

// HeartbeatMessage represents a client heartbeat
type HeartbeatMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Sequence  int64     `json:"sequence"`
	Latency   int64     `json:"latency_ms,omitempty"`
}

// MetricsSnapshot represents WebSocket connection metrics reported on the
// health surface.
type MetricsSnapshot struct {
	SessionID        string        `json:"session_id"`
	ConnectedAt      time.Time     `json:"connected_at"`
	Duration         time.Duration `json:"duration"`
	MessagesSent     int64         `json:"messages_sent"`
	MessagesReceived int64         `json:"messages_received"`
	BytesSent        int64         `json:"bytes_sent"`
	BytesReceived    int64         `json:"bytes_received"`
	ErrorCount       int64         `json:"error_count"`
	Latency          int64         `json:"latency_ms"`
}
