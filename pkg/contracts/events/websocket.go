// Package events contains the WebSocket message contracts published by the
// analysis server. Frontends subscribe to a single socket and receive these
// envelopes for load progress, table refreshes, and system status.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Core load message. The server broadcasts the complete snapshot of a
	// load operation on every state change; clients replace, never merge.
	MessageTypeLoadSnapshot MessageType = "load:snapshot"

	// Data refresh notifications, sent after labels change or a bundle is
	// opened so clients re-fetch the tables they display.
	MessageTypeDataRefresh MessageType = "data:refresh"

	// System messages
	MessageTypeSystemStatus MessageType = "system:status"

	// Connection messages
	MessageTypeConnect    MessageType = "connect"
	MessageTypeDisconnect MessageType = "disconnect"
	MessageTypeError      MessageType = "error"
)

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket envelope. Step and
// Status annotate load snapshots with the operation ID and its state so
// clients can route without unpacking Data.
type WebSocketMessage struct {
	BaseMessage
	Data   interface{} `json:"data,omitempty"`
	Step   string      `json:"step,omitempty"`
	Status string      `json:"status,omitempty"`
}

// LoadSnapshot is the wire form of a load operation snapshot. It mirrors
// the server's internal snapshot structure field for field.
type LoadSnapshot struct {
	OperationID string     `json:"operation_id"`
	Status      string     `json:"status"`       // pending|running|completed|failed|cancelled
	Progress    int        `json:"progress"`     // 0-100
	CurrentStep string     `json:"current_step"` // Current active step name
	Steps       []LoadStep `json:"steps"`
	StartedAt   time.Time  `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// LoadStep represents the state of a single pipeline step within a snapshot
type LoadStep struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Status   string                 `json:"status"`   // pending|active|completed|failed|skipped
	Progress int                    `json:"progress"` // 0-100
	Message  string                 `json:"message,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DataRefreshEvent tells clients which tables changed and why
type DataRefreshEvent struct {
	Source     string   `json:"source"`     // labels|combine|bundle
	Components []string `json:"components"` // feeds|flies|views|all
}

// ErrorMessage represents an error pushed over the socket
type ErrorMessage struct {
	BaseMessage
	Data struct {
		Code    string      `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
		Retry   bool        `json:"retry"`
		Fatal   bool        `json:"fatal"`
	} `json:"data"`
}

// SystemStatusEvent represents a system status event
type SystemStatusEvent struct {
	BaseMessage
	Data struct {
		Status     string            `json:"status"` // healthy|degraded|unhealthy
		Components map[string]string `json:"components"`
		Uptime     string            `json:"uptime"`
		Version    string            `json:"version"`
	} `json:"data"`
}
