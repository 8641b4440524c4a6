package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"espresso/internal/infrastructure"
	"espresso/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts messages to the
// clients. Load progress, data refresh notices and errors all fan out
// through one broadcast channel drained by Run.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound messages to fan out to every client
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Logger instance
	logger *slog.Logger

	// Metrics
	totalConnections int64
	messagesSent     int64
	messagesReceived int64
	connectionErrors int64

	// Control
	quit        chan struct{}
	running     bool
	metricsQuit chan struct{}
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	logger = logger.With(slog.String("component", "websocket.hub"))

	hub := &Hub{
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		logger:      logger,
		quit:        make(chan struct{}),
		metricsQuit: make(chan struct{}),
	}

	return hub
}

// Start starts the hub's goroutines
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	// Start the main hub loop
	go h.Run()

	// Start metrics reporting
	go h.reportMetrics()
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.totalConnections++
			h.mu.Unlock()

			ctx := context.Background()
			if client.traceID != "" {
				ctx = infrastructure.WithTraceID(ctx, client.traceID)
			}

			h.logger.InfoContext(ctx, "Client registered",
				slog.Int("total_clients", count),
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr))

			// Update metrics
			metrics := GetMetrics()
			metrics.RecordConnection()

			// Record OpenTelemetry metrics
			if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
				otelMetrics.RecordConnection(ctx, client.id, client.remoteAddr)
				otelMetrics.RecordClientCount(ctx, int64(count))
			}

			// Send connection success message to the newly connected client
			connMsg := events.WebSocketMessage{
				BaseMessage: events.BaseMessage{
					Type:      events.MessageTypeConnect,
					Timestamp: time.Now().UTC(),
					TraceID:   client.traceID,
				},
				Data: map[string]string{
					"status":    "connected",
					"message":   "Connected to the ESPRESSO analysis server",
					"client_id": client.id,
				},
			}

			jsonData, err := json.Marshal(connMsg)
			if err == nil {
				select {
				case client.send <- jsonData:
					h.logger.DebugContext(ctx, "Sent connection message to client",
						slog.String("client_id", client.id))
				default:
					h.logger.WarnContext(ctx, "Failed to send connection message - client buffer full",
						slog.String("client_id", client.id))
				}
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				count := len(h.clients)
				h.mu.Unlock()

				ctx := context.Background()
				if client.traceID != "" {
					ctx = infrastructure.WithTraceID(ctx, client.traceID)
				}

				h.logger.InfoContext(ctx, "Client unregistered",
					slog.Int("total_clients", count),
					slog.String("client_id", client.id),
					slog.Duration("connection_duration", time.Since(client.connectedAt)))

				// Update metrics
				metrics := GetMetrics()
				metrics.RecordDisconnection(time.Since(client.connectedAt))

				// Record OpenTelemetry metrics
				if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
					otelMetrics.RecordDisconnection(ctx, client.id, time.Since(client.connectedAt), "normal")
					otelMetrics.RecordClientCount(ctx, int64(count))
				}
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.RLock()
			// Copy the client set so the lock is not held during sends
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			h.logger.Debug("Broadcasting message to clients",
				slog.Int("client_count", len(clients)),
				slog.Int("message_size", len(message)))

			successCount := 0
			failCount := 0

			// Send to all clients
			for _, client := range clients {
				select {
				case client.send <- message:
					successCount++
				default:
					failCount++
					// Client's send channel is full, close it
					h.mu.Lock()
					close(client.send)
					delete(h.clients, client)
					h.mu.Unlock()

					GetMetrics().RecordDroppedMessage()

					ctx := context.Background()
					if client.traceID != "" {
						ctx = infrastructure.WithTraceID(ctx, client.traceID)
					}
					if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
						otelMetrics.RecordDroppedMessage(ctx, "broadcast", "buffer_full")
					}
					h.logger.WarnContext(ctx, "Client send buffer full, disconnecting",
						slog.String("client_id", client.id))
				}
			}

			h.mu.Lock()
			h.messagesSent += int64(successCount)
			h.mu.Unlock()
			GetMetrics().RecordSent(int64(successCount))

			if failCount > 0 {
				h.logger.Warn("Some clients failed to receive broadcast",
					slog.Int("success_count", successCount),
					slog.Int("fail_count", failCount))
			}

			// Record OpenTelemetry metrics for broadcast
			if otelMetrics := GetOTelMetrics(); otelMetrics != nil {
				ctx := context.Background()
				otelMetrics.RecordBroadcast(ctx, "broadcast", int64(len(clients)), int64(successCount), int64(failCount))
			}
		}
	}
}

// BroadcastUpdate sends an event envelope to all connected clients. Step
// and status annotate the envelope so clients can route load snapshots
// without unpacking the payload; both may be empty for other event types.
func (h *Hub) BroadcastUpdate(eventType, step, status string, metadata interface{}) {
	h.BroadcastUpdateWithTrace(eventType, step, status, metadata, "")
}

// BroadcastUpdateWithTrace sends an event envelope carrying a trace ID so
// clients can correlate pushes with server logs.
func (h *Hub) BroadcastUpdateWithTrace(eventType, step, status string, metadata interface{}, traceID string) {
	h.broadcastJSON(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageType(eventType),
			Timestamp: time.Now().UTC(),
			TraceID:   traceID,
		},
		Data:   metadata,
		Step:   step,
		Status: status,
	})
}

// broadcastJSON marshals an envelope and queues it for fanout
func (h *Hub) broadcastJSON(message events.WebSocketMessage) {
	jsonData, err := json.Marshal(message)
	if err != nil {
		ctx := context.Background()
		if message.TraceID != "" {
			ctx = infrastructure.WithTraceID(ctx, message.TraceID)
		}
		h.logger.ErrorContext(ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", string(message.Type)))
		return
	}

	h.broadcast <- jsonData
}

// BroadcastError pushes a structured error to every client. Fatal marks
// errors that ended the operation; retryable ones invite a resubmit.
func (h *Hub) BroadcastError(code, message string, details interface{}, fatal bool) {
	errorMsg := events.ErrorMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageTypeError,
			Timestamp: time.Now().UTC(),
		},
	}
	errorMsg.Data.Code = code
	errorMsg.Data.Message = message
	errorMsg.Data.Details = details
	errorMsg.Data.Retry = !fatal
	errorMsg.Data.Fatal = fatal

	jsonData, err := json.Marshal(errorMsg)
	if err != nil {
		h.logger.Error("Error marshaling error message", slog.String("error", err.Error()))
		return
	}

	h.broadcast <- jsonData
}

// BroadcastRefresh tells clients which experiment components changed so
// they can re-fetch the affected tables.
func (h *Hub) BroadcastRefresh(source string, components []string) {
	h.broadcastJSON(events.WebSocketMessage{
		BaseMessage: events.BaseMessage{
			Type:      events.MessageTypeDataRefresh,
			Timestamp: time.Now().UTC(),
		},
		Data: events.DataRefreshEvent{
			Source:     source,
			Components: components,
		},
	})
}

// Broadcast sends an envelope with only a type and payload, for events that
// carry no step or status.
func (h *Hub) Broadcast(messageType string, data interface{}) {
	h.BroadcastUpdate(messageType, "", "", data)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop gracefully stops the hub
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	// Signal goroutines to stop
	close(h.quit)
	close(h.metricsQuit)

	// Close all client connections
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// reportMetrics periodically reports hub metrics
func (h *Hub) reportMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.metricsQuit:
			h.logger.Info("Metrics reporting shutting down")
			return

		case <-ticker.C:
			h.mu.RLock()
			activeClients := len(h.clients)
			totalConnections := h.totalConnections
			messagesSent := h.messagesSent
			messagesReceived := h.messagesReceived
			h.mu.RUnlock()

			metrics := GetMetrics()
			metrics.RecordQueueDepth(int64(len(h.broadcast)))

			// Log current metrics
			h.logger.Info("WebSocket hub metrics",
				slog.Int("active_clients", activeClients),
				slog.Int64("total_connections", totalConnections),
				slog.Int64("messages_sent", messagesSent),
				slog.Int64("messages_received", messagesReceived),
				slog.Int("broadcast_queue", len(h.broadcast)),
			)
		}
	}
}

// GetHubMetrics returns current hub metrics
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
		"messages_received": h.messagesReceived,
		"connection_errors": h.connectionErrors,
	}
}
