package services

import (
	"github.com/stretchr/testify/mock"
)

// MockWebSocketHub is a mock for WebSocketHub interface
type MockWebSocketHub struct {
	mock.Mock
}

func (m *MockWebSocketHub) BroadcastRefresh(source string, components []string) {
	m.Called(source, components)
}

func (m *MockWebSocketHub) BroadcastError(code, message string, details interface{}, fatal bool) {
	m.Called(code, message, details, fatal)
}
