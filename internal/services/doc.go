// Package services implements the business logic layer of the ESPRESSO
// analysis server. It sits between the HTTP handlers and the experiment
// aggregate, ensuring that session rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. One lock owner: the experiment service guards the aggregate
//	5. Domain-focused methods that encapsulate session rules
//
// # Available Services
//
// The package provides these core services:
//
//	- ExperimentService: owns the current aggregate; load, labels,
//	  combine, save/open
//	- ViewsService: grouped analysis views over the current aggregate
//	- ExportService: CSV and Excel exports of tables and views
//	- HealthService: system health checks and statistics
//
// # Concurrency
//
// The experiment aggregate itself is not safe for concurrent mutation, so
// ExperimentService serializes access with a RWMutex: reads (summary,
// tables, views, exports) share the lock; loads, label changes, combines
// and opens take it exclusively. View calculators receive table copies and
// never touch the aggregate directly.
//
// # Error Handling
//
// Services return domain-specific errors that handlers transform:
//
//	- ErrNoExperiment before any aggregate is installed
//	- pipeline.ErrLoadInProgress when a second load is requested
//	- AppError values from the load/label/bundle machinery, carrying
//	  their taxonomy type for status-code mapping
//
// # Testing
//
// Services are tested against real aggregates loaded from t.TempDir()
// fixtures; the WebSocket hub is mocked:
//
//	hub := new(MockWebSocketHub)
//	hub.On("BroadcastRefresh", mock.Anything, mock.Anything).Return()
//	svc := NewExperimentService(manager, hub, logger)
package services
