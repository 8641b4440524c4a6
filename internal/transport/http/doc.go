// Package http implements the HTTP request handlers for the espressod
// daemon. It provides a thin layer between HTTP transport and the service
// layer, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No analysis logic - munging and views belong to the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Aggregate
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handlers
//
// ExperimentHandler serves the experiment lifecycle under /api/experiment:
// summary and table reads, folder loads, label attach/remove, combining,
// bundle save/open and exports. ViewsHandler serves the grouped views
// under /api/views. OperationsHandler exposes in-flight load state under
// /api/operations. HealthHandler serves the operational endpoints.
//
// # Request Validation
//
// POST bodies bind through render.Bind onto the pkg/contracts/api/v1
// request types and validate against their struct tags:
//
//	data := &loadRequest{}
//	if err := render.Bind(r, data); err != nil {
//	    h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
//	    return
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details. Service sentinels map to
// API errors (no experiment loaded → 404, load already running → 409) and
// the domain error taxonomy resolves its own status codes through the
// shared ErrorHandler:
//
//	{
//	    "type": "/errors/experiment/not-loaded",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "No experiment loaded",
//	    "instance": "/api/experiment/feeds"
//	}
//
// # Testing
//
// Handlers are tested using httptest with mock service dependencies,
// verifying both success envelopes and problem responses.
package http
