package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "espresso/internal/errors"
	"espresso/internal/middleware"
	"espresso/internal/pipeline"
)

// LoadOperationReader provides read access to in-flight load operations.
// Finished loads leave the registry; their outcome is the load response.
type LoadOperationReader interface {
	GetOperation(id string) (*pipeline.OperationState, error)
	ListOperations() []*pipeline.OperationState
	Active() (string, bool)
}

// OperationsHandler handles load-operation status HTTP requests
type OperationsHandler struct {
	manager      LoadOperationReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewOperationsHandler creates a new operations handler
func NewOperationsHandler(manager LoadOperationReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *OperationsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationsHandler{
		manager:      manager,
		logger:       logger.With(slog.String("handler", "operations")),
		errorHandler: errorHandler,
	}
}

// Routes returns the operations routes
func (h *OperationsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListOperations)
	r.Get("/active", h.ActiveOperation)
	r.Get("/{id}", h.GetOperation)

	return r
}

// ListOperations handles GET /api/operations
func (h *OperationsHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	operations := h.manager.ListOperations()

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   operations,
		"count":  len(operations),
	})
}

// ActiveOperation handles GET /api/operations/active
func (h *OperationsHandler) ActiveOperation(w http.ResponseWriter, r *http.Request) {
	id, running := h.manager.Active()

	render.JSON(w, r, map[string]interface{}{
		"running": running,
		"id":      id,
	})
}

// GetOperation handles GET /api/operations/{id}
func (h *OperationsHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "id")
	reqID := middleware.GetReqID(r.Context())

	state, err := h.manager.GetOperation(operationID)
	if err != nil {
		h.logger.WarnContext(r.Context(), "operation lookup failed",
			slog.String("operation_id", operationID),
			slog.String("request_id", reqID))

		if errors.Is(err, pipeline.ErrOperationNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.ErrOperationNotFound)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, state)
}
