package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "espresso/internal/errors"
	"espresso/internal/middleware"
	"espresso/internal/services"
	"espresso/internal/views"
)

// ViewsHandler handles grouped-view HTTP requests for the statistics and
// plotting collaborators.
type ViewsHandler struct {
	views        ViewsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewViewsHandler creates a new views handler
func NewViewsHandler(service ViewsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ViewsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewsHandler{
		views:        service,
		logger:       logger.With(slog.String("handler", "views")),
		errorHandler: errorHandler,
	}
}

// Routes returns the views routes
func (h *ViewsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/feed-totals", h.FeedTotals)
	r.Get("/latency", h.Latency)
	r.Get("/percent-feeding", h.PercentFeeding)

	return r
}

// FeedTotals handles GET /api/views/feed-totals
func (h *ViewsHandler) FeedTotals(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching feed totals view",
		slog.String("request_id", reqID))

	rows, err := h.views.FeedTotals(r.Context())
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// Latency handles GET /api/views/latency
func (h *ViewsHandler) Latency(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching latency view",
		slog.String("request_id", reqID))

	rows, err := h.views.Latency(r.Context())
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// PercentFeeding handles GET /api/views/percent-feeding. Query parameters:
// group_column selects the grouping column (default Genotype), start_min
// and end_min bound the window in minutes since experiment start.
func (h *ViewsHandler) PercentFeeding(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	opts := views.PercentFeedingOptions{
		GroupBy: r.URL.Query().Get("group_column"),
	}

	startMin, ok := h.parseMinutes(w, r, "start_min")
	if !ok {
		return
	}
	endMin, ok := h.parseMinutes(w, r, "end_min")
	if !ok {
		return
	}
	opts.StartMinutes = startMin
	opts.EndMinutes = endMin

	h.logger.InfoContext(r.Context(), "fetching percent feeding view",
		slog.String("request_id", reqID),
		slog.String("group_column", opts.GroupBy),
		slog.Float64("start_min", opts.StartMinutes),
		slog.Float64("end_min", opts.EndMinutes))

	rows, err := h.views.PercentFeeding(r.Context(), opts)
	if err != nil {
		h.handleViewError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
		"params": map[string]interface{}{
			"group_column": opts.GroupBy,
			"start_min":    opts.StartMinutes,
			"end_min":      opts.EndMinutes,
		},
	})
}

// parseMinutes reads a non-negative float query parameter, zero when absent.
func (h *ViewsHandler) parseMinutes(w http.ResponseWriter, r *http.Request, param string) (float64, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return 0, true
	}

	minutes, err := strconv.ParseFloat(value, 64)
	if err != nil || minutes < 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation(param,
			param+" must be a non-negative number of minutes"))
		return 0, false
	}
	return minutes, true
}

// handleViewError maps view failures onto API errors. Window and grouping
// defects arrive as user-input taxonomy errors and resolve to 400s.
func (h *ViewsHandler) handleViewError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoExperiment) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoExperiment)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
