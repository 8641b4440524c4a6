package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "espresso/internal/errors"
	"espresso/internal/middleware"
	"espresso/internal/pipeline"
	"espresso/internal/services"
	api "espresso/pkg/contracts/api/v1"
)

// validate checks request bodies against their contract tags. Error
// messages carry the JSON field names.
var validate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ExperimentHandler handles experiment lifecycle HTTP requests: loading,
// table reads, labels, combining, bundles and exports.
type ExperimentHandler struct {
	experiments  ExperimentServiceInterface
	exports      ExportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExperimentHandler creates a new experiment handler
func NewExperimentHandler(experiments ExperimentServiceInterface, exports ExportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExperimentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExperimentHandler{
		experiments:  experiments,
		exports:      exports,
		logger:       logger.With(slog.String("handler", "experiment")),
		errorHandler: errorHandler,
	}
}

// Routes returns the experiment routes
func (h *ExperimentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.Summary)
	r.Get("/feeds", h.Feeds)
	r.Get("/flies", h.Flies)

	r.Post("/load", middleware.LoadTraceHandler(h.Load))

	r.Post("/labels", h.AttachLabel)
	r.Delete("/labels", h.RemoveLabels)

	r.Post("/combine", h.Combine)
	r.Post("/save", h.Save)
	r.Post("/open", h.Open)
	r.Post("/export", h.Export)

	return r
}

// Request binders wrapping the API contracts with validation.

type loadRequest struct {
	api.LoadRequest
}

func (b *loadRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.LoadRequest)
}

type labelAttachRequest struct {
	api.LabelAttachRequest
}

func (b *labelAttachRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.LabelAttachRequest)
}

type labelRemoveRequest struct {
	api.LabelRemoveRequest
}

func (b *labelRemoveRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.LabelRemoveRequest)
}

type combineRequest struct {
	api.CombineRequest
}

func (b *combineRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.CombineRequest)
}

type saveRequest struct {
	api.SaveRequest
}

func (b *saveRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.SaveRequest)
}

type openRequest struct {
	api.OpenRequest
}

func (b *openRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.OpenRequest)
}

type exportRequest struct {
	api.ExportRequest
}

func (b *exportRequest) Bind(r *http.Request) error {
	return validate.Struct(&b.ExportRequest)
}

// Summary handles GET /api/experiment
func (h *ExperimentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.experiments.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// Feeds handles GET /api/experiment/feeds
func (h *ExperimentHandler) Feeds(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching feed table",
		slog.String("request_id", reqID))

	feeds, err := h.experiments.Feeds(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   feeds,
		"count":  len(feeds),
	})
}

// Flies handles GET /api/experiment/flies
func (h *ExperimentHandler) Flies(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching fly table",
		slog.String("request_id", reqID))

	flies, err := h.experiments.Flies(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   flies,
		"count":  len(flies),
	})
}

// Load handles POST /api/experiment/load. The load runs to completion
// before responding; progress streams over the WebSocket in the meantime.
func (h *ExperimentHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &loadRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "load request",
		slog.String("request_id", reqID),
		slog.String("folder", data.Folder),
		slog.Float64("duration_seconds", data.DurationSeconds))

	resp, err := h.experiments.Load(ctx, data.Folder, data.DurationSeconds)
	if err != nil {
		h.logger.ErrorContext(ctx, "load failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("folder", data.Folder))

		if errors.Is(err, pipeline.ErrLoadInProgress) {
			h.errorHandler.HandleError(w, r, apierrors.ErrLoadRunning)
			return
		}

		// The taxonomy and context errors carry their own status; anything
		// else is a failed load, not a broken server.
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.LoadFailedError(err))
		return
	}

	summary, err := h.experiments.Summary(ctx)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "success",
		"operation": resp,
		"summary":   summary,
	})
}

// AttachLabel handles POST /api/experiment/labels
func (h *ExperimentHandler) AttachLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &labelAttachRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "attaching label",
		slog.String("request_id", reqID),
		slog.String("label", data.Name),
		slog.String("kind", string(data.Spec.Kind)))

	summary, err := h.experiments.AttachLabel(ctx, data.Name, data.Spec)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"label":   data.Name,
		"summary": summary,
	})
}

// RemoveLabels handles DELETE /api/experiment/labels. An empty body, or an
// empty names list, removes every attached label.
func (h *ExperimentHandler) RemoveLabels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &labelRemoveRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := render.Bind(r, data); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
			return
		}
	}

	h.logger.InfoContext(ctx, "removing labels",
		slog.String("request_id", reqID),
		slog.Int("name_count", len(data.Names)))

	removed, err := h.experiments.RemoveLabels(ctx, data.Names...)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"removed": removed,
		"count":   len(removed),
	})
}

// Combine handles POST /api/experiment/combine
func (h *ExperimentHandler) Combine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &combineRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "combining experiment",
		slog.String("request_id", reqID),
		slog.String("bundle_path", data.BundlePath))

	summary, err := h.experiments.Combine(ctx, data.BundlePath)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"summary": summary,
	})
}

// Save handles POST /api/experiment/save
func (h *ExperimentHandler) Save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &saveRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "saving experiment bundle",
		slog.String("request_id", reqID),
		slog.String("path", data.Path))

	if err := h.experiments.Save(ctx, data.Path); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"path":   data.Path,
	})
}

// Open handles POST /api/experiment/open
func (h *ExperimentHandler) Open(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &openRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "opening experiment bundle",
		slog.String("request_id", reqID),
		slog.String("path", data.Path))

	summary, err := h.experiments.Open(ctx, data.Path)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"summary": summary,
	})
}

// Export handles POST /api/experiment/export
func (h *ExperimentHandler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	data := &exportRequest{}
	if err := render.Bind(r, data); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "export request",
		slog.String("request_id", reqID),
		slog.String("format", data.Format),
		slog.String("path", data.Path),
		slog.Any("views", data.Views))

	result, err := h.exports.Export(ctx, data.ExportRequest)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownView):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("views", err.Error()))
		case errors.Is(err, services.ErrUnknownExportFormat):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		default:
			h.handleServiceError(w, r, err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"format": result.Format,
		"files":  result.Files,
	})
}

// handleServiceError maps service failures onto API errors. The domain
// taxonomy resolves its own status codes through the error handler.
func (h *ExperimentHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNoExperiment) {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoExperiment)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
