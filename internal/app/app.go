package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"espresso/internal/config"
	apierrors "espresso/internal/errors"
	"espresso/internal/infrastructure"
	customMiddleware "espresso/internal/middleware"
	"espresso/internal/pipeline"
	"espresso/internal/services"
	handlers "espresso/internal/transport/http"
	"espresso/internal/views"
	ws "espresso/internal/websocket"
	"espresso/pkg/contracts"
	"espresso/pkg/contracts/events"
)

// AppName names the daemon in startup logs.
const AppName = "espressod"

// Application represents the main application container
type Application struct {
	Config *config.Config
	Paths  *config.Paths
	Router *chi.Mux
	Server *http.Server

	WebSocketHub      *ws.Hub
	Manager           *pipeline.Manager
	ExperimentService *services.ExperimentService
	ViewsService      *services.ViewsService
	ExportService     *services.ExportService
	HealthService     *services.HealthService

	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version))

	// Resolve and create all data directories before anything touches them
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution()

	// Initialize OpenTelemetry
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	// Initialize WebSocket OpenTelemetry metrics
	if err := ws.InitOTelMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize WebSocket OpenTelemetry metrics: %w", err)
	}

	// Create application
	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
	}

	// Initialize services in order
	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Setup router
	app.setupRouter()

	// Create HTTP server
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	// Initialize WebSocket hub and start its goroutines
	hub := ws.NewHub(a.Logger)
	hub.Start()
	a.WebSocketHub = hub

	// Initialize the load pipeline manager
	a.Manager = pipeline.NewManager(hub, a.Logger, nil)

	// Initialize the experiment service owning the loaded aggregate
	a.ExperimentService = services.NewExperimentService(a.Manager, hub, a.Logger)

	// Grouped views and exports share one calculator
	calc := views.NewCalculator(a.Logger, views.CalculatorConfig{})
	a.ViewsService = services.NewViewsService(a.ExperimentService, calc, a.Logger)
	a.ExportService = services.NewExportService(a.ExperimentService, calc, a.Paths, a.Logger)

	// Initialize health service with build information
	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		contracts.BuildTime,
		contracts.GitCommit,
		a.Paths,
		a.ExperimentService,
		a.Manager,
		a.WebSocketHub,
		a.Logger,
	)

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Apply MINIMAL middleware that won't interfere with WebSocket.
	// These are safe because they don't wrap the ResponseWriter.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket route with minimal middleware and tracing.
	// MUST be registered after minimal middleware but before the group.
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	// Create a route group for everything else with FULL middleware
	r.Group(func(r chi.Router) {
		// Ordering: RequestID → RealIP → OTel → Metrics → Logger → Recoverer

		// OpenTelemetry middleware for tracing and metrics
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		// Pipeline metrics middleware
		pipelineMetrics, _ := infrastructure.CreatePipelineMetrics(a.OTelProviders.Meter)
		r.Use(customMiddleware.PipelineMetricsMiddleware(pipelineMetrics))

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		// NOTE: Timeout middleware applied per route group below, loads get a longer budget
		r.Use(customMiddleware.SecurityHeaders)

		// CORS middleware, configured for the plotting frontend
		corsConfig := a.getCORSConfig()
		r.Use(customMiddleware.CORS(corsConfig))

		// Rate limiting
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		// Now register all API routes within this group
		a.setupAPIRoutes(r)
	})

	// Add Prometheus metrics endpoint (outside the middleware group for performance)
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// API routes with common middleware
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.NewValidationMiddleware(a.Logger, errorHandler).ValidateRequest)

		// Unknown API paths answer problem+json like every other API error
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		// Apply the standard timeout to read-only endpoints
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

			// Health handler
			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/health/detailed", healthHandler.DetailedHealth)
			r.Get("/version", healthHandler.Version)
			r.Get("/stats", healthHandler.SystemStats)

			// Grouped views over the loaded experiment
			viewsHandler := handlers.NewViewsHandler(a.ViewsService, a.Logger, errorHandler)
			r.Mount("/views", viewsHandler.Routes())

			// Load operation status
			operationsHandler := handlers.NewOperationsHandler(a.Manager, a.Logger, errorHandler)
			r.Mount("/operations", operationsHandler.Routes())
		})

		// Experiment endpoints get the load timeout: POST /experiment/load
		// answers in-band after the pipeline finishes, and combine/open/export
		// rewrite whole tables.
		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.LoadTimeout, a.Logger))

			experimentHandler := handlers.NewExperimentHandler(a.ExperimentService, a.ExportService, a.Logger, errorHandler)
			r.Mount("/experiment", experimentHandler.Routes())
		})
	})
}

// getCORSConfig returns CORS configuration based on environment
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	isDevelopment := a.isDevelopmentMode()

	corsConfig := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	selfOrigins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}

	if isDevelopment {
		// Development mode: allow the plotting frontend dev server
		corsConfig.AllowedOrigins = append([]string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}, selfOrigins...)
		a.Logger.Info("CORS configured for development mode",
			slog.Any("allowed_origins", corsConfig.AllowedOrigins))
	} else {
		// Production mode: same origin plus whatever the deployment configures
		corsConfig.AllowedOrigins = selfOrigins
		if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
			corsConfig.AllowedOrigins = append(corsConfig.AllowedOrigins, a.Config.Security.AllowedOrigins...)
		}
		a.Logger.Info("CORS configured for production mode",
			slog.Any("allowed_origins", corsConfig.AllowedOrigins))
	}

	return corsConfig
}

// isDevelopmentMode detects if we're running in development mode
func (a *Application) isDevelopmentMode() bool {
	if env := os.Getenv("GO_ENV"); env == "development" {
		return true
	}
	if env := os.Getenv("ENVIRONMENT"); env == "development" {
		return true
	}
	return a.Config.Logging.Development
}

// createServer creates the HTTP server. The write deadline has to cover a
// full synchronous load, so it stretches to the load timeout; route groups
// apply the tighter per-request timeouts.
func (a *Application) createServer() {
	writeTimeout := a.Config.Server.WriteTimeout
	if a.Config.Server.LoadTimeout > writeTimeout {
		writeTimeout = a.Config.Server.LoadTimeout
	}

	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run starts the application and blocks until an interrupt arrives or the
// server fails. Serving and shutdown run under one errgroup so a listener
// error tears the whole daemon down.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.RunContext(ctx)
}

// RunContext serves until ctx is cancelled or the server fails.
func (a *Application) RunContext(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", a.Paths.ExecutableDir),
		slog.String("input_dir", a.Paths.InputDir),
		slog.String("bundles_dir", a.Paths.BundlesDir),
		slog.String("exports_dir", a.Paths.ExportsDir),
		slog.String("logs_dir", a.Paths.LogsDir))

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Shutdown gets a fresh context; gctx is already cancelled.
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Tell connected clients the daemon is going away while the server
	// drains in-flight requests
	a.WebSocketHub.Broadcast(string(events.MessageTypeSystemStatus), map[string]string{"status": "shutting_down"})

	// Stop server
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Stop background services
	a.WebSocketHub.Stop()

	// Shutdown OpenTelemetry providers
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connections
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Extract any available request ID (might not have middleware)
	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = fmt.Sprintf("ws-%d", time.Now().UnixNano())
	}

	ctx := infrastructure.WithTraceID(r.Context(), reqID)
	a.Logger.InfoContext(ctx, "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("host", r.Host))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// No origin means a non-browser client (curl, Go client)
			if origin == "" {
				return true
			}

			// In development mode, be more permissive
			if a.isDevelopmentMode() {
				return true
			}

			// In production, validate against allowed origins
			corsConfig := a.getCORSConfig()
			for _, allowed := range corsConfig.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}

			a.Logger.WarnContext(ctx, "WebSocket origin not allowed",
				slog.String("origin", origin),
				slog.Any("allowed_origins", corsConfig.AllowedOrigins))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			a.Logger.ErrorContext(ctx, "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.ErrorContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	// Create a new client with trace ID and register with hub
	client := ws.NewClientWithTrace(a.WebSocketHub, conn, reqID, a.Logger)
	a.WebSocketHub.Register(client)

	a.Logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("request_id", reqID))

	// Start client goroutines with proper error handling
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.Logger.ErrorContext(ctx, "WebSocket write pump panic",
					slog.Any("panic", rec),
					slog.String("request_id", reqID))
			}
		}()
		client.WritePump()
	}()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				a.Logger.ErrorContext(ctx, "WebSocket read pump panic",
					slog.Any("panic", rec),
					slog.String("request_id", reqID))
			}
		}()
		client.ReadPump()
	}()
}

// performStartupHealthCheck verifies the data directories are writable
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	var warnings []string

	directories := map[string]string{
		"Data":    a.Paths.DataDir,
		"Input":   a.Paths.InputDir,
		"Exports": a.Paths.ExportsDir,
		"Bundles": a.Paths.BundlesDir,
		"Logs":    a.Paths.LogsDir,
	}

	for name, dir := range directories {
		// Try to create a test file to verify write access
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not writable: %s", name, dir))
		} else {
			os.Remove(testFile)
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
