package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"espresso/internal/config"
	"espresso/internal/pipeline"
	ws "espresso/internal/websocket"
)

// HealthService provides health check functionality
type HealthService struct {
	version     string
	buildTime   string
	gitCommit   string
	paths       *config.Paths
	experiments *ExperimentService
	manager     *pipeline.Manager
	hub         *ws.Hub
	startTime   time.Time
	logger      *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	InputFiles       int     `json:"input_files"`
	InputSizeBytes   int64   `json:"input_size_bytes"`
	BundleFiles      int     `json:"bundle_files"`
	WebSocketClients int     `json:"websocket_clients"`
	LoadsRecorded    int     `json:"loads_recorded"`
	ExperimentLoaded bool    `json:"experiment_loaded"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, paths *config.Paths, experiments *ExperimentService, manager *pipeline.Manager, hub *ws.Hub, logger *slog.Logger) *HealthService {
	return NewHealthServiceWithBuildInfo(version, "", "", paths, experiments, manager, hub, logger)
}

// NewHealthServiceWithBuildInfo creates a new health service with build information
func NewHealthServiceWithBuildInfo(version, buildTime, gitCommit string, paths *config.Paths, experiments *ExperimentService, manager *pipeline.Manager, hub *ws.Hub, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("git_commit", gitCommit))

	return &HealthService{
		version:     version,
		buildTime:   buildTime,
		gitCommit:   gitCommit,
		paths:       paths,
		experiments: experiments,
		manager:     manager,
		hub:         hub,
		startTime:   time.Now(),
		logger:      logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["data"] = hs.checkDataHealth()
	status.Services["websocket"] = hs.checkWebSocketHealth()
	status.Services["pipeline"] = hs.checkPipelineHealth()
	status.Services["experiment"] = hs.checkExperimentHealth()

	allReady := true
	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			allReady = false
			break
		}
	}

	if !allReady {
		status.Status = "not_ready"
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}

// SystemStats returns system statistics
func (hs *HealthService) SystemStats(ctx context.Context) (SystemStats, error) {
	var inputFiles int
	var inputSize int64
	var bundleFiles int

	if hs.paths != nil {
		filepath.Walk(hs.paths.InputDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				inputFiles++
				inputSize += info.Size()
			}
			return nil
		})
		filepath.Walk(hs.paths.BundlesDir, func(path string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				bundleFiles++
			}
			return nil
		})
	}

	stats := SystemStats{
		UptimeSeconds:  time.Since(hs.startTime).Seconds(),
		InputFiles:     inputFiles,
		InputSizeBytes: inputSize,
		BundleFiles:    bundleFiles,
		GoVersion:      runtime.Version(),
		OS:             runtime.GOOS,
		Arch:           runtime.GOARCH,
	}
	if hs.hub != nil {
		stats.WebSocketClients = hs.hub.ClientCount()
	}
	if hs.manager != nil {
		stats.LoadsRecorded = len(hs.manager.ListOperations())
	}
	if hs.experiments != nil {
		stats.ExperimentLoaded = hs.experiments.Loaded()
	}

	return stats, nil
}

// checkDataHealth checks that the assay input directory is usable
func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.paths == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "paths not configured",
		}
	}

	inputDir := hs.paths.InputDir
	if _, err := os.Stat(inputDir); os.IsNotExist(err) {
		return ServiceHealth{
			Status:  "not_ready",
			Message: fmt.Sprintf("Input directory not found: %s", inputDir),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "Assay data directories are accessible",
	}
}

// checkWebSocketHealth checks WebSocket service health
func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.hub == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "WebSocket hub not initialized",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("WebSocket hub serving %d clients", hs.hub.ClientCount()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

// checkPipelineHealth checks load pipeline health
func (hs *HealthService) checkPipelineHealth() ServiceHealth {
	if hs.manager == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "pipeline manager not initialized",
		}
	}

	if id, active := hs.manager.Active(); active {
		return ServiceHealth{
			Status:  "ready",
			Message: fmt.Sprintf("load operation %s in progress", id),
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "pipeline idle",
	}
}

// checkExperimentHealth reports whether an aggregate is installed. An empty
// session is still ready; the message tells the two states apart.
func (hs *HealthService) checkExperimentHealth() ServiceHealth {
	if hs.experiments == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "experiment service not initialized",
		}
	}

	if hs.experiments.Loaded() {
		return ServiceHealth{
			Status:  "ready",
			Message: "experiment loaded",
		}
	}

	return ServiceHealth{
		Status:  "ready",
		Message: "no experiment loaded",
	}
}

// GetDetailedHealth returns comprehensive health information
func (hs *HealthService) GetDetailedHealth(ctx context.Context) map[string]interface{} {
	stats, _ := hs.SystemStats(ctx)

	return map[string]interface{}{
		"health":    hs.HealthCheck(ctx),
		"readiness": hs.ReadinessCheck(ctx),
		"liveness":  hs.LivenessCheck(ctx),
		"stats":     stats,
	}
}
