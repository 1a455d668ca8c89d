package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"regreport/internal/infrastructure"
	"regreport/pkg/contracts"
)

// HealthService provides health check functionality
type HealthService struct {
	version   contracts.VersionInfo
	reports   *ReportService
	system    *infrastructure.SystemMetrics
	startTime time.Time
	logger    *slog.Logger
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

// NewHealthService creates a new health service. system may be nil when
// metrics are disabled.
func NewHealthService(reports *ReportService, system *infrastructure.SystemMetrics, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	version := contracts.GetVersionInfo()
	logger.Info("health service initialized",
		slog.String("version", version.Version),
		slog.String("build_time", version.BuildTime),
		slog.String("git_commit", version.GitCommit))

	return &HealthService{
		version:   version,
		reports:   reports,
		system:    system,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "health check",
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
	}
}

// ReadinessCheck reports whether the pipeline can accept uploads
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Services: map[string]interface{}{
			"pipeline": hs.checkPipeline(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	runtimeInfo := map[string]interface{}{
		"uptime":     time.Since(hs.startTime).Seconds(),
		"go_version": runtime.Version(),
		"goroutines": runtime.NumGoroutine(),
	}
	if hs.system != nil {
		for k, v := range hs.system.Collect(ctx).FormatStats() {
			runtimeInfo[k] = v
		}
	}

	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version.Version,
		Runtime:   runtimeInfo,
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return hs.version
}

func (hs *HealthService) checkPipeline() ServiceHealth {
	if hs.reports == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "report pipeline not initialized",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "report pipeline is ready",
		Uptime:  time.Since(hs.startTime).String(),
	}
}
