package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats holds a snapshot of process statistics
type SystemStats struct {
	GoRoutines    int64         `json:"goroutines"`
	MemoryUsage   int64         `json:"memory_usage_bytes"`
	MemorySystem  int64         `json:"memory_system_bytes"`
	GCCount       uint32        `json:"gc_count"`
	CPUCount      int           `json:"cpu_count"`
	ProcessUptime time.Duration `json:"-"`
	Timestamp     time.Time     `json:"timestamp"`
}

// SystemMetrics samples the Go runtime and publishes gauges on the meter.
type SystemMetrics struct {
	startTime time.Time

	goRoutines    metric.Int64Gauge
	memoryUsage   metric.Int64Gauge
	memorySystem  metric.Int64Gauge
	processUptime metric.Float64Gauge
}

// NewSystemMetrics creates the runtime gauges
func NewSystemMetrics(meter metric.Meter) (*SystemMetrics, error) {
	sm := &SystemMetrics{startTime: time.Now()}
	var err error

	if sm.goRoutines, err = meter.Int64Gauge("system_goroutines",
		metric.WithDescription("Number of active goroutines")); err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}
	if sm.memoryUsage, err = meter.Int64Gauge("system_memory_usage_bytes",
		metric.WithDescription("Heap bytes in use"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create memory gauge: %w", err)
	}
	if sm.memorySystem, err = meter.Int64Gauge("system_memory_system_bytes",
		metric.WithDescription("Bytes obtained from the OS"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create system memory gauge: %w", err)
	}
	if sm.processUptime, err = meter.Float64Gauge("system_process_uptime_seconds",
		metric.WithDescription("Seconds since process start"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return sm, nil
}

// Collect takes a snapshot and records it
func (sm *SystemMetrics) Collect(ctx context.Context) *SystemStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := &SystemStats{
		GoRoutines:    int64(runtime.NumGoroutine()),
		MemoryUsage:   int64(memStats.Alloc),
		MemorySystem:  int64(memStats.Sys),
		GCCount:       memStats.NumGC,
		CPUCount:      runtime.NumCPU(),
		ProcessUptime: time.Since(sm.startTime),
		Timestamp:     time.Now(),
	}

	sm.goRoutines.Record(ctx, stats.GoRoutines)
	sm.memoryUsage.Record(ctx, stats.MemoryUsage)
	sm.memorySystem.Record(ctx, stats.MemorySystem)
	sm.processUptime.Record(ctx, stats.ProcessUptime.Seconds())

	return stats
}

// Start samples every interval until ctx is cancelled.
func (sm *SystemMetrics) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sm.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			sm.Collect(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// FormatStats returns a map suitable for the health endpoint
func (stats *SystemStats) FormatStats() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       stats.GoRoutines,
		"memory_usage_mb":  stats.MemoryUsage / 1024 / 1024,
		"memory_system_mb": stats.MemorySystem / 1024 / 1024,
		"gc_count":         stats.GCCount,
		"cpu_count":        stats.CPUCount,
		"uptime_seconds":   int64(stats.ProcessUptime.Seconds()),
	}
}
