package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	api "finvis/pkg/contracts/api/v1"
)

// DatasetProvider exposes what the dashboard service has loaded
type DatasetProvider interface {
	Dataset() (*api.DatasetSummary, error)
	Summary() (api.ChartsSummary, error)
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	data      DatasetProvider
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    float64                `json:"uptime_seconds"`
	Dataset   *api.DatasetSummary    `json:"dataset,omitempty"`
	Charts    *api.ChartsSummary     `json:"charts,omitempty"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
}

// Health states
const (
	StatusOK      = "ok"
	StatusLoading = "loading"
)

// NewHealthService creates a new health service
func NewHealthService(version string, data DatasetProvider, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		data:      data,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// HealthCheck reports liveness together with the dataset summary.
// Before the dashboard is loaded the status is "loading".
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
		Uptime:    time.Since(hs.startTime).Seconds(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
	}

	dataset, err := hs.data.Dataset()
	if err != nil {
		status.Status = StatusLoading
		hs.logger.DebugContext(ctx, "Health check before load", slog.String("error", err.Error()))
		return status
	}
	status.Dataset = dataset

	if summary, err := hs.data.Summary(); err == nil {
		status.Charts = &summary
	}
	return status
}
