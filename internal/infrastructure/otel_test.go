package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"finvis/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shutdown(t *testing.T, p *OTelProviders) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, p.Shutdown(ctx))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	// Tracing is off by default but the tracer still works
	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestOTelConfigFrom(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{TraceExporter: "stdout", EnableMetrics: false})
	assert.Equal(t, "stdout", cfg.TraceExporter)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, ServiceName, cfg.ServiceName)
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		config     *OTelConfig
		wantTracer bool
		wantMeter  bool
	}{
		{
			name: "stdout tracing with metrics",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "stdout",
				EnableMetrics:  true,
				SampleRatio:    1.0,
			},
			wantTracer: true,
			wantMeter:  true,
		},
		{
			name: "metrics disabled",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				EnableMetrics:  false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, testLogger())
			require.NoError(t, err)
			defer shutdown(t, providers)

			assert.Equal(t, tt.wantTracer, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMeter, providers.MeterProvider != nil)
			assert.Equal(t, tt.wantMeter, providers.PrometheusHTTP != nil)
			assert.NotNil(t, providers.Meter)
			assert.NotNil(t, providers.Tracer)
		})
	}

	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, testLogger())
	assert.Error(t, err)
}

func TestTraceCorrelation(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)

	// the span trace id is used when no request id was stored
	assert.Equal(t, traceID, GetTraceID(ctx))
	assert.Equal(t, "req-1", GetTraceID(WithTraceID(ctx, "req-1")))

	SetSpanAttributes(ctx, map[string]interface{}{
		"sheet": "Balance Sheet",
		"rows":  4,
		"ratio": 0.5,
		"ok":    true,
	})
	RecordError(ctx, assert.AnError)
	assert.True(t, span.IsRecording())
}

func TestDashboardMetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer shutdown(t, providers)

	metrics, err := CreateDashboardMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.WorkbookRowsLoaded.Add(ctx, 4, metric.WithAttributes(attribute.String("sheet", "Balance Sheet")))
	metrics.ChartsBuilt.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "hexbin")))
	metrics.RecordStage(ctx, "load", 20*time.Millisecond, nil)
	metrics.RecordReload(ctx, "watch", assert.AnError)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "workbook_rows_loaded")
	assert.Contains(t, string(body), "charts_built")
	assert.Contains(t, string(body), "pipeline_stage_duration_seconds")
	assert.Contains(t, string(body), "dashboard_reloads_total")
	assert.Contains(t, string(body), `trigger="watch"`)
}

func TestRecordStageNilMetrics(t *testing.T) {
	var m *DashboardMetrics
	assert.NotPanics(t, func() {
		m.RecordStage(context.Background(), "load", time.Second, assert.AnError)
		m.RecordReload(context.Background(), "api", nil)
	})
}
