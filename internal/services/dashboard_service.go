package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"finvis/internal/charts"
	"finvis/internal/config"
	"finvis/internal/dataprocessing"
	apierrors "finvis/internal/errors"
	"finvis/internal/infrastructure"
	"finvis/internal/layout"
	api "finvis/pkg/contracts/api/v1"
	"finvis/pkg/contracts/domain"
)

// LoadedMessage is printed to stdout the first time the workbook has been read
const LoadedMessage = "Data loaded successfully!"

// DashboardService runs load, normalize and compose and serves the result
type DashboardService struct {
	path   string
	schema config.Schema

	parser     *dataprocessing.Parser
	normalizer *dataprocessing.Normalizer
	tracer     trace.Tracer
	metrics    *infrastructure.DashboardMetrics
	logger     *slog.Logger
	stdout     io.Writer
	notify     ReloadFunc

	mu        sync.RWMutex
	dashboard *layout.Dashboard
	dataset   *api.DatasetSummary
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithTelemetry traces the pipeline stages and records dashboard metrics
func WithTelemetry(providers *infrastructure.OTelProviders, metrics *infrastructure.DashboardMetrics) Option {
	return func(s *DashboardService) {
		if providers != nil && providers.Tracer != nil {
			s.tracer = providers.Tracer
		}
		s.metrics = metrics
	}
}

// WithOutput redirects the load success message
func WithOutput(w io.Writer) Option {
	return func(s *DashboardService) {
		s.stdout = w
	}
}

// WithReloadNotifier calls fn after every Reload attempt
func WithReloadNotifier(fn ReloadFunc) Option {
	return func(s *DashboardService) {
		s.notify = fn
	}
}

// NewDashboardService creates a service for the workbook at path
func NewDashboardService(path string, schema config.Schema, logger *slog.Logger, opts ...Option) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		path:       path,
		schema:     schema,
		parser:     dataprocessing.NewParser(logger),
		normalizer: dataprocessing.NewNormalizer(logger),
		tracer:     noop.NewTracerProvider().Tracer(infrastructure.ServiceName),
		logger:     logger.With(slog.String("service", "dashboard")),
		stdout:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads and normalizes the workbook and composes the dashboard.
// Load errors are returned as *errors.AppError; the previously loaded
// dashboard, if any, is kept.
func (s *DashboardService) Load(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "dashboard.Load",
		trace.WithAttributes(attribute.String("workbook.path", s.path)))
	defer span.End()

	var wb *domain.Workbook
	err := s.stage(ctx, "load", func(context.Context) (err error) {
		wb, err = s.parser.ParseFile(s.path, s.schema)
		return err
	})
	if err != nil {
		return s.fail(ctx, err)
	}
	s.recordRows(ctx, wb)
	s.mu.RLock()
	first := s.dashboard == nil
	s.mu.RUnlock()
	if first {
		fmt.Fprintln(s.stdout, LoadedMessage)
	}

	var statements *domain.Statements
	var stats []dataprocessing.NormalizeStats
	err = s.stage(ctx, "normalize", func(context.Context) (err error) {
		statements, stats, err = s.normalizer.Normalize(wb, s.schema)
		return err
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	var dashboard *layout.Dashboard
	_ = s.stage(ctx, "compose", func(context.Context) error {
		dashboard = layout.Compose(statements, s.schema)
		return nil
	})
	s.recordCharts(ctx, dashboard)

	dataset := summarizeDataset(s.path, statements, stats)

	s.mu.Lock()
	s.dashboard = dashboard
	s.dataset = dataset
	s.mu.Unlock()

	summary := dashboard.Summarize()
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"dashboard.tabs":    summary.Tabs,
		"dashboard.charts":  summary.Charts,
		"dashboard.missing": summary.Missing,
	})
	s.logger.InfoContext(ctx, "Dashboard composed",
		slog.Int("tabs", summary.Tabs),
		slog.Int("charts", summary.Charts),
		slog.Int("missing", summary.Missing))
	return nil
}

// Reload reruns Load and reports the outcome to the reload notifier.
// trigger names what asked for it, such as "watch" or "api".
func (s *DashboardService) Reload(ctx context.Context, trigger string) (ReloadEvent, error) {
	event := ReloadEvent{Trigger: trigger, Path: s.path}
	err := s.Load(ctx)
	s.metrics.RecordReload(ctx, trigger, err)
	if err != nil {
		event.Error = err.Error()
	} else if summary, sumErr := s.Summary(); sumErr == nil {
		event.Summary = &summary
	}

	s.logger.InfoContext(ctx, "Dashboard reloaded",
		slog.String("trigger", trigger),
		slog.Bool("success", err == nil))

	if s.notify != nil {
		s.notify(ctx, event)
	}
	return event, err
}

// stage runs fn inside a child span and records its duration
func (s *DashboardService) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	s.metrics.RecordStage(ctx, name, time.Since(start), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
	}
	return err
}

func (s *DashboardService) fail(ctx context.Context, err error) error {
	infrastructure.RecordError(ctx, err)
	errType, _ := apierrors.TypeOf(err)
	s.logger.ErrorContext(ctx, "Dashboard load failed",
		slog.String("path", s.path),
		slog.String("error_type", string(errType)),
		slog.String("error", err.Error()))
	return err
}

func (s *DashboardService) recordRows(ctx context.Context, wb *domain.Workbook) {
	if s.metrics == nil {
		return
	}
	for _, sheet := range []*domain.RawSheet{wb.Income, wb.Balance, wb.CashFlow, wb.Stock} {
		s.metrics.WorkbookRowsLoaded.Add(ctx, int64(len(sheet.Rows)),
			metric.WithAttributes(attribute.String("sheet", sheet.Name)))
	}
}

func (s *DashboardService) recordCharts(ctx context.Context, d *layout.Dashboard) {
	for _, cell := range d.Cells() {
		if cell.Missing() {
			s.logger.WarnContext(ctx, "Metric not found",
				slog.String("chart", cell.ID),
				slog.String("metric", cell.Metric))
			if s.metrics != nil {
				s.metrics.MetricsMissing.Add(ctx, 1,
					metric.WithAttributes(attribute.String("metric", cell.Metric)))
			}
			continue
		}
		if s.metrics != nil {
			s.metrics.ChartsBuilt.Add(ctx, 1,
				metric.WithAttributes(attribute.String("kind", string(cell.Chart.Kind))))
		}
	}
}

func summarizeDataset(path string, s *domain.Statements, stats []dataprocessing.NormalizeStats) *api.DatasetSummary {
	tables := s.Tables()
	summary := &api.DatasetSummary{
		Path:     path,
		LoadedAt: time.Now().UTC(),
		Sheets:   make([]api.SheetSummary, len(tables)),
	}
	for i, t := range tables {
		sheet := api.SheetSummary{
			Name:    t.Name,
			Rows:    t.Len(),
			Columns: len(t.Columns),
		}
		if i < len(stats) {
			sheet.FilledCells = stats[i].FilledCells
		}
		if n := t.Len(); n > 0 {
			first, last := t.Dates[0], t.Dates[n-1]
			sheet.FirstDate, sheet.LastDate = &first, &last
		}
		summary.Sheets[i] = sheet
	}
	return summary
}

// Dashboard returns the composed dashboard
func (s *DashboardService) Dashboard() (*layout.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dashboard == nil {
		return nil, ErrNotLoaded
	}
	return s.dashboard, nil
}

// Dataset returns the summary of the loaded workbook
func (s *DashboardService) Dataset() (*api.DatasetSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrNotLoaded
	}
	return s.dataset, nil
}

// Tab returns the tab with the given ID
func (s *DashboardService) Tab(id string) (layout.Tab, error) {
	d, err := s.Dashboard()
	if err != nil {
		return layout.Tab{}, err
	}
	for _, tab := range d.Tabs {
		if tab.ID == id {
			return tab, nil
		}
	}
	return layout.Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, id)
}

// Summary counts the charts and placeholders of the dashboard
func (s *DashboardService) Summary() (api.ChartsSummary, error) {
	d, err := s.Dashboard()
	if err != nil {
		return api.ChartsSummary{}, err
	}
	sum := d.Summarize()
	return api.ChartsSummary{Charts: sum.Charts, Missing: sum.Missing, ByKind: sum.ByKind}, nil
}

// ChartSVG renders a single chart. Unknown IDs are NOT_FOUND API errors,
// placeholders for missing metrics are CHART_UNAVAILABLE.
func (s *DashboardService) ChartSVG(ctx context.Context, id string) ([]byte, error) {
	d, err := s.Dashboard()
	if err != nil {
		return nil, err
	}
	cell, ok := d.Lookup(id)
	if !ok {
		return nil, apierrors.NotFoundError("chart " + id)
	}
	if cell.Missing() {
		return nil, apierrors.ChartUnavailableError(id, cell.Message)
	}

	ctx, span := s.tracer.Start(ctx, "chart.Render",
		trace.WithAttributes(
			attribute.String("chart.id", id),
			attribute.String("chart.kind", string(cell.Chart.Kind))))
	defer span.End()

	svg, err := charts.SVG(cell.Chart)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("render chart %s: %w", id, err)
	}
	return svg, nil
}
