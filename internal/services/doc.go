// Package services runs the dashboard pipeline and holds its result.
//
// DashboardService loads the workbook, normalizes the four statements and
// composes the tabbed layout before the HTTP server starts. A composed
// dashboard is read-only; Reload builds a new one and swaps it in, so
// handlers always see a complete dashboard.
//
//	svc := services.NewDashboardService(cfg.Workbook.Path, cfg.Schema, logger,
//	    services.WithTelemetry(providers, metrics))
//	if err := svc.Load(ctx); err != nil {
//	    fmt.Println(errors.Diagnostic(err, cfg.Workbook.Path))
//	    os.Exit(1)
//	}
//
// WorkbookWatcher calls Reload when the workbook file changes.
// HealthService reports liveness together with the dataset summary.
package services
