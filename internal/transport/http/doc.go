// Package http implements the HTTP handlers of the dashboard server.
//
// Handlers are thin: they parse and validate the request, ask the
// dashboard service for data and format the response. Errors are
// returned as RFC 7807 problem details through errors.ErrorHandler.
//
// Routes:
//
//	GET /                      tabbed dashboard page with inline SVG charts
//	GET /api/dashboard         dashboard layout as JSON, ?tab= selects one tab
//	GET /api/charts/{id}.svg   a single rendered chart
//	GET /api/health            liveness and dataset summary
//	GET /api/version           build information
//	POST /api/reload           rerun the pipeline, previous dashboard kept on failure
//	GET /metrics               Prometheus exposition
package http
