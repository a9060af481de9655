package http

import (
	"context"

	"finvis/internal/layout"
	api "finvis/pkg/contracts/api/v1"
)

// DashboardServiceInterface is what the dashboard handler needs from the
// loaded dashboard
type DashboardServiceInterface interface {
	Dashboard() (*layout.Dashboard, error)
	Tab(id string) (layout.Tab, error)
	ChartSVG(ctx context.Context, id string) ([]byte, error)
	Dataset() (*api.DatasetSummary, error)
	Summary() (api.ChartsSummary, error)
}
