// Package api contains the HTTP contract of the dashboard server.
// Version v1 is the only API version.
package api

import (
	"time"
)

// DashboardRequest holds the query parameters of GET /api/dashboard
type DashboardRequest struct {
	Tab string `json:"tab" query:"tab" validate:"omitempty,oneof=overview key-metrics heatmap"`
}

// DatasetSummary describes the loaded workbook
type DatasetSummary struct {
	Path     string         `json:"path"`
	LoadedAt time.Time      `json:"loaded_at"`
	Sheets   []SheetSummary `json:"sheets"`
}

// SheetSummary describes one normalized sheet
type SheetSummary struct {
	Name        string     `json:"name"`
	Rows        int        `json:"rows"`
	Columns     int        `json:"columns"`
	FirstDate   *time.Time `json:"first_date,omitempty"`
	LastDate    *time.Time `json:"last_date,omitempty"`
	FilledCells int        `json:"filled_cells"`
}

// ChartsSummary counts the composed charts
type ChartsSummary struct {
	Charts  int            `json:"charts"`
	Missing int            `json:"missing"`
	ByKind  map[string]int `json:"by_kind"`
}
