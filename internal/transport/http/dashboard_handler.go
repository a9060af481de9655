package http

import (
	"bytes"
	"embed"
	stderrors "errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"finvis/internal/charts"
	apierrors "finvis/internal/errors"
	"finvis/internal/layout"
	"finvis/internal/middleware"
	"finvis/internal/services"
	api "finvis/pkg/contracts/api/v1"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DashboardHandler serves the dashboard page, its JSON layout and single charts
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes, mounted under /api
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/dashboard", h.GetDashboard)
	r.Get("/charts/{id}.svg", h.GetChartSVG)
	return r
}

// DashboardResponse is the JSON form of the composed dashboard
type DashboardResponse struct {
	Title        string              `json:"title"`
	TabsLocation string              `json:"tabs_location"`
	Tabs         []layout.Tab        `json:"tabs"`
	Summary      api.ChartsSummary   `json:"summary"`
	Dataset      *api.DatasetSummary `json:"dataset,omitempty"`
}

// pageView and friends are the template data of the dashboard page
type pageView struct {
	Title        string
	TabsLocation string
	Tabs         []tabView
}

type tabView struct {
	ID       string
	Title    string
	Layout   string
	Heading  string
	Active   bool
	Sections []sectionView
	Grid     *gridView
}

type sectionView struct {
	Header string
	Cells  []cellView
}

type gridView struct {
	Cols      int
	CellWidth int
	MaxWidth  int
	MaxHeight int
	Cells     []cellView
}

type cellView struct {
	ID      string
	Missing bool
	Message string
	Width   int
	Height  int
	SVG     template.HTML
}

// parseRequest reads and validates the tab query parameter
func (h *DashboardHandler) parseRequest(w http.ResponseWriter, r *http.Request) (api.DashboardRequest, bool) {
	req := api.DashboardRequest{Tab: r.URL.Query().Get("tab")}
	return req, h.validator.ValidateRequest(w, r, h.errorHandler, req)
}

// GetPage handles GET /
func (h *DashboardHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	d, err := h.service.Dashboard()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	active := req.Tab
	if active == "" && len(d.Tabs) > 0 {
		active = d.Tabs[0].ID
	}

	view := pageView{Title: d.Title, TabsLocation: d.TabsLocation}
	for _, tab := range d.Tabs {
		view.Tabs = append(view.Tabs, newTabView(tab, tab.ID == active))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render dashboard page",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	d, err := h.service.Dashboard()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	summary, err := h.service.Summary()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	dataset, err := h.service.Dataset()
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	resp := DashboardResponse{
		Title:        d.Title,
		TabsLocation: d.TabsLocation,
		Tabs:         d.Tabs,
		Summary:      summary,
		Dataset:      dataset,
	}
	if req.Tab != "" {
		tab, err := h.service.Tab(req.Tab)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		resp.Tabs = []layout.Tab{tab}
	}

	render.JSON(w, r, resp)
}

// GetChartSVG handles GET /api/charts/{id}.svg
func (h *DashboardHandler) GetChartSVG(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrInvalidParameter)
		return
	}

	svg, err := h.service.ChartSVG(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// handleServiceError maps service errors to problem responses
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, services.ErrNotLoaded):
		err = apierrors.ErrServiceUnavailable
	case stderrors.Is(err, services.ErrTabNotFound):
		err = apierrors.NotFoundError("tab " + strings.TrimPrefix(err.Error(), services.ErrTabNotFound.Error()+": "))
	}
	h.errorHandler.HandleError(w, r, err)
}

func newTabView(tab layout.Tab, active bool) tabView {
	v := tabView{
		ID:      tab.ID,
		Title:   tab.Title,
		Layout:  tab.Layout,
		Heading: tab.Heading,
		Active:  active,
	}
	for _, s := range tab.Sections {
		section := sectionView{Header: s.Header}
		for _, c := range s.Cells {
			section.Cells = append(section.Cells, newCellView(c, charts.DefaultWidth, charts.DefaultHeight))
		}
		v.Sections = append(v.Sections, section)
	}
	if g := tab.Grid; g != nil {
		grid := &gridView{Cols: g.Cols, CellWidth: charts.GridWidth, MaxWidth: g.MaxWidth, MaxHeight: g.MaxHeight}
		for _, c := range g.Cells {
			grid.Cells = append(grid.Cells, newCellView(c, charts.GridWidth, charts.GridHeight))
		}
		v.Grid = grid
	}
	return v
}

func newCellView(c layout.Cell, width, height int) cellView {
	v := cellView{ID: c.ID, Missing: c.Missing(), Message: c.Message, Width: width, Height: height}
	if c.Chart != nil {
		v.Width, v.Height = c.Chart.Width, c.Chart.Height
		// Rendered by the charts package from validated numeric data
		v.SVG = template.HTML(charts.ResultSVG(c.Chart))
	}
	return v
}
