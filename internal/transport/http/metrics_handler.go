package http

import (
	"net/http"

	apierrors "finvis/internal/errors"
)

// MetricsHandler serves the Prometheus exposition
type MetricsHandler struct {
	exposition   http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler wraps the Prometheus handler; a nil handler means
// metrics are disabled
func NewMetricsHandler(exposition http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("metrics"))
		return
	}
	h.exposition.ServeHTTP(w, r)
}
