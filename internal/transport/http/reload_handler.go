package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	apierrors "finvis/internal/errors"
	"finvis/internal/services"
)

// ReloadHandler rebuilds the dashboard on request
type ReloadHandler struct {
	reloader     services.Reloader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReloadHandler creates a new reload handler
func NewReloadHandler(reloader services.Reloader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReloadHandler {
	return &ReloadHandler{
		reloader:     reloader,
		logger:       logger.With(slog.String("handler", "reload")),
		errorHandler: errorHandler,
	}
}

// Reload handles POST /api/reload. A workbook that no longer loads is
// reported as a problem; the previous dashboard stays in place.
func (h *ReloadHandler) Reload(w http.ResponseWriter, r *http.Request) {
	event, err := h.reloader.Reload(r.Context(), services.TriggerAPI)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, event)
}
