package services

import (
	"context"
	"log/slog"
	"os"
	"time"

	api "finvis/pkg/contracts/api/v1"
)

// Reload triggers
const (
	TriggerWatch = "watch"
	TriggerAPI   = "api"
)

// ReloadEvent describes one reload attempt
type ReloadEvent struct {
	Trigger string             `json:"trigger"`
	Path    string             `json:"path"`
	Summary *api.ChartsSummary `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// Failed reports whether the reload kept the previous dashboard
func (e ReloadEvent) Failed() bool {
	return e.Error != ""
}

// ReloadFunc receives reload outcomes
type ReloadFunc func(ctx context.Context, event ReloadEvent)

// Reloader rebuilds the dashboard from its workbook
type Reloader interface {
	Reload(ctx context.Context, trigger string) (ReloadEvent, error)
}

// WorkbookWatcher polls the workbook file and reloads the dashboard when
// its modification time or size changes
type WorkbookWatcher struct {
	reloader Reloader
	path     string
	interval time.Duration
	logger   *slog.Logger

	modTime time.Time
	size    int64
	missing bool
}

// NewWorkbookWatcher creates a watcher for the workbook at path
func NewWorkbookWatcher(reloader Reloader, path string, interval time.Duration, logger *slog.Logger) *WorkbookWatcher {
	if logger == nil {
		logger = slog.Default()
	}
	w := &WorkbookWatcher{
		reloader: reloader,
		path:     path,
		interval: interval,
		logger:   logger.With(slog.String("component", "workbook_watcher")),
	}
	// The file as it is now is the one already loaded
	if info, err := os.Stat(path); err == nil {
		w.modTime, w.size = info.ModTime(), info.Size()
	}
	return w
}

// Run polls until ctx is cancelled
func (w *WorkbookWatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.InfoContext(ctx, "Watching workbook",
		slog.String("path", w.path),
		slog.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check reloads if the file changed since the last check and reports
// whether a reload was attempted. A file that is briefly missing, as
// when an editor replaces it, is not a change.
func (w *WorkbookWatcher) Check(ctx context.Context) bool {
	info, err := os.Stat(w.path)
	if err != nil {
		if !w.missing {
			w.logger.WarnContext(ctx, "Workbook not accessible",
				slog.String("path", w.path),
				slog.String("error", err.Error()))
		}
		w.missing = true
		return false
	}
	w.missing = false

	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return false
	}
	w.modTime, w.size = info.ModTime(), info.Size()

	w.logger.InfoContext(ctx, "Workbook changed", slog.String("path", w.path))
	// Failures are logged and notified by the reloader
	_, _ = w.reloader.Reload(ctx, TriggerWatch)
	return true
}
