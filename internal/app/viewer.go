package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/chromedp/chromedp"

	"finvis/internal/config"
	"finvis/internal/errors"
)

// Viewer displays the dashboard served at a URL
type Viewer interface {
	Open(ctx context.Context, url string) error
}

// NewViewer returns the viewer for cfg.Mode
func NewViewer(cfg config.ViewerConfig, logger *slog.Logger, out io.Writer) (Viewer, error) {
	logger = logger.With(slog.String("component", "viewer"))
	switch cfg.Mode {
	case config.ViewerBrowser, "":
		return &BrowserViewer{logger: logger}, nil
	case config.ViewerChrome:
		return &ChromeViewer{cfg: cfg, logger: logger}, nil
	case config.ViewerNone:
		return &URLViewer{out: out}, nil
	default:
		return nil, errors.NewViewerError(fmt.Sprintf("unknown viewer mode %q", cfg.Mode), nil)
	}
}

// URLViewer only prints where the dashboard is served
type URLViewer struct {
	out io.Writer
}

// Open prints url
func (v *URLViewer) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintf(v.out, "Dashboard available at %s\n", url)
	return err
}

// BrowserViewer opens the URL with the platform's default browser
type BrowserViewer struct {
	logger *slog.Logger
}

// Open tries each platform opener until one starts
func (v *BrowserViewer) Open(ctx context.Context, url string) error {
	var lastErr error
	for _, method := range browserOpenMethods(runtime.GOOS, url) {
		cmd := exec.CommandContext(ctx, method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			v.logger.WarnContext(ctx, "Browser open method failed",
				slog.String("method", method.name),
				slog.String("error", err.Error()))
			continue
		}
		// Reap the opener; it exits once the browser has the URL
		go func() { _ = cmd.Wait() }()

		v.logger.InfoContext(ctx, "Browser opened",
			slog.String("method", method.name),
			slog.String("url", url))
		return nil
	}
	return errors.NewViewerError("failed to open browser", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	name string
	cmd  string
	args []string
}

func browserOpenMethods(goos, url string) []browserMethod {
	switch goos {
	case "windows":
		return []browserMethod{
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}

// ChromeViewer shows the dashboard in a Chrome app window driven by chromedp
type ChromeViewer struct {
	cfg    config.ViewerConfig
	logger *slog.Logger
}

// Open launches Chrome and blocks until ctx is cancelled
func (v *ChromeViewer) Open(ctx context.Context, url string) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", false),
		chromedp.Flag("app", url),
		chromedp.WindowSize(v.cfg.WindowWidth, v.cfg.WindowHeight),
	)
	if v.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(v.cfg.ChromePath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(url)); err != nil {
		return errors.NewViewerError("failed to start chrome", err)
	}
	v.logger.InfoContext(ctx, "Chrome window opened", slog.String("url", url))

	select {
	case <-ctx.Done():
	case <-browserCtx.Done():
		v.logger.InfoContext(ctx, "Chrome window closed")
	}
	return nil
}

// WaitReady polls the health endpoint under url until it answers 200 or
// timeout elapses
func WaitReady(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/api/health", nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not ready: %w", url, ctx.Err())
		case <-ticker.C:
		}
	}
}
