package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"finvis/internal/config"
	"finvis/internal/errors"
	"finvis/internal/infrastructure"
	customMiddleware "finvis/internal/middleware"
	"finvis/internal/services"
	handlers "finvis/internal/transport/http"
	"finvis/internal/websocket"
	"finvis/pkg/contracts"
)

// AppName is shown in logs and the startup banner
const AppName = "finvis"

// Application wires the dashboard pipeline to the HTTP server and viewer
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	Metrics          *infrastructure.DashboardMetrics
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	Hub              *websocket.Hub
	Viewer           Viewer
	Stdout           io.Writer
}

// Option configures an Application
type Option func(*Application)

// WithStdout redirects user-facing messages, stdout by default
func WithStdout(w io.Writer) Option {
	return func(a *Application) {
		a.Stdout = w
	}
}

// WithViewer replaces the viewer selected by the config
func WithViewer(v Viewer) Option {
	return func(a *Application) {
		a.Viewer = v
	}
}

// NewApplication creates the application from a validated config.
// Providers may be nil, in which case telemetry is initialized from cfg.
func NewApplication(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	if providers == nil {
		var err error
		providers, err = infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
		}
	}

	metrics, err := infrastructure.CreateDashboardMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard metrics: %w", err)
	}

	a := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		Metrics:       metrics,
		Stdout:        os.Stdout,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Viewer == nil {
		a.Viewer, err = NewViewer(cfg.Viewer, logger, a.Stdout)
		if err != nil {
			return nil, err
		}
	}

	a.Hub = websocket.NewHub(logger)
	a.DashboardService = services.NewDashboardService(cfg.Workbook.Path, cfg.Schema, logger,
		services.WithTelemetry(providers, metrics),
		services.WithOutput(a.Stdout),
		services.WithReloadNotifier(a.notifyReload))
	a.HealthService = services.NewHealthService(contracts.Version, a.DashboardService, logger)

	a.setupRouter()
	a.createServer()

	logger.Info("Application initialized",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("workbook", cfg.Workbook.Path),
		slog.String("viewer", cfg.Viewer.Mode))

	return a, nil
}

// notifyReload tells open pages about a reload so they can refresh
func (a *Application) notifyReload(ctx context.Context, event services.ReloadEvent) {
	msgType := websocket.TypeDashboardReloaded
	if event.Failed() {
		msgType = websocket.TypeReloadFailed
	}
	if err := a.Hub.Broadcast(ctx, msgType, event); err != nil {
		a.Logger.DebugContext(ctx, "Reload not broadcast", slog.String("error", err.Error()))
	}
}

func (a *Application) setupRouter() {
	errorHandler := errors.NewErrorHandler(a.Logger, false)

	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → SecureHeaders → RateLimit
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(errorHandler))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if rl := a.Config.Security.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, errorHandler).Handler)
		}

		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, a.Logger, errorHandler)
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		reloadHandler := handlers.NewReloadHandler(a.DashboardService, a.Logger, errorHandler)

		r.Get("/", dashboardHandler.GetPage)

		api := dashboardHandler.Routes()
		api.Get("/health", healthHandler.HealthCheck)
		api.Get("/version", healthHandler.Version)
		api.Post("/reload", reloadHandler.Reload)
		r.Mount("/api", api)
	})

	// Outside the middleware group so scrapes are not counted as requests
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, errorHandler))
	// The upgrade needs the raw ResponseWriter
	r.Get("/ws", websocket.Handler(a.Hub, a.Logger))

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Load runs the dashboard pipeline. A failure here is fatal to the program.
func (a *Application) Load(ctx context.Context) error {
	return a.DashboardService.Load(ctx)
}

// Listen binds the server address. Failure (e.g. port in use) is fatal.
func (a *Application) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return ln, nil
}

// Serve runs the HTTP server on ln and opens the viewer once the server
// answers. With workbook watching enabled it also reloads the dashboard
// when the file changes. It returns when ctx is cancelled, the server
// fails or the viewer cannot be opened.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	url := "http://" + ln.Addr().String()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Hub.Run(ctx)
		return nil
	})

	if wb := a.Config.Workbook; wb.Watch {
		watcher := services.NewWorkbookWatcher(a.DashboardService, wb.Path, wb.WatchInterval, a.Logger)
		g.Go(func() error {
			return watcher.Run(ctx)
		})
	}

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Server listening", slog.String("address", url))
		if err := a.Server.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
		defer cancel()
		a.Logger.Info("Shutting down server")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := WaitReady(ctx, url, a.Config.Viewer.ReadyWait); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.Logger.ErrorContext(ctx, "Server did not become ready for the viewer",
				slog.String("url", url),
				slog.String("error", err.Error()))
			return errors.NewViewerError("server did not become ready", err)
		}
		// A viewer that cannot open stops the server
		if err := a.Viewer.Open(ctx, url); err != nil && ctx.Err() == nil {
			a.Logger.ErrorContext(ctx, "Failed to open viewer",
				slog.String("mode", a.Config.Viewer.Mode),
				slog.String("error", err.Error()))
			return err
		}
		return nil
	})

	return g.Wait()
}

// Run loads the dashboard, serves it and blocks until SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Load(ctx); err != nil {
		return err
	}

	ln, err := a.Listen()
	if err != nil {
		return err
	}

	err = a.Serve(ctx, ln)
	a.Stop()
	return err
}

// Stop flushes telemetry
func (a *Application) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.OTelProviders.Shutdown(ctx); err != nil {
		a.Logger.Error("Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}
	a.Logger.Info("Application shutdown complete")
}
