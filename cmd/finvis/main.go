package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"finvis/internal/app"
	"finvis/internal/config"
	"finvis/internal/errors"
	"finvis/internal/infrastructure"
	"finvis/pkg/contracts"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file (defaults to finvis.yaml or config.yaml when present)")
	file := flag.String("file", "", "workbook to load (overrides config, default Intel_Financial_Data.xlsx)")
	port := flag.Int("port", 0, "HTTP port of the dashboard server (overrides config)")
	viewer := flag.String("viewer", "", "how to show the dashboard: browser, chrome or none (overrides config)")
	watch := flag.Bool("watch", false, "reload the dashboard when the workbook changes")
	version := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *file != "" {
		cfg.Workbook.Path = *file
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *viewer != "" {
		cfg.Viewer.Mode = *viewer
	}
	if *watch {
		cfg.Workbook.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(cfg, logger, providers)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		if _, ok := errors.TypeOf(err); ok {
			fmt.Println(errors.Diagnostic(err, cfg.Workbook.Path))
		} else {
			logger.Error("Application error", slog.String("error", err.Error()))
		}
		infrastructure.CloseLogFile()
		os.Exit(1)
	}
}
