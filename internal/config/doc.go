// Package config loads the dashboard configuration.
//
// Values are resolved in increasing order of precedence:
//
//	1. Default()
//	2. a YAML file (-config, or finvis.yaml / config.yaml when present)
//	3. FINVIS_* environment variables
//
// Environment variables mirror the YAML sections:
//
//	FINVIS_SERVER_PORT=5006
//	FINVIS_WORKBOOK_PATH=Intel_Financial_Data.xlsx
//	FINVIS_LOGGING_LEVEL=debug
//	FINVIS_VIEWER_MODE=none
//	FINVIS_TELEMETRY_TRACE_EXPORTER=stdout
//
// The Schema section describes the workbook: sheet names, date columns,
// the metrics charted per sheet, column repairs and the key metric names.
// It can only be set from YAML.
package config
