package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 5006, cfg.Server.Port)
	assert.Equal(t, "http://localhost:5006", cfg.Server.URL())
	assert.Equal(t, "localhost:5006", cfg.Server.Address())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)

	assert.Equal(t, "Intel_Financial_Data.xlsx", cfg.Workbook.Path)
	assert.False(t, cfg.Workbook.Watch)
	assert.Equal(t, 2*time.Second, cfg.Workbook.WatchInterval)
	assert.Equal(t, ViewerBrowser, cfg.Viewer.Mode)
	assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
	assert.True(t, cfg.Telemetry.EnableMetrics)
	assert.False(t, cfg.Security.RateLimit.Enabled)

	assert.Equal(t, DefaultSchema(), cfg.Schema)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
  shutdown_timeout: 3s
logging:
  level: debug
  format: text
workbook:
  path: data/statements.xlsx
viewer:
  mode: none
schema:
  title: Quarterly Dashboard
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "data/statements.xlsx", cfg.Workbook.Path)
	assert.Equal(t, ViewerNone, cfg.Viewer.Mode)
	assert.Equal(t, "Quarterly Dashboard", cfg.Schema.Title)

	// values the file does not mention keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "Income Statement", cfg.Schema.Income.Sheet)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8081\n")

	t.Setenv("FINVIS_SERVER_PORT", "9090")
	t.Setenv("FINVIS_WORKBOOK_PATH", "/tmp/other.xlsx")
	t.Setenv("FINVIS_LOGGING_LEVEL", "warn")
	t.Setenv("FINVIS_VIEWER_MODE", "chrome")
	t.Setenv("FINVIS_SECURITY_RATE_LIMIT_ENABLED", "true")
	t.Setenv("FINVIS_WORKBOOK_WATCH", "true")
	t.Setenv("FINVIS_WORKBOOK_WATCH_INTERVAL", "500ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/other.xlsx", cfg.Workbook.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, ViewerChrome, cfg.Viewer.Mode)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.True(t, cfg.Workbook.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Workbook.WatchInterval)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "invalid yaml", content: "server: [port"},
		{name: "port out of range", content: "server:\n  port: 70000\n"},
		{name: "unknown viewer", content: "viewer:\n  mode: tv\n"},
		{name: "unknown log format", content: "logging:\n  format: xml\n"},
		{name: "file output without path", content: "logging:\n  output: file\n  file_path: \"\"\n"},
		{name: "bad env value", env: map[string]string{"FINVIS_SERVER_PORT": "abc"}},
		{
			name: "duplicate sheet",
			content: `
schema:
  balance_sheet:
    sheet: Income Statement
    date_column: fiscalDateEnding
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	s := DefaultSchema()
	require.NoError(t, s.Validate())

	s.CashFlow.Renames = map[string]string{"capitalExpenditure": ""}
	assert.Error(t, s.Validate())

	s = DefaultSchema()
	s.Stock.Sheet = s.Balance.Sheet
	assert.Error(t, s.Validate())
}

func TestSheetSpecs(t *testing.T) {
	s := DefaultSchema()
	sheets := s.Sheets()
	require.Len(t, sheets, 4)
	assert.Equal(t, "Income Statement", sheets[0].Sheet)
	assert.Equal(t, "Balance Sheet", sheets[1].Sheet)
	assert.Equal(t, "Cash Flow Statement", sheets[2].Sheet)
	assert.Equal(t, "Quarterly Stock Data", sheets[3].Sheet)

	assert.Equal(t, []string{"totalRevenue", "operatingIncome", "depreciation", "depreciationAndAmortization", "netIncome"},
		s.Income.MetricColumns())
	assert.Empty(t, s.Stock.MetricColumns())
	assert.Equal(t, "Quarter End Date", s.Stock.DateColumn)
}
