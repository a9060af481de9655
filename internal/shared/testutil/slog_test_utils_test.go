package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
		assert.True(t, handler.ContainsAttr("code", int64(500)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("message 1")
		logger.Info("message 2")
		require.Equal(t, 2, handler.Count())

		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("keeps attributes from With", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		child := logger.With(slog.String("component", "parser"))
		child.Info("sheet read", slog.Int("rows", 4))
		child.WithGroup("sheet").Info("grouped", slog.String("name", "Balance Sheet"))

		AssertLogAttr(t, handler, "component", "parser")
		AssertLogAttr(t, handler, "rows", int64(4))
		AssertLogAttr(t, handler, "sheet.name", "Balance Sheet")
		assert.Equal(t, 2, handler.Count())
	})
}

func TestWriteWorkbook(t *testing.T) {
	path := WriteSampleWorkbook(t)
	assert.FileExists(t, path)

	sheets := WithoutSheet(SampleSheets(), "Balance Sheet")
	assert.Len(t, sheets, 3)
	assert.NotContains(t, sheets, "Balance Sheet")
}
