package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duach/internal/config"
)

func TestReportIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetReportID(ctx))

	ctx = WithReportID(ctx, "abc-123")
	assert.Equal(t, "abc-123", GetReportID(ctx))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestInitializeLogger_FileOutput(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	ctx := WithReportID(context.Background(), "rep-42")
	logger.InfoContext(ctx, "test entry", slog.String("k", "v"))
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"msg":"test entry"`)
	assert.Contains(t, content, `"report_id":"rep-42"`,
		"the handler injects the report ID from context")
	assert.Contains(t, content, `"k":"v"`)
}

func TestInitializeLogger_Once(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	first, err := InitializeLogger(config.LoggingConfig{Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLoggerFromContext(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	assert.NotNil(t, LoggerFromContext(context.Background()))
	assert.NotNil(t, LoggerFromContext(WithReportID(context.Background(), "id-1")))
}

func TestOpenLogFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "app.log")
	f, err := openLogFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, strings.HasSuffix(path, "app.log"))
	assert.FileExists(t, path)
}
