package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyushCre/Enterprise-Data-Ingestion-System/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "debug", expected: "DEBUG"},
		{input: "info", expected: "INFO"},
		{input: "warn", expected: "WARN"},
		{input: "warning", expected: "WARN"},
		{input: "error", expected: "ERROR"},
		{input: "unknown", expected: "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input).String())
		})
	}
}

func TestBatchIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetBatchID(ctx))

	ctx = WithBatchID(ctx, "batch-42")
	assert.Equal(t, "batch-42", GetBatchID(ctx))
}

func TestInitializeLoggerWritesToFile(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	logPath := filepath.Join(t.TempDir(), "logs", "gateway.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logPath,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	ctx := WithBatchID(context.Background(), "batch-7")
	logger.InfoContext(ctx, "ingestion batch started")
	require.NoError(t, CloseLogFile())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(data[:len(data)-1], &record))
	assert.Equal(t, "ingestion batch started", record["msg"])
	// The wrapping handler injects the batch id from context.
	assert.Equal(t, "batch-7", record["batch_id"])
}

func TestInitializeLoggerIsIdempotent(t *testing.T) {
	ResetLoggerForTesting()
	t.Cleanup(ResetLoggerForTesting)

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Format: "json", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Format: "text", Output: "console"})
	require.NoError(t, err)

	assert.Same(t, first, second)
}
