package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelString(t *testing.T) {
	testCases := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.level.String())
		})
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func newJSONLogger(buf *bytes.Buffer, level LogLevel) *TaskLogger {
	return NewLogger(&LoggerConfig{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var records []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &record))
		records = append(records, record)
	}

	return records
}

func TestTaskLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelDebug).
		WithComponent("less").
		With("dir", "/src/a/")

	logger.Info(context.Background(), "Compile x.less -> x.css", "size", 12)
	logger.Error(context.Background(), errors.New("boom"), "compile failed", "file", "y.less")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)

	assert.Equal(t, "INFO", records[0]["level"])
	assert.Equal(t, "Compile x.less -> x.css", records[0]["msg"])
	assert.Equal(t, "less", records[0]["component"])
	assert.Equal(t, "/src/a/", records[0]["dir"])
	assert.EqualValues(t, 12, records[0]["size"])

	assert.Equal(t, "ERROR", records[1]["level"])
	assert.Equal(t, "boom", records[1]["error"])
	assert.Equal(t, "y.less", records[1]["file"])
}

func TestTaskLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelWarn)
	ctx := context.Background()

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, nil, "warn")
	logger.Error(ctx, nil, "error")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "warn", records[0]["msg"])
	assert.Equal(t, "error", records[1]["msg"])
}

func TestWithDoesNotLeakIntoParent(t *testing.T) {
	var buf bytes.Buffer
	parent := newJSONLogger(&buf, LevelInfo)
	child := parent.With("batch_id", "b1")

	child.Info(context.Background(), "child")
	parent.Info(context.Background(), "parent")

	records := decodeLines(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "b1", records[0]["batch_id"])
	assert.NotContains(t, records[1], "batch_id")
}

func TestOddFieldsAreIgnored(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, LevelInfo)

	logger.Info(context.Background(), "odd", "key", "value", "dangling")

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "value", records[0]["key"])
	assert.NotContains(t, records[0], "dangling")
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()

	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("ignored"), "nothing")
		logger.With("a", 1).WithComponent("x").Info(context.Background(), "nothing")
	})
}

func TestStartOperation(t *testing.T) {
	var buf bytes.Buffer
	op := StartOperation(newJSONLogger(&buf, LevelInfo), "batch")

	duration := op.End(context.Background(), "Batch finished", "files", 3)
	assert.GreaterOrEqual(t, duration.Nanoseconds(), int64(0))

	records := decodeLines(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, "batch", records[0]["operation"])
	assert.EqualValues(t, 3, records[0]["files"])
	assert.Contains(t, records[0], "duration_ms")
}
