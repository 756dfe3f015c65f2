package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestDefaultLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelDebug, &buf)

	logger.Info("iterations: %d", 42)

	assert.Contains(t, buf.String(), "iterations: 42")
	assert.Contains(t, buf.String(), "[INFO]")
}

func TestDefaultLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelError, &buf)

	logger.Info("hidden")
	logger.SetLevel(LevelDebug)
	logger.Debug("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestDefaultLoggerWithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	runLogger := logger.WithField("run", "abc-123")
	runLogger.Info("measured")

	assert.Contains(t, buf.String(), "run=abc-123")
	assert.Contains(t, buf.String(), "measured")

	// Original logger must be unaffected.
	buf.Reset()
	logger.Info("plain")
	assert.NotContains(t, buf.String(), "run=abc-123")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLogLevel("INFO"))
	assert.Equal(t, LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestNullLogger(t *testing.T) {
	logger := &NullLogger{}

	// Must not panic and WithField must stay a NullLogger.
	logger.Debug("a")
	logger.Info("b")
	logger.Warn("c")
	logger.Error("d")

	derived := logger.WithField("key", "value")
	_, ok := derived.(*NullLogger)
	assert.True(t, ok)
}

func TestLogLineShape(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDefaultLogger(LevelInfo, &buf)

	logger.Info("hello")

	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "["))
	assert.True(t, strings.HasSuffix(line, "hello"))
}
