package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestServiceLogger_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")

	var logger ServiceLogger
	require.NoError(t, logger.Init(LoggerOptions{Dir: dir, FileName: "test.log", Level: "debug", Rewrite: true}))

	logger.Info("service started", zap.String("region", "us"))
	logger.Debug("detail")
	logger.Error("boom", zap.Int("code", 500))
	logger.DeInit()

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "INFO")
	assert.Contains(t, text, "service started")
	assert.Contains(t, text, `"region": "us"`)
	assert.Contains(t, text, "DEBUG")
	assert.Contains(t, text, "ERROR")
	assert.Contains(t, text, "boom")
}

func TestServiceLogger_LevelFilter(t *testing.T) {
	dir := t.TempDir()

	var logger ServiceLogger
	require.NoError(t, logger.Init(LoggerOptions{Dir: dir, FileName: "warn.log", Level: "warn"}))

	logger.Info("hidden")
	logger.Warn("shown")
	logger.DeInit()

	content, err := os.ReadFile(filepath.Join(dir, "warn.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden")
	assert.Contains(t, string(content), "shown")
}

func TestServiceLogger_Uninitialized(t *testing.T) {
	var logger ServiceLogger
	assert.ErrorIs(t, logger.Log(LOG_LEVEL_INFO, "dropped"), ErrLogNotInitialized)

	var nilLogger *ServiceLogger
	assert.ErrorIs(t, nilLogger.Log(LOG_LEVEL_INFO, "dropped"), ErrLogNotInitialized)

	// DeInit without Init is a no-op
	logger.DeInit()
}

func TestServiceLogger_InvalidLevel(t *testing.T) {
	var logger ServiceLogger
	err := logger.Init(LoggerOptions{Dir: t.TempDir(), FileName: "x.log", Level: "loud"})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestNewConsoleLogger(t *testing.T) {
	logger, err := NewConsoleLogger("info")
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewConsoleLogger("nope")
	assert.Error(t, err)
}
