// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Oktaliem/ragproof/internal/config"
)

func initWithBuffer(cfg config.LoggerConfig) *bytes.Buffer {
	ResetForTest()
	var buf bytes.Buffer
	Initialize(cfg, zapcore.AddSync(&buf))
	return &buf
}

func TestInitializeConsoleLogger(t *testing.T) {
	buf := initWithBuffer(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "ragproof-test",
	})
	defer ResetForTest()

	GetLogger().Info("journey starting")

	output := buf.String()
	assert.Contains(t, output, "INFO")
	assert.Contains(t, output, "journey starting")
	assert.Contains(t, output, "ragproof-test.")
}

func TestInitializeJSONLogger(t *testing.T) {
	buf := initWithBuffer(config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "ragproof-test",
	})
	defer ResetForTest()

	GetLogger().Warn("counter lagging")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "counter lagging", entry["msg"])
}

func TestLevelFiltering(t *testing.T) {
	buf := initWithBuffer(config.LoggerConfig{
		Level:       "warn",
		Format:      "json",
		ServiceName: "ragproof-test",
	})
	defer ResetForTest()

	GetLogger().Info("should be filtered")
	GetLogger().Warn("should appear")

	output := buf.String()
	assert.NotContains(t, output, "should be filtered")
	assert.Contains(t, output, "should appear")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	buf := initWithBuffer(config.LoggerConfig{
		Level:       "extremely-verbose",
		Format:      "json",
		ServiceName: "ragproof-test",
	})
	defer ResetForTest()

	GetLogger().Debug("debug hidden")
	GetLogger().Info("info shown")

	output := buf.String()
	assert.NotContains(t, output, "debug hidden")
	assert.Contains(t, output, "info shown")
}

func TestInitializeRunsOnce(t *testing.T) {
	buf := initWithBuffer(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "first"})
	defer ResetForTest()

	var second bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "second"}, zapcore.AddSync(&second))

	GetLogger().Info("routed to the first sink")
	assert.Contains(t, buf.String(), "routed to the first sink")
	assert.Empty(t, second.String())
}

func TestFileCoreWritesJSON(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "ragproof.log")
	initWithBuffer(config.LoggerConfig{
		Level:       "info",
		Format:      "console",
		ServiceName: "ragproof-test",
		LogFile:     logFile,
		MaxSize:     1,
	})
	defer ResetForTest()

	GetLogger().Info("written to both cores")
	Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry), "the file core is always JSON")
	assert.Equal(t, "written to both cores", entry["msg"])
}

func TestGetLoggerFallbackBeforeInit(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	logger := GetLogger()
	require.NotNil(t, logger)
}
