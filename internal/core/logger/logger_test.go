package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-order-service/internal/core/config"
)

func TestFromConfigWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true, File: file, MaxSizeMB: 1})

	l.Info("order placed", zap.String("order_id", "o-1"))
	l.Debug("hidden")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"order placed"`)
	assert.Contains(t, string(b), `"order_id":"o-1"`)
	assert.NotContains(t, string(b), "hidden")
}

func TestBadLevelFallsBackToInfo(t *testing.T) {
	l, cleanup := New("verbose", false)
	defer cleanup()
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestToStdLogger(t *testing.T) {
	l, cleanup := New("debug", true)
	defer cleanup()
	std, err := ToStdLogger(l, zapcore.ErrorLevel)
	require.NoError(t, err)
	assert.NotNil(t, std)
	assert.NotNil(t, ToWriter(l, zapcore.WarnLevel))
}
