package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"companion_mock/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(" warn "))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
}

func TestNewWritesToRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "mock.log")
	log := New(config.LogConfig{Level: "info", File: file, MaxSizeMB: 1, MaxBackups: 1})
	log.Info("mock server starting")
	// stderr is part of the tee; fsync on it fails when it is a pipe or a
	// terminal, so only the file contents count here.
	_ = log.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "mock server starting")
}
