package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
	assert.NotEmpty(t, cfg.TimeFormat)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"console to stdout", &Config{Level: "debug", Format: "console", Output: "stdout", TimeFormat: "15:04:05"}},
		{"json to stderr", &Config{Level: "info", Format: "json", Output: "stderr", TimeFormat: "15:04:05"}},
		{"warn level", &Config{Level: "warn", Format: "json", Output: "stdout", TimeFormat: "15:04:05"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"WARN", zapcore.WarnLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNewWriter_File(t *testing.T) {
	t.Run("creates and appends to a log file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sync.log")

		writer := newWriter(path)
		require.NotNil(t, writer)

		_, err := writer.Write([]byte("mapping created\n"))
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "mapping created")
	})

	t.Run("falls back to stdout for an unwritable path", func(t *testing.T) {
		writer := newWriter("/nonexistent-dir/deep/sync.log")
		assert.NotNil(t, writer)
	})
}

func TestLoggerOutput(t *testing.T) {
	t.Run("respects configured level", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		log := zap.New(core)

		log.Debug("resolving mapping")
		log.Info("mapping resolved")
		log.Warn("loyalty drift detected")
		log.Error("sync failed")

		require.Equal(t, 2, logs.Len())
		assert.Equal(t, "loyalty drift detected", logs.All()[0].Message)
		assert.Equal(t, "sync failed", logs.All()[1].Message)
	})

	t.Run("carries structured fields", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		log := zap.New(core)

		log.Info("customer synced",
			zap.String("operation", "updated"),
			zap.Int64("loyalty_points", 150),
		)

		require.Equal(t, 1, logs.Len())
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, "updated", fields["operation"])
		assert.Equal(t, int64(150), fields["loyalty_points"])
	})
}

func TestSync(t *testing.T) {
	log, err := New(&Config{Level: "info", Format: "json", Output: "stderr", TimeFormat: "15:04:05"})
	require.NoError(t, err)

	// stderr may reject sync on some platforms; the call must not panic
	_ = Sync(log)
}
