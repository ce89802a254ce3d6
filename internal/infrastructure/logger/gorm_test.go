package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func selectMappings() (string, int64) {
	return `SELECT * FROM system_mappings WHERE entity_type = 'customer'`, 3
}

func TestNewGormLogger(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.logLevel)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestGormLoggerOptions(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newObservedGormLogger(gormlogger.Warn)

	quieter := gl.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Silent, quieter.(*GormLogger).logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel, "LogMode must not mutate the receiver")
}

func TestGormLogger_Levels(t *testing.T) {
	t.Run("Info emits at info level and above", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)
		gl.Info(context.Background(), "migrating %s", "system_mappings")
		require.Equal(t, 1, logs.Len())
	})

	t.Run("Info is suppressed below info level", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn)
		gl.Info(context.Background(), "migrating %s", "system_mappings")
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("Warn and Error respect the configured level", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)
		gl.Warn(context.Background(), "connection pool saturated")
		gl.Error(context.Background(), "constraint violated")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "constraint violated", logs.All()[0].Message)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("logs query errors with the statement", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), selectMappings, errors.New("connection reset"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Contains(t, entry.ContextMap()["sql"], "system_mappings")
	})

	t.Run("swallows record-not-found when configured to", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), selectMappings, gormlogger.ErrRecordNotFound)

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("reports record-not-found when not ignored", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

		gl.Trace(context.Background(), time.Now(), selectMappings, gormlogger.ErrRecordNotFound)

		require.Equal(t, 1, logs.Len())
	})

	t.Run("flags a slow query at warn", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-time.Second), selectMappings, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
		assert.Contains(t, entry.Message, "SLOW SQL")
	})

	t.Run("traces normal queries at debug under info level", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), selectMappings, nil)

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
		assert.Equal(t, int64(3), entry.ContextMap()["rows"])
	})

	t.Run("emits nothing when silent", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), selectMappings, errors.New("ignored"))

		assert.Equal(t, 0, logs.Len())
	})

	t.Run("attaches the request id from the context", func(t *testing.T) {
		gl, logs := newObservedGormLogger(gormlogger.Info)

		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-7")
		gl.Trace(ctx, time.Now(), selectMappings, nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
		{"trace", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run("maps "+tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MapGormLogLevel(tt.input))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = (*GormLogger)(nil)
}
