package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func traceQuery(l *GormLogger, err error) {
	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM products", 3
	}, err)
}

func TestGormLogger_TraceLogsQuery(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Info)

	traceQuery(l, nil)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SQL query", entry.Message)
	assert.Equal(t, "SELECT * FROM products", entry.ContextMap()["sql"])
	assert.Equal(t, int64(3), entry.ContextMap()["rows"])
}

func TestGormLogger_SilentLogsNothing(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Silent)

	traceQuery(l, errors.New("boom"))

	assert.Zero(t, logs.Len())
}

func TestGormLogger_TraceLogsError(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Error)

	traceQuery(l, errors.New("connection reset"))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL error", logs.All()[0].Message)
}

func TestGormLogger_IgnoresRecordNotFound(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Error)

	traceQuery(l, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestGormLogger_LogsRecordNotFoundWhenConfigured(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))

	traceQuery(l, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 1, logs.Len())
}

func TestGormLogger_WarnsOnSlowQuery(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	l.Trace(context.Background(), time.Now().Add(-time.Millisecond), func() (string, int64) {
		return "SELECT count(*) FROM products", 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slow SQL", logs.All()[0].Message)
}

func TestGormLogger_LogMode(t *testing.T) {
	l, _ := newObservedGormLogger(gormlogger.Info)

	quieter := l.LogMode(gormlogger.Silent)

	assert.NotSame(t, gormlogger.Interface(l), quieter, "LogMode returns a copy")
}

func TestGormLogger_TraceIncludesRequestID(t *testing.T) {
	l, logs := newObservedGormLogger(gormlogger.Info)

	ctx := WithRequestID(context.Background(), "req-7")
	l.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-7", logs.All()[0].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}
