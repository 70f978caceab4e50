package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newCaptureLogger builds a sugared logger writing JSON into buf.
func newCaptureLogger(buf *bytes.Buffer, level zapcore.Level, options ...zap.Option) *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(buf),
		level,
	)

	return zap.New(core, options...).Sugar()
}

// TestFromContext_FallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContext_FallsBackToGlobal(t *testing.T) {
	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestContextHelpers verifies ToContext/WithName/WithKV scoping.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	ctx := ToContext(context.Background(), newCaptureLogger(buf, zapcore.DebugLevel))

	ctx = WithName(ctx, "clock")
	ctx = WithKV(ctx, "alarm_id", "a1")
	Info(ctx, "tick")

	output := buf.String()
	require.Contains(t, output, "clock")
	require.Contains(t, output, "alarm_id")
	require.Contains(t, output, "tick")

	buf.Reset()

	ctx = WithFields(ctx, zap.String("backend", "file"))
	InfoKV(ctx, "saved", "count", 2)
	require.Contains(t, buf.String(), "backend")
}

// TestWithLevel ensures the option caps the wrapped core's level.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	buf := new(bytes.Buffer)
	l := newCaptureLogger(buf, zapcore.DebugLevel, WithLevel(zapcore.WarnLevel))

	l.Info("quiet")
	require.Empty(t, buf.String())

	l.Warn("loud")
	require.Contains(t, buf.String(), "loud")
}
