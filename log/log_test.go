package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestZapLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ZapLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ZapLogLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, ZapLogLevel("error"))
	assert.Equal(t, zapcore.FatalLevel, ZapLogLevel("fatal"))
	assert.Equal(t, zapcore.InfoLevel, ZapLogLevel("verbose"))
}

func TestWithFields(t *testing.T) {
	ctx := WithFields(context.Background(), zap.String("request_id", "r1"))
	ctx = WithFields(ctx, zap.String("user_id", "u1"))

	fields := Fields(ctx)
	require.Len(t, fields, 2)
	assert.Equal(t, "request_id", fields[0].Key)
	assert.Equal(t, "user_id", fields[1].Key)

	assert.Empty(t, Fields(context.Background()))
}

func TestNewLoggerTo(t *testing.T) {
	var buf bytes.Buffer
	logger, atom := NewLoggerTo(&buf, "warn")

	ctx := WithFields(context.Background(), zap.String("request_id", "r1"))
	WithContext(ctx, logger).Info("dropped")
	WithContext(ctx, logger).Warn("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "r1", entry["request_id"])

	atom.SetLevel(zapcore.DebugLevel)
	buf.Reset()
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}
